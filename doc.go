// edxdk is the edX data kit. It contains the pipelines and helpers used to get
// course data exported by an Open edX platform into a document store in a
// shape that is convenient for analytics.
//
// There are two pipelines, both of which are single pass batch jobs.
//
// 1. Course structure
//
//    The platform exports a course's structure as one JSON object keyed by
//    long, path-like block identifiers. The structure package turns it into
//    one record per block: identifiers are shortened to their final path
//    segment, "conditional" and "wrapper" blocks are collapsed into their
//    parents (their children take their place, in order), and every block is
//    given a flat parent_data mapping which names its order within its parent
//    and the id and display name of its vertical, sequential and chapter
//    ancestors. Downstream consumers can then group by chapter or sequential
//    without having to re-walk the tree.
//
// 2. Tracking logs
//
//    The tracking package selects the tracking events of a set of courses
//    within a date window and copies them into a destination collection.
//    Events are deduplicated by id, so an extraction may be interrupted and
//    re-run over the same window safely. Optionally, each event is enriched
//    with the parent_data and metadata of the structure block it refers to.
//    Events can be read from a stored collection, or streamed from any Source
//    (local files, S3, Kafka).
//
// Storage is abstracted behind the DB and Collection interfaces in this
// package. Implementations using boltdb, leveldb, badger and plain memory live
// in sub-packages; see the backend package for opening one by name.
package edxdk
