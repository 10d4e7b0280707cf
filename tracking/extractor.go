package tracking

import (
	"encoding/json"
	"time"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// Result counts what one Migrate call did.
type Result struct {
	Selected   int // events matching the query
	Inserted   int
	Duplicates int // already present in the destination
	Enriched   int
	Skipped    int // events without an id
}

// Extractor copies the events of a set of courses from an EventLog into a
// destination collection keyed by event id. Events already present in the
// destination are left alone, so a window can be extracted again safely.
type Extractor struct {
	Source EventLog
	Dest   edxdk.Collection

	// Drop empties Dest before extracting.
	Drop bool

	// Enricher, if set, is applied to every event before insertion.
	Enricher *Enricher

	Log   edxdk.Logger
	Stats edxdk.Statter
}

// NewExtractor returns an Extractor which neither drops nor enriches.
func NewExtractor(src EventLog, dest edxdk.Collection) *Extractor {
	return &Extractor{
		Source: src,
		Dest:   dest,
		Log:    edxdk.NopLogger{},
		Stats:  edxdk.NopStatter{},
	}
}

// Migrate extracts the events of courseIDs whose time is within [start, end].
func (x *Extractor) Migrate(courseIDs []string, start, end time.Time) (Result, error) {
	var res Result
	begin := time.Now()
	if x.Drop {
		if err := x.Dest.Drop(); err != nil {
			return res, errors.Wrap(err, "dropping destination")
		}
		x.Log.Printf("dropped destination collection")
	}

	q := NewQuery(courseIDs, start, end)
	x.Log.Printf("extracting %d courses from %s to %s", len(q.CourseIDs), q.Start, q.End)
	err := x.Source.Select(q, func(e Event) error {
		res.Selected++
		id := e.ID()
		if id == "" {
			res.Skipped++
			x.Log.Debugf("skipping event without id at %s", e.Time())
			return nil
		}
		exists, err := x.Dest.Has(id)
		if err != nil {
			return errors.Wrapf(err, "checking for event '%s'", id)
		}
		if exists {
			res.Duplicates++
			return nil
		}
		if x.Enricher != nil {
			ok, err := x.Enricher.Enrich(e)
			if err != nil {
				return errors.Wrapf(err, "enriching event '%s'", id)
			}
			if ok {
				res.Enriched++
			}
		}
		val, err := json.Marshal(e)
		if err != nil {
			return errors.Wrapf(err, "encoding event '%s'", id)
		}
		if err := x.Dest.Put(id, val); err != nil {
			return errors.Wrapf(err, "inserting event '%s'", id)
		}
		res.Inserted++
		if res.Inserted%10000 == 0 {
			x.Log.Debugf("inserted %d events", res.Inserted)
		}
		return nil
	})

	x.Stats.Count("tracking.selected", int64(res.Selected), 1)
	x.Stats.Count("tracking.inserted", int64(res.Inserted), 1)
	x.Stats.Count("tracking.duplicates", int64(res.Duplicates), 1)
	x.Stats.Count("tracking.enriched", int64(res.Enriched), 1)
	x.Stats.Count("tracking.skipped", int64(res.Skipped), 1)
	x.Stats.Timing("tracking.migrate", time.Since(begin), 1)
	if err != nil {
		return res, errors.Wrap(err, "selecting events")
	}
	x.Log.Printf("selected %d events: %d inserted, %d duplicates, %d enriched, %d without id",
		res.Selected, res.Inserted, res.Duplicates, res.Enriched, res.Skipped)
	return res, nil
}
