// Package tracking extracts the tracking log events of a set of courses into
// their own collection, optionally enriching each event with the course
// structure block it refers to.
package tracking

import (
	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Event is one tracking log record. It is kept as an opaque map so that it is
// written out with every field the platform recorded; only parent_data and
// metadata are ever added.
type Event map[string]interface{}

// NewEvent converts a record obtained from an edxdk.Source.
func NewEvent(rec interface{}) (Event, error) {
	switch r := rec.(type) {
	case Event:
		return r, nil
	case map[string]interface{}:
		return Event(r), nil
	default:
		m, err := cast.ToStringMapE(rec)
		if err != nil {
			return nil, errors.Errorf("record is not an object but a %T", rec)
		}
		return Event(m), nil
	}
}

// ID returns the event's identity. Events exported from MongoDB carry it in
// _id, possibly as {"$oid": "..."}.
func (e Event) ID() string {
	for _, key := range []string{"id", "_id"} {
		switch v := e[key].(type) {
		case nil:
			continue
		case map[string]interface{}:
			if oid := cast.ToString(v["$oid"]); oid != "" {
				return oid
			}
		default:
			if id := cast.ToString(v); id != "" {
				return id
			}
		}
	}
	return ""
}

// CourseID returns the course_id field.
func (e Event) CourseID() string {
	return cast.ToString(e["course_id"])
}

// Time returns the time field as recorded, which is an ISO 8601 string. A
// MongoDB {"$date": ...} wrapper is removed.
func (e Event) Time() string {
	if m, ok := e["time"].(map[string]interface{}); ok {
		return cast.ToString(m["$date"])
	}
	return cast.ToString(e["time"])
}

// EventType returns the event_type field.
func (e Event) EventType() string {
	return cast.ToString(e["event_type"])
}

// Page returns the page field.
func (e Event) Page() string {
	return cast.ToString(e["page"])
}

// Payload returns the event field as an object. Browser events store it as a
// JSON encoded string, which is decoded. Nil is returned for anything else.
func (e Event) Payload() map[string]interface{} {
	if e["event"] == nil {
		return nil
	}
	m, err := cast.ToStringMapE(e["event"])
	if err != nil {
		return nil
	}
	return m
}

// Refs returns the block keys the event refers to, most specific first: the
// key embedded in the payload's id, then the one in the page URL.
func (e Event) Refs() []string {
	var refs []string
	if key, ok := edxdk.EventKey(cast.ToString(e.Payload()["id"])); ok {
		refs = append(refs, key)
	}
	if key, ok := edxdk.PageKey(e.Page()); ok {
		refs = append(refs, key)
	}
	return refs
}
