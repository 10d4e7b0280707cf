package tracking

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// EventLog is a log of tracking events which can be filtered.
type EventLog interface {
	// Select calls fn for every event matched by q, stopping at the first
	// error fn returns.
	Select(q Query, fn func(Event) error) error
}

// CollectionLog is an EventLog over a stored collection of events, such as a
// copy of the platform's tracking database.
type CollectionLog struct {
	C edxdk.Collection
}

// Select implements EventLog.
func (l *CollectionLog) Select(q Query, fn func(Event) error) error {
	return l.C.Scan(func(id string, val []byte) error {
		e, err := decodeEvent(val)
		if err != nil {
			return errors.Wrapf(err, "decoding event '%s'", id)
		}
		if !q.Match(e) {
			return nil
		}
		return fn(e)
	})
}

func decodeEvent(val []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(val))
	dec.UseNumber()
	e := Event{}
	return e, dec.Decode(&e)
}

// SourceLog is an EventLog reading a stream of records, e.g. log files, S3
// objects or a Kafka topic. Since a stream can only be read once, a SourceLog
// can only be selected from once.
type SourceLog struct {
	Source edxdk.Source
	Log    edxdk.Logger

	// MaxErrors is the number of consecutive record errors after which
	// Select gives up.
	MaxErrors int

	// Errors counts the records which could not be read or were not objects.
	Errors int
}

// NewSourceLog returns a SourceLog reading from src.
func NewSourceLog(src edxdk.Source) *SourceLog {
	return &SourceLog{
		Source:    src,
		Log:       edxdk.NopLogger{},
		MaxErrors: 100,
	}
}

// Select implements EventLog. Bad records are logged and skipped.
func (l *SourceLog) Select(q Query, fn func(Event) error) error {
	consecutive := 0
	for {
		rec, err := l.Source.Record()
		if err == io.EOF {
			return nil
		}
		var e Event
		if err == nil {
			e, err = NewEvent(rec)
		}
		if err != nil {
			l.Errors++
			consecutive++
			l.Log.Printf("skipping record: %v", err)
			if l.MaxErrors > 0 && consecutive >= l.MaxErrors {
				return errors.Wrapf(err, "giving up after %d consecutive errors", consecutive)
			}
			continue
		}
		consecutive = 0
		if !q.Match(e) {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}
