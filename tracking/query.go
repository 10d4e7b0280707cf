package tracking

import "time"

// DateFormat is the layout of the window bounds.
const DateFormat = "2006-01-02"

// Query selects the events of a set of courses within a date window.
type Query struct {
	CourseIDs map[string]struct{}
	Start     string
	End       string
}

// NewQuery returns a Query matching events of the given courses whose time
// falls within [start, end].
func NewQuery(courseIDs []string, start, end time.Time) Query {
	q := Query{
		CourseIDs: make(map[string]struct{}, len(courseIDs)),
		Start:     start.Format(DateFormat),
		End:       end.Format(DateFormat),
	}
	for _, id := range courseIDs {
		q.CourseIDs[id] = struct{}{}
	}
	return q
}

// Match reports whether e is selected by q. Times are compared as strings,
// which orders ISO 8601 timestamps correctly; note that a timestamp on the end
// date itself sorts after the bare end date and is not matched.
func (q Query) Match(e Event) bool {
	if _, ok := q.CourseIDs[e.CourseID()]; !ok {
		return false
	}
	t := e.Time()
	return q.Start <= t && t <= q.End
}
