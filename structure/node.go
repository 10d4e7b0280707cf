package structure

import (
	"math"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Block categories the pipeline treats specially. Every other category is a
// leaf component (problem, video, html...).
const (
	CategoryCourse      = "course"
	CategoryChapter     = "chapter"
	CategorySequential  = "sequential"
	CategoryVertical    = "vertical"
	CategoryConditional = "conditional"
	CategoryWrapper     = "wrapper"
)

// Node is one block of a course structure after key normalization. It is also
// the record persisted by Store.
type Node struct {
	ID         string                 `json:"_id"`
	Category   string                 `json:"category"`
	Children   []string               `json:"children"`
	Metadata   map[string]interface{} `json:"metadata"`
	ParentData *ParentData            `json:"parent_data,omitempty"`
}

// DisplayName returns metadata.display_name, or nil if it is absent.
func (n *Node) DisplayName() interface{} {
	return n.Metadata["display_name"]
}

// ParentData is an insertion ordered mapping from string keys to values. Its
// keys are built from ancestor categories ("chapter_id", "vertical_order"...)
// so the set of keys is open ended. The zero value is ready to use.
type ParentData struct {
	m *orderedmap.OrderedMap[string, interface{}]
}

// NewParentData returns an empty ParentData.
func NewParentData() *ParentData {
	return &ParentData{m: orderedmap.New[string, interface{}]()}
}

func (p *ParentData) init() {
	if p.m == nil {
		p.m = orderedmap.New[string, interface{}]()
	}
}

// Set adds key, or overwrites its value in place if it is already present.
func (p *ParentData) Set(key string, val interface{}) {
	p.init()
	p.m.Set(key, val)
}

// Get returns the value for key. It is safe to call on a nil ParentData.
func (p *ParentData) Get(key string) (interface{}, bool) {
	if p == nil || p.m == nil {
		return nil, false
	}
	return p.m.Get(key)
}

// Len returns the number of keys.
func (p *ParentData) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Keys returns the keys in insertion order.
func (p *ParentData) Keys() []string {
	if p == nil || p.m == nil {
		return nil
	}
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Merge copies every entry of other into p, other's values winning on
// conflict. Merging a nil ParentData is a no-op.
func (p *ParentData) Merge(other *ParentData) {
	if other == nil || other.m == nil {
		return
	}
	for pair := other.m.Oldest(); pair != nil; pair = pair.Next() {
		p.Set(pair.Key, pair.Value)
	}
}

// Map returns the entries as a plain map.
func (p *ParentData) Map() map[string]interface{} {
	m := make(map[string]interface{}, p.Len())
	if p == nil || p.m == nil {
		return m
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}

// MarshalJSON encodes p as a JSON object with keys in insertion order.
func (p *ParentData) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	p.init()
	buf, err := p.m.MarshalJSON()
	return buf, errors.Wrap(err, "encoding parent data")
}

// UnmarshalJSON decodes a JSON object keeping its key order. Integral numbers
// decode to int so that order indexes survive a round trip.
func (p *ParentData) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, interface{}]()
	if err := m.UnmarshalJSON(data); err != nil {
		return errors.Wrap(err, "decoding parent data")
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value = plainNumbers(pair.Value)
	}
	p.m = m
	return nil
}

func plainNumbers(val interface{}) interface{} {
	switch v := val.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int(v)
		}
	case map[string]interface{}:
		for k, e := range v {
			v[k] = plainNumbers(e)
		}
	case []interface{}:
		for i, e := range v {
			v[i] = plainNumbers(e)
		}
	}
	return val
}
