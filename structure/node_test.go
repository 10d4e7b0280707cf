package structure

import (
	"encoding/json"
	"testing"

	"github.com/pilosa/edxdk/test"
)

func TestParentDataOrder(t *testing.T) {
	pd := NewParentData()
	pd.Set("vertical_order", 2)
	pd.Set("vertical_id", "V1")
	pd.Set("vertical_order", 3)

	test.MustBe(t, []string{"vertical_order", "vertical_id"}, pd.Keys())
	v, ok := pd.Get("vertical_order")
	test.MustBe(t, true, ok)
	test.MustBe(t, 3, v)

	other := NewParentData()
	other.Set("chapter_id", "C1")
	other.Set("vertical_id", "V2")
	pd.Merge(other)
	pd.Merge(nil)
	test.MustBe(t, []string{"vertical_order", "vertical_id", "chapter_id"}, pd.Keys())
	test.NoDiff(t, map[string]interface{}{"vertical_order": 3, "vertical_id": "V2", "chapter_id": "C1"}, pd.Map(), "merged")
}

func TestParentDataNil(t *testing.T) {
	var pd *ParentData
	if _, ok := pd.Get("x"); ok {
		t.Fatal("nil parent data has a key")
	}
	test.MustBe(t, 0, pd.Len())
	test.MustBe(t, 0, len(pd.Map()))

	var zero ParentData
	zero.Set("a", 1)
	test.MustBe(t, 1, zero.Len())
}

func TestParentDataJSON(t *testing.T) {
	pd := NewParentData()
	pd.Set("sequential_order", 0)
	pd.Set("sequential_id", "S1")
	pd.Set("sequential_display_name", nil)
	pd.Set("chapter_order", 12)
	pd.Set("chapter_display_name", "Week 1")

	buf, err := json.Marshal(pd)
	test.ErrNil(t, err, "marshaling")
	want := `{"sequential_order":0,"sequential_id":"S1","sequential_display_name":null,"chapter_order":12,"chapter_display_name":"Week 1"}`
	test.MustBe(t, want, string(buf))

	got := &ParentData{}
	test.ErrNil(t, json.Unmarshal(buf, got), "unmarshaling")
	test.MustBe(t, pd.Keys(), got.Keys())
	test.NoDiff(t, pd.Map(), got.Map(), "round trip")

	if err := json.Unmarshal([]byte(`[1]`), got); err == nil {
		t.Fatal("expected error decoding an array")
	}
}

func TestNodeJSON(t *testing.T) {
	n := &Node{
		ID:       "P1",
		Category: "problem",
		Children: []string{},
		Metadata: map[string]interface{}{"display_name": "Q"},
	}
	buf, err := json.Marshal(n)
	test.ErrNil(t, err, "marshaling")
	test.MustBe(t, `{"_id":"P1","category":"problem","children":[],"metadata":{"display_name":"Q"}}`, string(buf))

	n.ParentData = NewParentData()
	n.ParentData.Set("vertical_id", "V1")
	buf, err = json.Marshal(n)
	test.ErrNil(t, err, "marshaling with parent data")

	got := &Node{}
	test.ErrNil(t, json.Unmarshal(buf, got), "unmarshaling")
	test.MustBe(t, "Q", got.DisplayName())
	v, _ := got.ParentData.Get("vertical_id")
	test.MustBe(t, "V1", v)
}

func TestParentDataJSONNumbers(t *testing.T) {
	got := &ParentData{}
	err := json.Unmarshal([]byte(`{"vertical_order":4,"weight":0.5,"extra":{"n":2,"list":[1,1.5]}}`), got)
	test.ErrNil(t, err, "unmarshaling")
	test.MustBe(t, []string{"vertical_order", "weight", "extra"}, got.Keys())
	test.NoDiff(t, map[string]interface{}{
		"vertical_order": 4,
		"weight":         0.5,
		"extra":          map[string]interface{}{"n": 2, "list": []interface{}{1, 1.5}},
	}, got.Map(), "numbers")

	var empty ParentData
	buf, err := json.Marshal(&empty)
	test.ErrNil(t, err, "marshaling empty")
	test.MustBe(t, "{}", string(buf))
}
