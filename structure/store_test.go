package structure

import (
	"testing"

	"github.com/pilosa/edxdk"
	"github.com/pilosa/edxdk/test"
	"github.com/pkg/errors"
)

func mustStore(t *testing.T) (*Store, edxdk.Collection) {
	t.Helper()
	c, err := edxdk.NewMapDB().Collection("structure")
	test.ErrNil(t, err, "getting collection")
	return NewStore(c), c
}

func TestStoreInsertFind(t *testing.T) {
	s, c := mustStore(t)
	n := node("b7e2a1f0d", "problem")
	n.ParentData = NewParentData()
	n.ParentData.Set("vertical_order", 4)
	n.ParentData.Set("vertical_id", "V1")
	test.ErrNil(t, s.Insert(n), "inserting")

	raw, err := c.Get("b7e2a1f0d")
	test.ErrNil(t, err, "getting raw record")
	test.MustBe(t, `{"_id":"b7e2a1f0d","category":"problem","children":[],"metadata":{"display_name":"name of b7e2a1f0d"},"parent_data":{"vertical_order":4,"vertical_id":"V1"}}`, string(raw))

	got, err := s.FindByID("b7e2a1f0d")
	test.ErrNil(t, err, "finding by id")
	test.MustBe(t, n.ParentData.Keys(), got.ParentData.Keys())
	test.NoDiff(t, n.ParentData.Map(), got.ParentData.Map(), "parent data")

	n.Category = "html"
	test.ErrNil(t, s.Insert(n), "overwriting")
	got, err = s.FindByID("b7e2a1f0d")
	test.ErrNil(t, err, "finding overwritten")
	test.MustBe(t, "html", got.Category)

	_, err = s.FindByID("nope")
	if errors.Cause(err) != edxdk.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreFindBySuffix(t *testing.T) {
	s, _ := mustStore(t)
	for _, id := range []string{"zz-abc", "aa-abc", "mm-xyz"} {
		test.ErrNil(t, s.Insert(node(id, "problem")), "inserting "+id)
	}

	got, err := s.FindBySuffix("abc")
	test.ErrNil(t, err, "finding by suffix")
	test.MustBe(t, "aa-abc", got.ID)

	got, err = s.FindBySuffix("xyz")
	test.ErrNil(t, err, "finding xyz")
	test.MustBe(t, "mm-xyz", got.ID)

	for _, frag := range []string{"qqq", ""} {
		_, err = s.FindBySuffix(frag)
		if errors.Cause(err) != edxdk.ErrNotFound {
			t.Fatalf("fragment %q: expected ErrNotFound, got %v", frag, err)
		}
	}
}
