package test

import (
	"fmt"
	"testing"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// CollectionSuite runs the behaviour every edxdk.DB implementation must share
// against db. The db is not closed.
func CollectionSuite(t *testing.T, db edxdk.DB) {
	t.Helper()
	c, err := db.Collection("structure")
	ErrNil(t, err, "getting collection")
	other, err := db.Collection("tracking")
	ErrNil(t, err, "getting second collection")

	_, err = c.Get("missing")
	if errors.Cause(err) != edxdk.ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
	has, err := c.Has("missing")
	ErrNil(t, err, "has missing")
	MustBe(t, has, false, "has missing")

	ErrNil(t, c.Put("b", []byte(`{"_id":"b"}`)), "put b")
	ErrNil(t, c.Put("a", []byte(`{"_id":"a"}`)), "put a")
	ErrNil(t, c.Put("b", []byte(`{"_id":"b","v":2}`)), "overwrite b")
	ErrNil(t, other.Put("a", []byte(`{"other":true}`)), "put other a")

	val, err := c.Get("b")
	ErrNil(t, err, "get b")
	MustBe(t, string(val), `{"_id":"b","v":2}`, "get b")
	has, err = c.Has("a")
	ErrNil(t, err, "has a")
	MustBe(t, has, true, "has a")

	ids := scanIDs(t, c)
	MustBe(t, ids, []string{"a", "b"}, "scan order")
	MustBe(t, scanIDs(t, other), []string{"a"}, "collections are separate")

	// records written from inside a scan must not deadlock or corrupt it
	err = c.Scan(func(id string, val []byte) error {
		return other.Put("copy-"+id, val)
	})
	ErrNil(t, err, "scan with writes")
	MustBe(t, scanIDs(t, other), []string{"a", "copy-a", "copy-b"}, "copied")

	stop := errors.New("stop")
	err = c.Scan(func(id string, val []byte) error { return stop })
	if errors.Cause(err) != stop {
		t.Fatalf("expected scan to return callback error, got %v", err)
	}

	ErrNil(t, c.Drop(), "drop")
	MustBe(t, len(scanIDs(t, c)), 0, "empty after drop")
	MustBe(t, len(scanIDs(t, other)), 3, "other untouched by drop")
	ErrNil(t, c.Put("c", []byte(`{}`)), "put after drop")
	MustBe(t, scanIDs(t, c), []string{"c"}, "usable after drop")

	many, err := db.Collection("many")
	ErrNil(t, err, "getting many")
	for i := 0; i < 2500; i++ {
		ErrNil(t, many.Put(fmt.Sprintf("%05d", i), []byte(`{}`)), "put many")
	}
	got := scanIDs(t, many)
	MustBe(t, len(got), 2500, "scan across batches")
	MustBe(t, got[2499], "02499", "last id")

	if _, err := db.Collection(""); err == nil {
		t.Fatal("expected error for empty collection name")
	}
}

func scanIDs(t *testing.T, c edxdk.Collection) []string {
	t.Helper()
	ids := []string{}
	err := c.Scan(func(id string, val []byte) error {
		ids = append(ids, id)
		return nil
	})
	ErrNil(t, err, "scanning")
	return ids
}
