package structure

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/edxdk/backend"
	"github.com/pilosa/edxdk/mock"
	"github.com/pilosa/edxdk/test"
)

func TestImporterRun(t *testing.T) {
	doc, err := DecodeDocument(strings.NewReader(rawCourse))
	test.ErrNil(t, err, "decoding")

	s, c := mustStore(t)
	im := NewImporter(s)
	logger := &mock.Logger{}
	stats := &mock.RecordingStatter{}
	im.Log, im.Stats = logger, stats

	r, err := im.Run(doc)
	test.ErrNil(t, err, "running importer")
	test.MustBe(t, Report{Nodes: 6, Removed: 1, Edges: 5}, r)
	test.MustBe(t, int64(6), stats.Counts["structure.nodes"])
	test.MustBe(t, 1, stats.Timings["structure.import"])

	var sawErrors bool
	for _, l := range logger.Lines {
		if l == "0 errors" {
			sawErrors = true
		}
	}
	if !sawErrors {
		t.Errorf("dangling count not logged: %v", logger.Lines)
	}

	var ids []string
	test.ErrNil(t, c.Scan(func(id string, _ []byte) error {
		ids = append(ids, id)
		return nil
	}), "scanning")
	test.MustBe(t, []string{"2012_Fall", "Lesson_A", "Week_1", "h1", "p1", "v1"}, ids)

	v1, err := s.FindByID("v1")
	test.ErrNil(t, err, "finding v1")
	test.MustBe(t, []string{"p1", "h1"}, v1.Children)

	h1, err := s.FindByID("h1")
	test.ErrNil(t, err, "finding h1")
	test.NoDiff(t, map[string]interface{}{
		"vertical_order":          1,
		"vertical_id":             "v1",
		"vertical_display_name":   "Unit 1",
		"sequential_order":        0,
		"sequential_id":           "Lesson_A",
		"sequential_display_name": "Lesson A",
		"chapter_order":           0,
		"chapter_id":              "Week_1",
		"chapter_display_name":    "Week 1",
		"course_order":            0,
		"course_id":               "2012_Fall",
		"course_display_name":     "Circuits",
	}, h1.ParentData.Map(), "h1 parent data")
}

func TestImporterOrphan(t *testing.T) {
	doc := Document{"x/wrapper/w": {Category: CategoryWrapper}}
	s, c := mustStore(t)
	if _, err := NewImporter(s).Run(doc); err == nil {
		t.Fatal("expected error for orphaned wrapper")
	}
	has, err := c.Has("w")
	test.ErrNil(t, err, "checking store")
	test.MustBe(t, false, has)
}

func TestMainRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "structure-main")
	test.ErrNil(t, err, "making temp dir")
	defer os.RemoveAll(dir)
	fname := filepath.Join(dir, "course.json")
	test.ErrNil(t, ioutil.WriteFile(fname, []byte(rawCourse), 0600), "writing export")

	m := NewMain()
	test.ErrNil(t, m.Run(filepath.Join(dir, "edx.db"), "course_structure", fname), "running")

	pool := backend.NewPool(backend.Bolt)
	defer pool.Close()
	c, err := pool.Collection(filepath.Join(dir, "edx.db"), "course_structure")
	test.ErrNil(t, err, "reopening")
	node, err := NewStore(c).FindBySuffix("Lesson")
	test.ErrNil(t, err, "finding")
	test.MustBe(t, "Lesson_A", node.ID)

	if err := m.Run(filepath.Join(dir, "edx.db"), "course_structure", filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing export")
	}
}
