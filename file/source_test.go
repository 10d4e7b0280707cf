package file

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pilosa/edxdk"
)

func mustTempDir(t *testing.T, prefix string) string {
	t.Helper()
	d, err := ioutil.TempDir("", prefix)
	if err != nil {
		t.Fatal("getting temp dir")
	}
	return d
}

func mustFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	fname := filepath.Join(dir, name)
	if err := ioutil.WriteFile(fname, []byte(contents), 0600); err != nil {
		t.Fatalf("writing %s: %v", fname, err)
	}
	return fname
}

func mustGzipFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	if _, err := io.WriteString(zw, contents); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return mustFile(t, dir, name, buf.String())
}

func TestRawSource(t *testing.T) {
	d := mustTempDir(t, "testrawsource")
	defer func() {
		os.RemoveAll(d)
	}()

	mustFile(t, d, "b.log", `blah blah blah`)
	mustFile(t, d, "a.log", `hahahahahahahaha`)
	if err := os.Mkdir(filepath.Join(d, "sub"), 0700); err != nil {
		t.Fatalf("making subdir: %v", err)
	}

	rs, err := NewRawSource(d)
	if err != nil {
		t.Fatalf("getting raw source: %v", err)
	}

	gotNames := make([]string, 0, 2)
	var reader edxdk.NamedReadCloser
	for reader, err = rs.NextReader(); err == nil; reader, err = rs.NextReader() {
		gotNames = append(gotNames, reader.Name())
		if reader.Meta()["path"] != filepath.Join(d, reader.Name()) {
			t.Errorf("unexpected meta: %v", reader.Meta())
		}
		if _, err := ioutil.ReadAll(reader); err != nil {
			t.Fatalf("reading file: %v", err)
		}
		reader.Close()
	}
	if err != io.EOF {
		t.Fatalf("unexpected NextReader error: %v", err)
	}
	if len(gotNames) != 2 || gotNames[0] != "a.log" || gotNames[1] != "b.log" {
		t.Fatalf("different file names: %v", gotNames)
	}
}

func TestSource(t *testing.T) {
	d := mustTempDir(t, "testsource")
	defer func() {
		os.RemoveAll(d)
	}()

	mustFile(t, d, "tracking.log", `
{"hey": 44}
{"hey": 39}
`)
	mustGzipFile(t, d, "tracking.log-20180101.gz", `
{"hey": 81}
{"hey": 22}
`)

	s, err := NewSource(OptSrcPath(d))
	if err != nil {
		t.Fatalf("getting source: %v", err)
	}

	var vals []string
	var rec interface{}
	for rec, err = s.Record(); err == nil; rec, err = s.Record() {
		recm, ok := rec.(map[string]interface{})
		if !ok {
			t.Fatalf("expected map[string]interface{} but got %T", rec)
		}
		v, ok := recm["hey"]
		if !ok {
			t.Fatalf("key 'hey' not present in %v", recm)
		}
		vals = append(vals, v.(interface{ String() string }).String())
	}
	if err != io.EOF {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"44", "39", "81", "22"}
	if len(vals) != len(want) {
		t.Fatalf("wrong num of vals: %v", vals)
	}
	for i := range want {
		if vals[i] != want[i] {
			t.Fatalf("val %d: want %s, got %s", i, want[i], vals[i])
		}
	}
}

func TestNewSourceNoPath(t *testing.T) {
	if _, err := NewSource(); err == nil {
		t.Fatal("expected error without a path")
	}
}

func TestOpenDecompressed(t *testing.T) {
	d := mustTempDir(t, "testopen")
	defer os.RemoveAll(d)

	fname := mustGzipFile(t, d, "course.json.gz", `{"a": 1}`)
	r, err := OpenDecompressed(fname)
	if err != nil {
		t.Fatalf("opening: %v", err)
	}
	defer r.Close()
	if r.Name() != "course.json" {
		t.Errorf("unexpected name %s", r.Name())
	}
	buf, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if string(buf) != `{"a": 1}` {
		t.Errorf("unexpected contents %s", buf)
	}
}
