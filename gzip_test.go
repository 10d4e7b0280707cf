package edxdk

import (
	"bytes"
	"io/ioutil"
	"testing"

	"github.com/klauspost/compress/gzip"
)

type bufReader struct {
	*bytes.Reader
	name   string
	closed bool
}

func (b *bufReader) Close() error                 { b.closed = true; return nil }
func (b *bufReader) Name() string                 { return b.name }
func (b *bufReader) Meta() map[string]interface{} { return nil }

func TestDecompress(t *testing.T) {
	zbuf := &bytes.Buffer{}
	zw := gzip.NewWriter(zbuf)
	if _, err := zw.Write([]byte(`{"id":"e1"}`)); err != nil {
		t.Fatalf("writing gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}

	under := &bufReader{Reader: bytes.NewReader(zbuf.Bytes()), name: "tracking.log.gz"}
	r, err := Decompress(under)
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	MustBe(t, string(data), `{"id":"e1"}`, "content")
	MustBe(t, r.Name(), "tracking.log", "name")
	if err := r.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
	MustBe(t, under.closed, true, "underlying closed")

	plain := &bufReader{Reader: bytes.NewReader([]byte("x")), name: "tracking.log"}
	r, err = Decompress(plain)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if r != plain {
		t.Fatal("expected plain reader to be returned unchanged")
	}

	bad := &bufReader{Reader: bytes.NewReader([]byte("not gzip")), name: "bad.gz"}
	if _, err := Decompress(bad); err == nil {
		t.Fatal("expected error for corrupt gzip")
	}
	MustBe(t, bad.closed, true, "closed on error")
}
