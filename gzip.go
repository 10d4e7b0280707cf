package edxdk

import (
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Decompress wraps r in a gzip reader if its name ends in ".gz", which is how
// the platform ships rotated tracking logs. Other readers are returned as is.
func Decompress(r NamedReadCloser) (NamedReadCloser, error) {
	if !strings.HasSuffix(r.Name(), ".gz") {
		return r, nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		r.Close()
		return nil, errors.Wrapf(err, "opening gzip stream %s", r.Name())
	}
	return &gzipReader{Reader: zr, under: r}, nil
}

type gzipReader struct {
	*gzip.Reader
	under NamedReadCloser
}

func (g *gzipReader) Close() error {
	zerr := g.Reader.Close()
	err := g.under.Close()
	if zerr != nil {
		return errors.Wrap(zerr, "closing gzip stream")
	}
	return err
}

func (g *gzipReader) Name() string { return strings.TrimSuffix(g.under.Name(), ".gz") }

func (g *gzipReader) Meta() map[string]interface{} { return g.under.Meta() }
