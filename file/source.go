// Package file reads tracking logs and course structure exports from local
// disk.
package file

import (
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/pilosa/edxdk"
	"github.com/pilosa/edxdk/json"
	"github.com/pkg/errors"
)

// Source is an edxdk.Source which reads json objects from files on disk.
type Source struct {
	rawSource *RawSource
	records   chan record
}

// SrcOption is a functional option for the file Source.
type SrcOption func(s *Source) error

// OptSrcPath sets the path name for the file or directory to use for source
// data.
func OptSrcPath(pathname string) SrcOption {
	return func(s *Source) (err error) {
		s.rawSource, err = NewRawSource(pathname)
		if err != nil {
			return errors.Wrap(err, "getting raw source")
		}
		return nil
	}
}

func (s *Source) run() {
	src := json.NewSourceFromRawSource(s.rawSource)
	for {
		var r record
		r.data, r.err = src.Record()
		if r.err == io.EOF {
			break
		}
		s.records <- r
	}
	close(s.records)
}

// NewSource gets a new file source which will read json data from a file or
// all files in a directory, in name order. Files ending in .gz are
// decompressed.
func NewSource(opts ...SrcOption) (*Source, error) {
	s := &Source{
		records: make(chan record, 100),
	}
	for _, opt := range opts {
		err := opt(s)
		if err != nil {
			return nil, err
		}
	}
	if s.rawSource == nil {
		return nil, errors.New("no path given for file source")
	}
	go s.run()
	return s, nil
}

// Record implements edxdk.Source returning a map[string]interface{} for each
// json object in the source files.
func (s *Source) Record() (interface{}, error) {
	rec, ok := <-s.records
	if !ok {
		return nil, io.EOF
	}
	return rec.data, rec.err
}

type record struct {
	data interface{}
	err  error
}

// RawSource hands out one reader per file.
type RawSource struct {
	files   []string
	fileIdx *uint64
}

// NewRawSource returns a RawSource over pathname, or over every regular file
// in it if it is a directory.
func NewRawSource(pathname string) (*RawSource, error) {
	fileIdx := uint64(0)
	s := &RawSource{
		fileIdx: &fileIdx,
	}
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if info.IsDir() {
		infos, err := ioutil.ReadDir(pathname)
		if err != nil {
			return nil, errors.Wrap(err, "reading directory")
		}
		s.files = make([]string, 0, len(infos))
		for _, info = range infos {
			if info.IsDir() {
				continue
			}
			s.files = append(s.files, path.Join(pathname, info.Name()))
		}
		sort.Strings(s.files)
	} else {
		s.files = []string{pathname}
	}
	return s, nil
}

type metaFile struct {
	*os.File
}

func (m *metaFile) Name() string {
	return filepath.Base(m.File.Name())
}

func (m *metaFile) Meta() map[string]interface{} {
	return map[string]interface{}{"path": m.File.Name()}
}

// NextReader implements edxdk.RawSource.
func (s *RawSource) NextReader() (edxdk.NamedReadCloser, error) {
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}
	return Open(s.files[idx])
}

// Open opens a single file as an edxdk.NamedReadCloser.
func Open(name string) (edxdk.NamedReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	return &metaFile{f}, nil
}

// OpenDecompressed is Open followed by edxdk.Decompress.
func OpenDecompressed(name string) (edxdk.NamedReadCloser, error) {
	r, err := Open(name)
	if err != nil {
		return nil, err
	}
	return edxdk.Decompress(r)
}
