// Package json decodes streams of JSON objects, such as the platform's
// tracking logs (one event per line), into edxdk records.
package json

import (
	"encoding/json"
	"io"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// Source is an edxdk.Source for reading json data.
type Source struct {
	dec *json.Decoder
}

// NewSource gets a new json source which will decode from the given reader.
// Numbers are kept as json.Number so that records are re-encoded unchanged.
func NewSource(r io.Reader) *Source {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Source{
		dec: dec,
	}
}

// Record implements edxdk.Source. It returns the next json object that can be
// decoded from the reader. It is guaranteed to return a map[string]interface{}
// if there is no error.
func (s *Source) Record() (rec interface{}, err error) {
	var res map[string]interface{}
	err = s.dec.Decode(&res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type rawSourceSource struct {
	rs edxdk.RawSource

	s      *Source
	reader edxdk.NamedReadCloser
}

// NewSourceFromRawSource returns a Source which decodes every reader of rs in
// turn, transparently decompressing gzipped ones. A decoding error is
// returned once, after which the rest of that reader is skipped.
func NewSourceFromRawSource(rs edxdk.RawSource) edxdk.Source {
	return &rawSourceSource{rs: rs}
}

func (r *rawSourceSource) Record() (rec interface{}, err error) {
	if r.s == nil {
		reader, err := r.rs.NextReader()
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "getting next reader")
		} else if err == io.EOF {
			return nil, err
		}
		r.reader, err = edxdk.Decompress(reader)
		if err != nil {
			return nil, err
		}
		r.s = NewSource(r.reader)
	}
	rec, err = r.s.Record()
	if err == io.EOF {
		r.next()
		return r.Record()
	} else if err != nil {
		name := r.reader.Name()
		r.next()
		return nil, errors.Wrapf(err, "decoding %s", name)
	}
	return rec, nil
}

func (r *rawSourceSource) next() {
	r.reader.Close()
	r.s, r.reader = nil, nil
}
