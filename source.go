package edxdk

import "io"

// Source is the interface for getting raw data one record at a time.
// Implementations of Source should be thread safe. Record returns io.EOF once
// the source is exhausted.
type Source interface {
	Record() (interface{}, error)
}

// NamedReadCloser is an io.ReadCloser which knows where its data came from,
// e.g. a file name or an S3 object key.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
	Meta() map[string]interface{}
}

// RawSource hands out one reader per underlying object (file, S3 object...).
// NextReader returns io.EOF when there are no more objects.
type RawSource interface {
	NextReader() (NamedReadCloser, error)
}
