package edxdk

// Error is a constant error type so that sentinel errors can be declared as
// constants.
type Error string

func (e Error) Error() string { return string(e) }

// ErrNotFound is returned by Collection.Get (possibly wrapped) when no record
// exists for the requested id.
const ErrNotFound = Error("not found")

// DB is a document store holding any number of named collections.
type DB interface {
	// Collection returns the named collection, creating it if needed.
	Collection(name string) (Collection, error)
	Close() error
}

// Collection is a set of JSON encoded records keyed by id. It is the only
// thing the pipelines know about the document store.
type Collection interface {
	// Get returns the record stored under id, or ErrNotFound.
	Get(id string) ([]byte, error)

	// Put inserts or overwrites the record stored under id.
	Put(id string, val []byte) error

	// Has reports whether a record is stored under id.
	Has(id string) (bool, error)

	// Scan calls fn for every record in ascending id order. If fn returns an
	// error the scan stops and the error is returned. The val slice is only
	// valid until fn returns.
	Scan(fn func(id string, val []byte) error) error

	// Drop removes every record in the collection.
	Drop() error
}
