// Package backend opens an edxdk.DB by backend name.
package backend

import (
	"sync"

	"github.com/pilosa/edxdk"
	"github.com/pilosa/edxdk/badger"
	"github.com/pilosa/edxdk/boltdb"
	"github.com/pilosa/edxdk/leveldb"
	"github.com/pkg/errors"
)

// Names of the supported backends.
const (
	Bolt    = "bolt"
	LevelDB = "leveldb"
	Badger  = "badger"
	Memory  = "memory"
)

// Open opens the database at path using the named backend. For bolt the path
// is a file, for leveldb and badger a directory; memory ignores it.
func Open(kind, path string) (edxdk.DB, error) {
	if kind != Memory && path == "" {
		return nil, errors.New("database path must not be empty")
	}
	switch kind {
	case Bolt, "":
		return boltdb.Open(path)
	case LevelDB:
		return leveldb.Open(path)
	case Badger:
		return badger.Open(path)
	case Memory:
		return edxdk.NewMapDB(), nil
	default:
		return nil, errors.Errorf("unknown backend '%s'", kind)
	}
}

// Pool opens each path at most once, so that pipelines which read and write
// the same database (e.g. tracking source and destination in one bolt file)
// share a handle rather than contending for the file lock.
type Pool struct {
	Kind string

	mu  sync.Mutex
	dbs map[string]edxdk.DB
}

// NewPool returns a Pool opening databases with the given backend.
func NewPool(kind string) *Pool {
	return &Pool{Kind: kind, dbs: make(map[string]edxdk.DB)}
}

// Collection opens (or reuses) the database at path and returns its named
// collection.
func (p *Pool) Collection(path, name string) (edxdk.Collection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	db, ok := p.dbs[path]
	if !ok {
		var err error
		db, err = Open(p.Kind, path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s database '%s'", p.Kind, path)
		}
		p.dbs[path] = db
	}
	c, err := db.Collection(name)
	return c, errors.Wrapf(err, "getting collection '%s'", name)
}

// Close closes every database opened by the pool, returning the first error.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for path, db := range p.dbs {
		if err := db.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "closing '%s'", path)
		}
		delete(p.dbs, path)
	}
	return first
}
