package edxdk

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MapDB is an in-memory implementation of DB. It is mostly useful for tests
// and dry runs, since nothing survives the process.
type MapDB struct {
	lock        sync.RWMutex
	collections map[string]*MapCollection
}

// NewMapDB creates a new MapDB.
func NewMapDB() *MapDB {
	return &MapDB{
		collections: make(map[string]*MapCollection),
	}
}

// Collection returns the named collection, creating it if needed.
func (m *MapDB) Collection(name string) (Collection, error) {
	if name == "" {
		return nil, errors.New("collection name must not be empty")
	}
	m.lock.RLock()
	if mc, ok := m.collections[name]; ok {
		m.lock.RUnlock()
		return mc, nil
	}
	m.lock.RUnlock()
	m.lock.Lock()
	defer m.lock.Unlock()
	if mc, ok := m.collections[name]; ok {
		return mc, nil
	}
	m.collections[name] = NewMapCollection()
	return m.collections[name], nil
}

// Close is a no-op for MapDB.
func (m *MapDB) Close() error { return nil }

// MapCollection is an in-memory Collection.
type MapCollection struct {
	l sync.RWMutex
	m map[string][]byte
}

// NewMapCollection creates an empty MapCollection.
func NewMapCollection() *MapCollection {
	return &MapCollection{
		m: make(map[string][]byte),
	}
}

// Get implements Collection.
func (c *MapCollection) Get(id string) ([]byte, error) {
	c.l.RLock()
	defer c.l.RUnlock()
	val, ok := c.m[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id '%s'", id)
	}
	return append([]byte(nil), val...), nil
}

// Put implements Collection.
func (c *MapCollection) Put(id string, val []byte) error {
	c.l.Lock()
	c.m[id] = append([]byte(nil), val...)
	c.l.Unlock()
	return nil
}

// Has implements Collection.
func (c *MapCollection) Has(id string) (bool, error) {
	c.l.RLock()
	_, ok := c.m[id]
	c.l.RUnlock()
	return ok, nil
}

// Scan implements Collection. The records are snapshotted before fn is first
// called, so fn may write to the collection.
func (c *MapCollection) Scan(fn func(id string, val []byte) error) error {
	c.l.RLock()
	ids := make([]string, 0, len(c.m))
	vals := make(map[string][]byte, len(c.m))
	for id, val := range c.m {
		ids = append(ids, id)
		vals[id] = val
	}
	c.l.RUnlock()
	sort.Strings(ids)
	for _, id := range ids {
		if err := fn(id, vals[id]); err != nil {
			return err
		}
	}
	return nil
}

// Drop implements Collection.
func (c *MapCollection) Drop() error {
	c.l.Lock()
	c.m = make(map[string][]byte)
	c.l.Unlock()
	return nil
}

// Len returns the number of records in the collection.
func (c *MapCollection) Len() int {
	c.l.RLock()
	defer c.l.RUnlock()
	return len(c.m)
}
