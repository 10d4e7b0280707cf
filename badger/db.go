// Package badger provides an edxdk.DB implementation using badger. Like the
// leveldb implementation, collections are key prefixes in one database.
package badger

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

var _ edxdk.DB = &DB{}

// DB is an edxdk.DB stored in a badger directory.
type DB struct {
	db *badger.DB
}

// Open opens (creating if needed) the badger database in dir.
func Open(dir string) (*DB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger at %v", dir)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying badger database.
func (d *DB) Close() error {
	return errors.Wrap(d.db.Close(), "closing badger")
}

// Collection returns the named collection. Collections exist implicitly.
func (d *DB) Collection(name string) (edxdk.Collection, error) {
	if name == "" {
		return nil, errors.New("collection name must not be empty")
	}
	return &Collection{db: d.db, prefix: append([]byte(name), 0)}, nil
}

// Collection is an edxdk.Collection stored under a key prefix.
type Collection struct {
	db     *badger.DB
	prefix []byte
}

func (c *Collection) key(id string) []byte {
	k := make([]byte, 0, len(c.prefix)+len(id))
	k = append(k, c.prefix...)
	return append(k, id...)
}

// Get implements edxdk.Collection.
func (c *Collection) Get(id string) (val []byte, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(id))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(edxdk.ErrNotFound, "id '%s'", id)
		} else if err != nil {
			return errors.Wrapf(err, "getting '%s'", id)
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

// Put implements edxdk.Collection.
func (c *Collection) Put(id string, val []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.key(id), append([]byte(nil), val...))
	})
	return errors.Wrapf(err, "putting '%s'", id)
}

// Has implements edxdk.Collection.
func (c *Collection) Has(id string) (has bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(id))
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		has = true
		return nil
	})
	return has, errors.Wrapf(err, "checking '%s'", id)
}

// Scan implements edxdk.Collection. It iterates a read transaction, so writes
// made by fn are not visited.
func (c *Collection) Scan(fn func(id string, val []byte) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return errors.Wrap(err, "copying value")
			}
			if err := fn(string(item.Key()[len(c.prefix):]), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// Drop implements edxdk.Collection.
func (c *Collection) Drop() error {
	return errors.Wrap(c.db.DropPrefix(c.prefix), "dropping prefix")
}
