// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package leveldb provides an edxdk.DB implementation using leveldb. All
// collections share one leveldb; records are keyed by collection name, a zero
// byte, and the record id.
package leveldb

import (
	"os"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var _ edxdk.DB = &DB{}

// DB is an edxdk.DB stored in a leveldb directory.
type DB struct {
	db *leveldb.DB
}

// Open opens (creating if needed) the leveldb in dirname.
func Open(dirname string) (*DB, error) {
	err := os.MkdirAll(dirname, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	db, err := leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", dirname)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying leveldb.
func (d *DB) Close() error {
	return errors.Wrap(d.db.Close(), "closing leveldb")
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
	db     *leveldb.DB
	prefix []byte
}

func (c *Collection) key(id string) []byte {
	k := make([]byte, 0, len(c.prefix)+len(id))
	k = append(k, c.prefix...)
	return append(k, id...)
}

// Get implements edxdk.Collection.
func (c *Collection) Get(id string) ([]byte, error) {
	val, err := c.db.Get(c.key(id), &opt.ReadOptions{})
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(edxdk.ErrNotFound, "id '%s'", id)
	} else if err != nil {
		return nil, errors.Wrapf(err, "getting '%s'", id)
	}
	return val, nil
}

// Put implements edxdk.Collection.
func (c *Collection) Put(id string, val []byte) error {
	return errors.Wrapf(c.db.Put(c.key(id), val, &opt.WriteOptions{}), "putting '%s'", id)
}

// Has implements edxdk.Collection.
func (c *Collection) Has(id string) (bool, error) {
	has, err := c.db.Has(c.key(id), &opt.ReadOptions{})
	return has, errors.Wrapf(err, "checking '%s'", id)
}

// Scan implements edxdk.Collection. The iterator reads from an implicit
// snapshot, so writes made by fn are not visited.
func (c *Collection) Scan(fn func(id string, val []byte) error) error {
	iter := c.db.NewIterator(util.BytesPrefix(c.prefix), nil)
	defer iter.Release()
	for iter.Next() {
		id := string(iter.Key()[len(c.prefix):])
		if err := fn(id, iter.Value()); err != nil {
			return err
		}
	}
	return errors.Wrap(iter.Error(), "iterating")
}

// Drop implements edxdk.Collection.
func (c *Collection) Drop() error {
	iter := c.db.NewIterator(util.BytesPrefix(c.prefix), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "iterating for drop")
	}
	return errors.Wrap(c.db.Write(batch, nil), "writing drop batch")
}
