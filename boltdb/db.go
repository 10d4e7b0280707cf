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

// Package boltdb provides an edxdk.DB implementation using boltdb. Each
// collection is a top level bucket.
package boltdb

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

var _ edxdk.DB = &DB{}

// scanBatch is the number of records copied out of a read transaction at a
// time during Scan. Callbacks run outside of any transaction so that they may
// write to the same database.
const scanBatch = 1000

// DB is an edxdk.DB stored in a single bolt file.
type DB struct {
	Db *bolt.DB
}

// Open opens (creating if needed) the bolt file at filename.
func Open(filename string) (*DB, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	return &DB{Db: db}, nil
}

// Close syncs and closes the underlying boltdb.
func (d *DB) Close() error {
	err := d.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return d.Db.Close()
}

// Collection returns the named collection, creating its bucket if needed.
func (d *DB) Collection(name string) (edxdk.Collection, error) {
	if name == "" {
		return nil, errors.New("collection name must not be empty")
	}
	err := d.Db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating bucket '%s'", name)
	}
	return &Collection{db: d.Db, bucket: []byte(name)}, nil
}

// Collection is an edxdk.Collection backed by one bolt bucket.
type Collection struct {
	db     *bolt.DB
	bucket []byte
}

// Get implements edxdk.Collection.
func (c *Collection) Get(id string) (val []byte, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(c.bucket).Get([]byte(id))
		if v == nil {
			return errors.Wrapf(edxdk.ErrNotFound, "id '%s'", id)
		}
		val = append([]byte(nil), v...)
		return nil
	})
	return val, err
}

// Put implements edxdk.Collection.
func (c *Collection) Put(id string, val []byte) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(c.bucket).Put([]byte(id), val)
	})
	return errors.Wrapf(err, "putting '%s'", id)
}

// Has implements edxdk.Collection.
func (c *Collection) Has(id string) (has bool, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		has = tx.Bucket(c.bucket).Get([]byte(id)) != nil
		return nil
	})
	return has, err
}

type kv struct {
	k, v []byte
}

// Scan implements edxdk.Collection. Records are read in batches, so records
// put by fn after the current batch was read may or may not be visited.
func (c *Collection) Scan(fn func(id string, val []byte) error) error {
	var after []byte
	for {
		batch := make([]kv, 0, scanBatch)
		err := c.db.View(func(tx *bolt.Tx) error {
			cur := tx.Bucket(c.bucket).Cursor()
			var k, v []byte
			if after == nil {
				k, v = cur.First()
			} else {
				k, v = cur.Seek(after)
				if k != nil && string(k) == string(after) {
					k, v = cur.Next()
				}
			}
			for ; k != nil && len(batch) < scanBatch; k, v = cur.Next() {
				batch = append(batch, kv{k: append([]byte(nil), k...), v: append([]byte(nil), v...)})
			}
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "reading batch")
		}
		for _, rec := range batch {
			if err := fn(string(rec.k), rec.v); err != nil {
				return err
			}
		}
		if len(batch) < scanBatch {
			return nil
		}
		after = batch[len(batch)-1].k
	}
}

// Drop implements edxdk.Collection by recreating the bucket.
func (c *Collection) Drop() error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(c.bucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(c.bucket)
		return err
	})
	return errors.Wrapf(err, "dropping bucket '%s'", c.bucket)
}
