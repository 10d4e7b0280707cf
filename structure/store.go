package structure

import (
	"encoding/json"
	"strings"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// Store persists Nodes in a Collection, one JSON record per node keyed by
// node id.
type Store struct {
	c edxdk.Collection
}

// NewStore returns a Store backed by c.
func NewStore(c edxdk.Collection) *Store {
	return &Store{c: c}
}

// Insert writes n, replacing any node stored under the same id.
func (s *Store) Insert(n *Node) error {
	val, err := json.Marshal(n)
	if err != nil {
		return errors.Wrapf(err, "marshaling node '%s'", n.ID)
	}
	return errors.Wrapf(s.c.Put(n.ID, val), "inserting node '%s'", n.ID)
}

// FindByID returns the node stored under id, or an error wrapping
// edxdk.ErrNotFound.
func (s *Store) FindByID(id string) (*Node, error) {
	val, err := s.c.Get(id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting node '%s'", id)
	}
	return decodeNode(id, val)
}

const errStopScan = edxdk.Error("stop scan")

// FindBySuffix returns the first node, in id order, whose id contains
// fragment. An empty fragment never matches.
func (s *Store) FindBySuffix(fragment string) (*Node, error) {
	if fragment == "" {
		return nil, errors.Wrap(edxdk.ErrNotFound, "empty fragment")
	}
	var found *Node
	err := s.c.Scan(func(id string, val []byte) (err error) {
		if !strings.Contains(id, fragment) {
			return nil
		}
		found, err = decodeNode(id, val)
		if err != nil {
			return err
		}
		return errStopScan
	})
	if err != nil && errors.Cause(err) != errStopScan {
		return nil, errors.Wrapf(err, "scanning for '%s'", fragment)
	}
	if found == nil {
		return nil, errors.Wrapf(edxdk.ErrNotFound, "no node matching '%s'", fragment)
	}
	return found, nil
}

func decodeNode(id string, val []byte) (*Node, error) {
	n := &Node{}
	if err := json.Unmarshal(val, n); err != nil {
		return nil, errors.Wrapf(err, "decoding node '%s'", id)
	}
	return n, nil
}
