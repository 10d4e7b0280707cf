package tracking

import (
	"github.com/pilosa/edxdk"
	"github.com/pilosa/edxdk/structure"
	"github.com/pkg/errors"
)

// Enricher copies parent_data and metadata from the course structure block an
// event refers to onto the event.
type Enricher struct {
	Store *structure.Store
}

// NewEnricher returns an Enricher looking blocks up in store.
func NewEnricher(store *structure.Store) *Enricher {
	return &Enricher{Store: store}
}

// Enrich adds the referenced block's data to e and reports whether a block
// was found. page_close events are left alone. A reference which matches no
// block is not an error.
func (en *Enricher) Enrich(e Event) (bool, error) {
	if e.EventType() == "page_close" {
		return false, nil
	}
	for _, ref := range e.Refs() {
		n, err := en.lookup(ref)
		if errors.Cause(err) == edxdk.ErrNotFound {
			continue
		} else if err != nil {
			return false, errors.Wrapf(err, "looking up block '%s'", ref)
		}
		if n.ParentData != nil {
			e["parent_data"] = n.ParentData
		}
		if n.Metadata != nil {
			e["metadata"] = n.Metadata
		}
		return true, nil
	}
	return false, nil
}

func (en *Enricher) lookup(ref string) (*structure.Node, error) {
	n, err := en.Store.FindByID(ref)
	if errors.Cause(err) == edxdk.ErrNotFound {
		return en.Store.FindBySuffix(ref)
	}
	return n, err
}
