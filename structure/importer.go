package structure

import (
	"time"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// Importer runs a course structure export through the whole import pipeline:
// Normalize, Collapse, Annotate and finally Store.Insert for every node.
type Importer struct {
	Store *Store
	Log   edxdk.Logger
	Stats edxdk.Statter

	// Removable are the categories handed to Collapse.
	Removable []string
}

// NewImporter returns an Importer writing to store which does not log or
// record stats.
func NewImporter(store *Store) *Importer {
	return &Importer{
		Store:     store,
		Log:       edxdk.NopLogger{},
		Stats:     edxdk.NopStatter{},
		Removable: RemovableCategories,
	}
}

// Run imports doc. Dangling child references and unresolved ancestor chains
// are logged and reported, not returned as errors.
func (im *Importer) Run(doc Document) (Report, error) {
	start := time.Now()
	t, err := Normalize(doc)
	if err != nil {
		return Report{}, errors.Wrap(err, "normalizing")
	}
	im.Log.Debugf("normalized %d blocks", t.Len())

	removed, err := Collapse(t, im.Removable...)
	if err != nil {
		return Report{}, errors.Wrap(err, "collapsing")
	}
	im.Log.Debugf("collapsed %d blocks", removed)

	r := Annotate(t)
	r.Removed = removed
	im.Log.Printf("%d errors", r.Dangling)
	for _, id := range r.Unresolved {
		im.Log.Printf("no ancestor chain for '%s'", id)
	}

	for _, n := range t.Nodes() {
		if err := im.Store.Insert(n); err != nil {
			return r, err
		}
	}

	im.Stats.Count("structure.nodes", int64(r.Nodes), 1)
	im.Stats.Count("structure.removed", int64(r.Removed), 1)
	im.Stats.Count("structure.dangling", int64(r.Dangling), 1)
	im.Stats.Count("structure.unresolved", int64(len(r.Unresolved)), 1)
	im.Stats.Timing("structure.import", time.Since(start), 1)
	return r, nil
}
