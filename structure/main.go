package structure

import (
	"github.com/pilosa/edxdk"
	"github.com/pilosa/edxdk/backend"
	"github.com/pilosa/edxdk/file"
	"github.com/pkg/errors"
)

// Main imports one course structure export into a structure collection.
type Main struct {
	Backend string   `help:"Storage backend: bolt, leveldb, badger or memory."`
	Skip    []string `help:"Block categories to collapse, in order."`

	log   edxdk.Logger
	stats edxdk.Statter
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Backend: backend.Bolt,
		Skip:    RemovableCategories,
		log:     edxdk.NopLogger{},
		stats:   edxdk.NopStatter{},
	}
}

// SetObservability sets the logger and statter used by Run.
func (m *Main) SetObservability(log edxdk.Logger, stats edxdk.Statter) {
	m.log, m.stats = log, stats
}

// Run imports the export in jsonFile (optionally gzipped) into the named
// collection of database.
func (m *Main) Run(database, collection, jsonFile string) (err error) {
	r, err := file.OpenDecompressed(jsonFile)
	if err != nil {
		return errors.Wrap(err, "opening structure export")
	}
	defer r.Close()
	doc, err := DecodeDocument(r)
	if err != nil {
		return err
	}

	pool := backend.NewPool(m.Backend)
	defer func() {
		if cerr := pool.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	c, err := pool.Collection(database, collection)
	if err != nil {
		return err
	}

	im := NewImporter(NewStore(c))
	im.Log, im.Stats, im.Removable = m.log, m.stats, m.Skip
	rep, err := im.Run(doc)
	if err != nil {
		return errors.Wrapf(err, "importing %s", jsonFile)
	}
	m.log.Printf("imported %d blocks from %s into %s/%s (%d collapsed, %d edges)",
		rep.Nodes, jsonFile, database, collection, rep.Removed, rep.Edges)
	return nil
}
