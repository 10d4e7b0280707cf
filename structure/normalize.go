package structure

import (
	"sort"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// Normalize builds a Tree from a course structure export, replacing every raw
// block identifier, both as a key and inside children lists, with its short
// key (see edxdk.ShortKey). Short keys are expected to be unique within a
// course; a collision is reported as ErrDuplicateKey.
func Normalize(doc Document) (*Tree, error) {
	raws := make([]string, 0, len(doc))
	for raw := range doc {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	t := NewTree()
	for _, raw := range raws {
		rn := doc[raw]
		if rn == nil {
			return nil, errors.Errorf("block '%s' is null", raw)
		}
		children := make([]string, len(rn.Children))
		for i, c := range rn.Children {
			children[i] = edxdk.ShortKey(c)
		}
		metadata := rn.Metadata
		if metadata == nil {
			metadata = make(map[string]interface{})
		}
		err := t.Add(&Node{
			ID:       edxdk.ShortKey(raw),
			Category: rn.Category,
			Children: children,
			Metadata: metadata,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "normalizing '%s'", raw)
		}
	}
	return t, nil
}
