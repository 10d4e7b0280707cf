package structure

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// RawNode is one entry of a course structure export, before normalization.
type RawNode struct {
	Category string                 `json:"category"`
	Children []string               `json:"children"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Document is a course structure export: a mapping from raw block identifier
// (e.g. "i4x://MITx/6.002x/chapter/Week_1") to its block.
type Document map[string]*RawNode

// DecodeDocument reads a course structure export.
func DecodeDocument(r io.Reader) (Document, error) {
	doc := make(Document)
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding course structure")
	}
	return doc, nil
}
