package edxdk_test

import (
	"testing"

	"github.com/pilosa/edxdk"
	"github.com/pilosa/edxdk/test"
)

func TestMapDBSuite(t *testing.T) {
	test.CollectionSuite(t, edxdk.NewMapDB())
}
