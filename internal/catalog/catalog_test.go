package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCatalog = `{
	"Obj": {"super": "Obj", "fields": {}, "methods": {
		"STR": {"params": [], "ret": "String"},
		"EQUALS": {"params": ["Obj"], "ret": "Boolean"}
	}},
	"Int": {"super": "Obj", "fields": {}, "methods": {
		"PLUS": {"params": ["Int"], "ret": "Int"}
	}},
	"String": {"super": "Obj", "fields": {}, "methods": {}},
	"Boolean": {"super": "Obj", "fields": {}, "methods": {
		"AND": {"params": ["Boolean"], "ret": "Boolean"}
	}},
	"Nothing": {"super": "Obj", "fields": {}, "methods": {}}
}`

func TestLoadReaderSeedsBuiltins(t *testing.T) {
	h, err := LoadReader(strings.NewReader(minimalCatalog))
	require.NoError(t, err)

	for _, name := range []string{"Obj", "Int", "String", "Boolean", "Nothing"} {
		_, ok := h.FindClass(name)
		assert.True(t, ok, "catalog must register %s", name)
	}

	_, desc, err := h.ResolveMethod("Int", "PLUS")
	require.NoError(t, err)
	assert.Equal(t, "Int", desc.Ret)
}

func TestLoadReaderRejectsMissingBuiltin(t *testing.T) {
	_, err := LoadReader(strings.NewReader(`{"Obj": {"super": "Obj"}}`))
	assert.Error(t, err)
}

func TestLoadReaderTopologicallyOrdersDependentClasses(t *testing.T) {
	// IntPair sorts alphabetically before its superclass Pair (and a Go map
	// has no stable iteration order anyway); Load must still succeed since
	// it derives its own topological order from the super edges rather
	// than relying on key order.
	withExtra := strings.Replace(minimalCatalog, `"Nothing": {"super": "Obj", "fields": {}, "methods": {}}`,
		`"Nothing": {"super": "Obj", "fields": {}, "methods": {}},
		 "Pair": {"super": "Obj", "fields": {"left": "Obj", "right": "Obj"}, "methods": {}},
		 "IntPair": {"super": "Pair", "fields": {}, "methods": {}}`, 1)

	h, err := LoadReader(strings.NewReader(withExtra))
	require.NoError(t, err)

	pair, ok := h.FindClass("Pair")
	require.True(t, ok)
	assert.Len(t, pair.Fields, 2)

	assert.True(t, h.IsSubtype("Pair", "IntPair"))
}

func TestLoadReaderRejectsUnresolvableSuperclass(t *testing.T) {
	broken := strings.Replace(minimalCatalog, `"Int": {"super": "Obj"`, `"Int": {"super": "Ghost"`, 1)
	_, err := LoadReader(strings.NewReader(broken))
	assert.Error(t, err)
}
