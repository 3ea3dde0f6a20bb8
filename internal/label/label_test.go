package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreshIsMonotonicPerPrefix(t *testing.T) {
	g := NewGenerator()

	assert.Equal(t, "then_1", g.Fresh("then"))
	assert.Equal(t, "then_2", g.Fresh("then"))
	assert.Equal(t, "else_1", g.Fresh("else"), "a different prefix starts its own counter at 1")
	assert.Equal(t, "then_3", g.Fresh("then"))
}

func TestTopoSortOrdersSuperclassFirst(t *testing.T) {
	order, err := TopoSort([]ClassNode{
		{Name: "Dog", Super: "Animal"},
		{Name: "Animal", Super: "Obj"},
		{Name: "Cat", Super: "Animal"},
	})
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["Animal"], pos["Dog"])
	assert.Less(t, pos["Animal"], pos["Cat"])
}

func TestTopoSortDetectsCycle(t *testing.T) {
	_, err := TopoSort([]ClassNode{
		{Name: "A", Super: "B"},
		{Name: "B", Super: "A"},
	})
	assert.Error(t, err)
}

func TestTopoSortIgnoresUnknownSuper(t *testing.T) {
	// A class whose declared super isn't itself in the batch (e.g. a
	// builtin already resolved elsewhere) has no incoming edge and is
	// treated as a root.
	order, err := TopoSort([]ClassNode{{Name: "Widget", Super: "Obj"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget"}, order)
}
