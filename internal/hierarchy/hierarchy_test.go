package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSample seeds Obj -> Animal -> Dog and Obj -> Animal -> Cat, with
// Animal declaring SPEAK() and Dog overriding it.
func buildSample(t *testing.T) *Hierarchy {
	t.Helper()
	h := New()
	require.NoError(t, h.AddClass(&ClassDescriptor{
		Name: "Animal", Super: "Obj",
		Methods: []MethodDescriptor{{Owner: "Animal", Name: "SPEAK", Params: nil, Ret: "String"}},
	}))
	require.NoError(t, h.AddClass(&ClassDescriptor{
		Name: "Dog", Super: "Animal",
		Methods: []MethodDescriptor{{Owner: "Dog", Name: "SPEAK", Params: nil, Ret: "String"}},
	}))
	require.NoError(t, h.AddClass(&ClassDescriptor{Name: "Cat", Super: "Animal"}))
	return h
}

func TestAddClassUnknownSuperclass(t *testing.T) {
	h := New()
	err := h.AddClass(&ClassDescriptor{Name: "Orphan", Super: "Ghost"})
	assert.Error(t, err)
}

func TestIsSubtype(t *testing.T) {
	h := buildSample(t)

	assert.True(t, h.IsSubtype("Animal", "Dog"))
	assert.True(t, h.IsSubtype("Obj", "Dog"))
	assert.True(t, h.IsSubtype("Dog", "Dog"))
	assert.False(t, h.IsSubtype("Dog", "Animal"))
	assert.False(t, h.IsSubtype("Dog", "Cat"))
}

func TestLCA(t *testing.T) {
	h := buildSample(t)

	tests := []struct {
		a, b, want string
	}{
		{"Dog", "Cat", "Animal"},
		{"Dog", "Dog", "Dog"},
		{"Dog", "Animal", "Animal"},
		{"Dog", "Obj", "Obj"},
	}
	for _, tt := range tests {
		got, err := h.LCA(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLCABottomAbsorption(t *testing.T) {
	h := buildSample(t)

	got, err := h.LCA("", "Dog")
	require.NoError(t, err)
	assert.Equal(t, "Dog", got)

	got, err = h.LCA("Dog", "")
	require.NoError(t, err)
	assert.Equal(t, "Dog", got)
}

func TestResolveMethodWalksToAncestor(t *testing.T) {
	h := buildSample(t)

	defClass, desc, err := h.ResolveMethod("Cat", "SPEAK")
	require.NoError(t, err)
	assert.Equal(t, "Animal", defClass)
	assert.Equal(t, "String", desc.Ret)

	defClass, _, err = h.ResolveMethod("Dog", "SPEAK")
	require.NoError(t, err)
	assert.Equal(t, "Dog", defClass, "Dog overrides SPEAK, so resolution must stop at Dog rather than Animal")
}

func TestResolveMethodNotFound(t *testing.T) {
	h := buildSample(t)
	_, _, err := h.ResolveMethod("Cat", "FLY")
	assert.Error(t, err)
}

func TestCheckCallArityMismatch(t *testing.T) {
	h := New()
	require.NoError(t, h.AddClass(&ClassDescriptor{
		Name: "Greeter", Super: "Obj",
		Methods: []MethodDescriptor{{Owner: "Greeter", Name: "GREET", Params: []string{"Obj"}, Ret: "Nothing"}},
	}))
	_, _, err := h.CheckCall("Greeter", "GREET", nil)
	assert.Error(t, err)
}

func TestCheckCallArgumentSubtyping(t *testing.T) {
	h := buildSample(t)
	require.NoError(t, h.AddClass(&ClassDescriptor{
		Name: "Shelter", Super: "Obj",
		Methods: []MethodDescriptor{{Owner: "Shelter", Name: "ADOPT", Params: []string{"Animal"}, Ret: "Nothing"}},
	}))

	_, ret, err := h.CheckCall("Shelter", "ADOPT", []string{"Dog"})
	require.NoError(t, err)
	assert.Equal(t, "Nothing", ret)

	_, _, err = h.CheckCall("Shelter", "ADOPT", []string{"Obj"})
	assert.Error(t, err, "Obj is not a subtype of the declared Animal parameter")
}

func TestClassNamesPreservesInsertionOrder(t *testing.T) {
	h := buildSample(t)
	assert.Equal(t, []string{"Obj", "Animal", "Dog", "Cat"}, h.ClassNames())
}

func TestDepth(t *testing.T) {
	h := buildSample(t)
	assert.Equal(t, 2, h.Depth())
}
