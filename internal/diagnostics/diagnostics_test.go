package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionStringOmitsUnknownLocation(t *testing.T) {
	assert.Equal(t, "", Position{}.String())
}

func TestPositionStringWithAndWithoutFile(t *testing.T) {
	assert.Equal(t, "3:7", Position{Line: 3, Col: 7}.String())
	assert.Equal(t, "foo.qk:3:7", Position{File: "foo.qk", Line: 3, Col: 7}.String())
}

func TestErrorRenderingWithAndWithoutLocation(t *testing.T) {
	withLoc := New(ErrUseBeforeInit, Position{Line: 2, Col: 4}, "use of %q before assignment", "x")
	assert.Equal(t, "2:4: UseBeforeInit: use of \"x\" before assignment", withLoc.Error())

	noLoc := New(ErrInvalidType, Position{}, "unknown type %q", "Bogus")
	assert.Equal(t, "InvalidType: unknown type \"Bogus\"", noLoc.Error())
}

func TestBagCollectsAndIgnoresNil(t *testing.T) {
	var bag Bag
	assert.False(t, bag.HasErrors())

	bag.Add(nil)
	assert.False(t, bag.HasErrors(), "Add(nil) must be a no-op")

	bag.Add(New(ErrParseError, Position{}, "boom"))
	assert.True(t, bag.HasErrors())
	assert.Len(t, bag.Errors, 1)
}
