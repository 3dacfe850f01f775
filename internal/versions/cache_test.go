package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/p-blackswan/protodocs/internal/protocol"
)

func TestDocumentCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newDocumentCache(2)
	a, b, d := &protocol.Document{}, &protocol.Document{}, &protocol.Document{}

	c.put("a", a)
	c.put("b", b)

	// "a" becomes most recent, so "b" goes first.
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Same(t, a, got)

	evicted, ok := c.put("d", d)
	assert.True(t, ok)
	assert.Equal(t, "b", evicted)

	_, ok = c.get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestDocumentCache_ReplaceDoesNotEvict(t *testing.T) {
	c := newDocumentCache(1)
	first, second := &protocol.Document{}, &protocol.Document{}

	c.put("a", first)
	_, evicted := c.put("a", second)
	assert.False(t, evicted)

	got, _ := c.get("a")
	assert.Same(t, second, got)
}

func TestDocumentCache_MinimumCapacity(t *testing.T) {
	c := newDocumentCache(0)
	c.put("a", &protocol.Document{})
	assert.Equal(t, 1, c.len())
}
