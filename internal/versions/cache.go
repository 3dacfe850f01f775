package versions

import (
	"sync"

	"github.com/p-blackswan/protodocs/internal/protocol"
)

// node is a doubly linked list node holding a cached document.
type node struct {
	slug string
	doc  *protocol.Document
	prev *node
	next *node
}

// documentCache keeps the most recently used parsed documents.
// Get and put are O(1); eviction drops the least recently used slug.
type documentCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*node
	head     *node // most recently used (sentinel)
	tail     *node // least recently used (sentinel)
}

func newDocumentCache(capacity int) *documentCache {
	if capacity < 1 {
		capacity = 1
	}

	head := &node{}
	tail := &node{}
	head.next = tail
	tail.prev = head

	return &documentCache{
		capacity: capacity,
		items:    make(map[string]*node, capacity),
		head:     head,
		tail:     tail,
	}
}

func (c *documentCache) get(slug string) (*protocol.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[slug]
	if !ok {
		return nil, false
	}
	c.moveToFront(n)
	return n.doc, true
}

// put inserts or replaces a document and reports the evicted slug, if any.
func (c *documentCache) put(slug string, doc *protocol.Document) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[slug]; ok {
		n.doc = doc
		c.moveToFront(n)
		return "", false
	}

	var evicted string
	didEvict := false
	if len(c.items) >= c.capacity {
		victim := c.tail.prev
		c.remove(victim)
		delete(c.items, victim.slug)
		evicted, didEvict = victim.slug, true
	}

	n := &node{slug: slug, doc: doc}
	c.items[slug] = n
	c.pushFront(n)
	return evicted, didEvict
}

func (c *documentCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// --- linked list operations (caller must hold lock) ---

func (c *documentCache) remove(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
}

func (c *documentCache) pushFront(n *node) {
	n.next = c.head.next
	n.prev = c.head
	c.head.next.prev = n
	c.head.next = n
}

func (c *documentCache) moveToFront(n *node) {
	c.remove(n)
	c.pushFront(n)
}
