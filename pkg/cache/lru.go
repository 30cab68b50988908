// Package cache keeps rendered analysis responses in memory so repeated
// submissions of the same race are served without recomputing.
package cache

import (
	"crypto/sha256"
	"sync"
	"sync/atomic"
)

// DefaultMaxSize is the default memory budget of a ResponseCache (16 MiB).
const DefaultMaxSize = 16 * 1024 * 1024

const bytesPerKB = 1024.0

// Key identifies a response: the digest of the request parameters and body.
type Key [sha256.Size]byte

// NewKey derives a key from the output format and the raw request body.
func NewKey(format string, body []byte) Key {
	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write(body)

	var key Key

	copy(key[:], h.Sum(nil))

	return key
}

// ResponseCache is a size-bounded LRU cache of response bodies.
// Eviction prefers large, rarely read entries near the LRU tail.
type ResponseCache struct {
	mu          sync.Mutex
	entries     map[Key]*entry
	head        *entry // Most recently used.
	tail        *entry // Least recently used.
	maxSize     int64
	currentSize int64

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key         Key
	body        []byte
	contentType string
	reads       int64
	prev        *entry
	next        *entry
}

func (e *entry) size() int64 {
	return int64(len(e.body))
}

// evictionCost is reads per KiB; the cheapest entry is evicted first.
func (e *entry) evictionCost() float64 {
	sizeKB := max(float64(e.size())/bytesPerKB, 1)

	return float64(e.reads) / sizeKB
}

// New creates a cache holding at most maxSize bytes of response bodies.
// A non-positive maxSize selects DefaultMaxSize.
func New(maxSize int64) *ResponseCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &ResponseCache{
		entries: make(map[Key]*entry),
		maxSize: maxSize,
	}
}

// Get returns the cached body and content type for key.
func (c *ResponseCache) Get(key Key) ([]byte, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		return nil, "", false
	}

	c.hits.Add(1)

	e.reads++
	c.moveToFront(e)

	return e.body, e.contentType, true
}

// Put stores a copy of body. Bodies larger than the whole budget are ignored.
func (c *ResponseCache) Put(key Key, body []byte, contentType string) {
	size := int64(len(body))
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.moveToFront(e)

		return
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictCheapest()
	}

	e := &entry{
		key:         key,
		body:        append([]byte(nil), body...),
		contentType: contentType,
		reads:       1,
	}

	c.entries[key] = e
	c.currentSize += size
	c.addToFront(e)
}

// Stats holds cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns hits / lookups, or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Stats returns a snapshot of the counters.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

func (c *ResponseCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}

	c.unlink(e)
	c.addToFront(e)
}

func (c *ResponseCache) addToFront(e *entry) {
	e.prev = nil
	e.next = c.head

	if c.head != nil {
		c.head.prev = e
	}

	c.head = e

	if c.tail == nil {
		c.tail = e
	}
}

func (c *ResponseCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}

	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

// evictionSampleSize bounds how many tail entries are compared per eviction.
const evictionSampleSize = 5

func (c *ResponseCache) evictCheapest() {
	if c.tail == nil {
		return
	}

	victim := c.tail
	lowest := victim.evictionCost()

	candidate := c.tail.prev
	for i := 1; i < evictionSampleSize && candidate != nil; i++ {
		if cost := candidate.evictionCost(); cost < lowest {
			lowest = cost
			victim = candidate
		}

		candidate = candidate.prev
	}

	c.unlink(victim)
	delete(c.entries, victim.key)
	c.currentSize -= victim.size()
}
