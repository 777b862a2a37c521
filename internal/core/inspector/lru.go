package inspector

import "container/list"

// resultStore holds cached results. Implementations are not goroutine safe;
// Cache serializes access.
type resultStore interface {
	get(key BufferPositionKey) (TypeQueryResult, bool)
	put(key BufferPositionKey, value TypeQueryResult) (evicted bool)
	remove(key BufferPositionKey) bool
	keys() []BufferPositionKey
	len() int
	clear()
}

type mapStore map[BufferPositionKey]TypeQueryResult

func (m mapStore) get(key BufferPositionKey) (TypeQueryResult, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapStore) put(key BufferPositionKey, value TypeQueryResult) bool {
	m[key] = value
	return false
}

func (m mapStore) remove(key BufferPositionKey) bool {
	_, ok := m[key]
	delete(m, key)
	return ok
}

func (m mapStore) keys() []BufferPositionKey {
	keys := make([]BufferPositionKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (m mapStore) len() int { return len(m) }

func (m mapStore) clear() {
	for k := range m {
		delete(m, k)
	}
}

// lruStore is a capacity-bounded least-recently-used store. A hit moves the
// entry to the front; inserting at capacity evicts the back.
type lruStore struct {
	capacity int
	items    map[BufferPositionKey]*list.Element
	order    *list.List // front = most-recently used
}

type lruEntry struct {
	key   BufferPositionKey
	value TypeQueryResult
}

func newLRUStore(capacity int) *lruStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &lruStore{
		capacity: capacity,
		items:    make(map[BufferPositionKey]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *lruStore) get(key BufferPositionKey) (TypeQueryResult, bool) {
	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

func (c *lruStore) put(key BufferPositionKey, value TypeQueryResult) bool {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*lruEntry).value = value
		return false
	}
	evicted := false
	if c.order.Len() >= c.capacity {
		evicted = c.evictLeastRecent()
	}
	c.items[key] = c.order.PushFront(&lruEntry{key: key, value: value})
	return evicted
}

func (c *lruStore) remove(key BufferPositionKey) bool {
	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, key)
	return true
}

func (c *lruStore) keys() []BufferPositionKey {
	keys := make([]BufferPositionKey, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*lruEntry).key)
	}
	return keys
}

func (c *lruStore) len() int { return c.order.Len() }

func (c *lruStore) clear() {
	c.order.Init()
	c.items = make(map[BufferPositionKey]*list.Element, c.capacity)
}

func (c *lruStore) evictLeastRecent() bool {
	back := c.order.Back()
	if back == nil {
		return false
	}
	c.order.Remove(back)
	delete(c.items, back.Value.(*lruEntry).key)
	return true
}
