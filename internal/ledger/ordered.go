package ledger

// ordered is an insertion-ordered collection with a unique key per item.
// Removal keeps the relative order of the remaining items.
type ordered[K comparable, V any] struct {
	keyOf func(V) K
	items []V
	index map[K]int
}

func newOrdered[K comparable, V any](keyOf func(V) K, items []V) *ordered[K, V] {
	o := &ordered[K, V]{
		keyOf: keyOf,
		items: make([]V, 0, len(items)),
		index: make(map[K]int, len(items)),
	}
	for _, item := range items {
		o.put(item)
	}
	return o
}

func (o *ordered[K, V]) get(key K) (V, bool) {
	i, ok := o.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return o.items[i], true
}

func (o *ordered[K, V]) has(key K) bool {
	_, ok := o.index[key]
	return ok
}

// put replaces the item with the same key in place, or appends it
func (o *ordered[K, V]) put(item V) {
	key := o.keyOf(item)
	if i, ok := o.index[key]; ok {
		o.items[i] = item
		return
	}
	o.index[key] = len(o.items)
	o.items = append(o.items, item)
}

func (o *ordered[K, V]) remove(key K) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.items = append(o.items[:i], o.items[i+1:]...)
	delete(o.index, key)
	for j := i; j < len(o.items); j++ {
		o.index[o.keyOf(o.items[j])] = j
	}
	return true
}

func (o *ordered[K, V]) size() int {
	return len(o.items)
}

// list returns a copy of the items in insertion order
func (o *ordered[K, V]) list() []V {
	out := make([]V, len(o.items))
	copy(out, o.items)
	return out
}
