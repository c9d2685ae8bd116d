package store

import "sort"

// table keeps one entity kind keyed by id. Rows are stored by value so callers
// never alias internal state; order records first insertion for stable listing.
type table[T any] struct {
	rows  map[string]T
	order map[string]uint64
}

func newTable[T any]() *table[T] {
	return &table[T]{
		rows:  make(map[string]T),
		order: make(map[string]uint64),
	}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) put(id string, v T, seq uint64) {
	if _, ok := t.order[id]; !ok {
		t.order[id] = seq
	}
	t.rows[id] = v
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	delete(t.order, id)
	return true
}

func (t *table[T]) list(keep func(T) bool) []T {
	ids := make([]string, 0, len(t.rows))
	for id, v := range t.rows {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return t.order[ids[i]] < t.order[ids[j]] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) len() int {
	return len(t.rows)
}

func (t *table[T]) clear() {
	t.rows = make(map[string]T)
	t.order = make(map[string]uint64)
}
