package graph

import "slices"

// set is an insertion-ordered set of vertices.
type set[T comparable] struct {
	items []T
	has   map[T]struct{}
}

func (s *set[T]) add(v T) bool {
	if s.has == nil {
		s.has = make(map[T]struct{})
	}
	if _, ok := s.has[v]; ok {
		return false
	}
	s.has[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *set[T]) addAll(o *set[T]) {
	for _, v := range o.items {
		s.add(v)
	}
}

func (s *set[T]) remove(v T) bool {
	if _, ok := s.has[v]; !ok {
		return false
	}
	delete(s.has, v)
	s.items = slices.DeleteFunc(s.items, func(x T) bool { return x == v })
	return true
}

func (s *set[T]) contains(v T) bool {
	_, ok := s.has[v]
	return ok
}

func (s *set[T]) len() int { return len(s.items) }

// keyed maps pre-entity keys to vertices, iterating in first-insertion
// order. A key that is deleted and put again keeps its original position.
type keyed[V any] struct {
	m    map[string]V
	keys []string
	seen map[string]struct{}
}

func newKeyed[V any]() *keyed[V] {
	return &keyed[V]{m: make(map[string]V), seen: make(map[string]struct{})}
}

func (k *keyed[V]) get(key string) (V, bool) {
	v, ok := k.m[key]
	return v, ok
}

func (k *keyed[V]) put(key string, v V) {
	k.m[key] = v
	if _, ok := k.seen[key]; !ok {
		k.seen[key] = struct{}{}
		k.keys = append(k.keys, key)
	}
}

func (k *keyed[V]) getOrPut(key string, create func() V) V {
	if v, ok := k.m[key]; ok {
		return v
	}
	v := create()
	k.put(key, v)
	return v
}

func (k *keyed[V]) delete(key string) { delete(k.m, key) }

func (k *keyed[V]) len() int { return len(k.m) }

func (k *keyed[V]) values() []V {
	out := make([]V, 0, len(k.m))
	for _, key := range k.keys {
		if v, ok := k.m[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

// groupBy splits vs into clusters sharing a key, in order of first
// appearance.
func groupBy[V any](vs []V, key func(V) string) [][]V {
	idx := make(map[string]int)
	var out [][]V
	for _, v := range vs {
		k := key(v)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], v)
	}
	return out
}

// distinct drops repeated entries, keeping the first occurrence.
func distinct[T comparable](vs []T) []T {
	seen := make(map[T]struct{}, len(vs))
	out := vs[:0]
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// canonical returns the member with the most songs, preferring the
// earliest on ties.
func canonical[V any](cluster []V, songs func(V) int) V {
	best := cluster[0]
	for _, v := range cluster[1:] {
		if songs(v) > songs(best) {
			best = v
		}
	}
	return best
}
