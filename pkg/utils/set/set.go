package set

import (
	"cmp"
	"slices"
)

type Set[T cmp.Ordered] map[T]struct{}

func Of[T cmp.Ordered](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, i := range items {
		s.Add(i)
	}
	return s
}

func (s Set[T]) Add(v T) Set[T] {
	s[v] = struct{}{}
	return s
}

func (s Set[T]) Remove(v T) {
	delete(s, v)
}

func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order
func (s Set[T]) Sorted() []T {
	r := make([]T, 0, len(s))
	for v := range s {
		r = append(r, v)
	}
	slices.Sort(r)
	return r
}
