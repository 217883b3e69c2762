package ecs

// OrderedStore is a generic typed store that iterates in insertion order.
// Tick processing walks it, so the order must be stable across runs.
type OrderedStore[T any] struct {
	data  map[EntityID]*T
	order []EntityID
}

func NewOrderedStore[T any]() *OrderedStore[T] {
	return &OrderedStore[T]{
		data:  make(map[EntityID]*T, 64),
		order: make([]EntityID, 0, 64),
	}
}

// Set inserts or replaces the value for id. Replacing keeps the original position.
func (s *OrderedStore[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.order = append(s.order, id)
	}
	s.data[id] = c
}

func (s *OrderedStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

// Remove deletes id and returns the value it held.
func (s *OrderedStore[T]) Remove(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	if !ok {
		return nil, false
	}
	delete(s.data, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return c, true
}

func (s *OrderedStore[T]) Len() int {
	return len(s.order)
}

// Each visits entries in insertion order. fn must not add or remove entries.
func (s *OrderedStore[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.order {
		fn(id, s.data[id])
	}
}
