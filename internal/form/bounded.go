package form

import (
	"fmt"
	"strings"

	"autoposter/internal/services"
)

// MaxListItems is the capacity of every bounded form collection.
const MaxListItems = 5

var (
	ErrListFull  = fmt.Errorf("%w: list is at capacity", services.ErrValidation)
	ErrBlankItem = fmt.Errorf("%w: item is blank", services.ErrValidation)
	ErrDuplicate = fmt.Errorf("%w: item already present", services.ErrValidation)
)

// BoundedList is an insertion-ordered collection with a fixed capacity. Each
// element is identified by the string returned from key; when unique is set,
// adding an element whose key is already present is rejected.
type BoundedList[T any] struct {
	items  []T
	limit  int
	key    func(T) string
	unique bool
}

// NewBoundedList builds an empty list holding at most limit elements.
func NewBoundedList[T any](limit int, key func(T) string, unique bool) *BoundedList[T] {
	if limit <= 0 {
		limit = MaxListItems
	}
	return &BoundedList[T]{limit: limit, key: key, unique: unique}
}

// Add appends item at the tail. It returns ErrListFull, ErrBlankItem, or
// ErrDuplicate without modifying the list when a rule rejects the item.
func (l *BoundedList[T]) Add(item T) error {
	if len(l.items) >= l.limit {
		return ErrListFull
	}
	k := l.key(item)
	if strings.TrimSpace(k) == "" {
		return ErrBlankItem
	}
	if l.unique && l.indexOf(k) >= 0 {
		return ErrDuplicate
	}
	l.items = append(l.items, item)
	return nil
}

// Remove deletes the element with the given key. It reports whether an
// element was removed; an absent key is a no-op.
func (l *BoundedList[T]) Remove(key string) bool {
	idx := l.indexOf(key)
	if idx < 0 {
		return false
	}
	l.items = append(l.items[:idx:idx], l.items[idx+1:]...)
	return true
}

// Contains reports whether an element with key is present.
func (l *BoundedList[T]) Contains(key string) bool {
	return l.indexOf(key) >= 0
}

// Items returns a copy of the elements in insertion order.
func (l *BoundedList[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *BoundedList[T]) Len() int { return len(l.items) }

func (l *BoundedList[T]) Cap() int { return l.limit }

// Full reports whether another Add would be rejected for capacity.
func (l *BoundedList[T]) Full() bool { return len(l.items) >= l.limit }

// Clone returns an independent copy of the list.
func (l *BoundedList[T]) Clone() *BoundedList[T] {
	return &BoundedList[T]{
		items:  l.Items(),
		limit:  l.limit,
		key:    l.key,
		unique: l.unique,
	}
}

func (l *BoundedList[T]) indexOf(key string) int {
	for i, item := range l.items {
		if l.key(item) == key {
			return i
		}
	}
	return -1
}
