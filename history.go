package stockfolio

import (
	"iter"
	"slices"
)

// History is a raw association of dates and values, sorted by date.
type History[T any] struct {
	dates  []Date
	values []T
}

// Len returns the number of entries.
func (h *History[T]) Len() int { return len(h.dates) }

// Append adds or replaces the value on a given day, keeping the history
// sorted.
func (h *History[T]) Append(on Date, value T) {
	i, found := slices.BinarySearchFunc(h.dates, on, compareDate)
	if found {
		h.values[i] = value
		return
	}
	h.dates = slices.Insert(h.dates, i, on)
	h.values = slices.Insert(h.values, i, value)
}

// Get returns the value recorded exactly on that day.
func (h *History[T]) Get(on Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.dates, on, compareDate)
	if !found {
		var zero T
		return zero, false
	}
	return h.values[i], true
}

// ValueAsOf returns the latest value recorded on or before the given day.
func (h *History[T]) ValueAsOf(on Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.dates, on, compareDate)
	if found {
		return h.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// Values returns an iterator over (date, value) pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.dates {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

func compareDate(a, b Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
