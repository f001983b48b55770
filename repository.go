package stockfolio

import (
	"fmt"
	"iter"
)

// Repository is an in-memory portfolio store. Identifiers are dense,
// 0-indexed, assigned in insertion order and never reused or reassigned.
//
// It is a plain value handed around explicitly; there is no package-level
// instance.
type Repository struct {
	portfolios []*Portfolio
}

// NewRepository returns an empty repository.
func NewRepository() *Repository { return &Repository{} }

// Add stores a portfolio and returns its identifier. A portfolio
// value-equal to one already stored is rejected with ErrDuplicatePortfolio.
func (r *Repository) Add(p *Portfolio) (int, error) {
	for id, existing := range r.portfolios {
		if existing.Equal(p) {
			return 0, fmt.Errorf("%q (id %d): %w", p.Name(), id, ErrDuplicatePortfolio)
		}
	}
	r.portfolios = append(r.portfolios, p)
	return len(r.portfolios) - 1, nil
}

// Get returns the portfolio with the given identifier.
func (r *Repository) Get(id int) (*Portfolio, bool) {
	if id < 0 || id >= len(r.portfolios) {
		return nil, false
	}
	return r.portfolios[id], true
}

// ByName returns the first portfolio with the given name.
func (r *Repository) ByName(name string) (*Portfolio, bool) {
	for _, p := range r.portfolios {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Len returns the number of stored portfolios.
func (r *Repository) Len() int { return len(r.portfolios) }

// All returns an iterator over (id, portfolio) pairs in insertion order.
func (r *Repository) All() iter.Seq2[int, *Portfolio] {
	return func(yield func(int, *Portfolio) bool) {
		for id, p := range r.portfolios {
			if !yield(id, p) {
				return
			}
		}
	}
}
