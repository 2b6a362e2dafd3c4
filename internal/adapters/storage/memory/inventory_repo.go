package memory

import (
	"context"

	"xiuh/internal/domain/inventory"
)

type inventoryRepo struct {
	s *Store
}

func NewInventoryRepo(s *Store) inventory.Repository {
	return &inventoryRepo{s: s}
}

func (r *inventoryRepo) Get(ctx context.Context, userID string, kind inventory.Kind) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	src := r.s.compartments[compartmentKey{userID, kind}]
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

func (r *inventoryRepo) Increment(ctx context.Context, userID string, kind inventory.Kind, itemID string, qty, limit int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.fits(userID, kind, itemID, limit) {
		return inventory.ErrCapacityExceeded
	}
	r.s.add(userID, kind, itemID, qty)
	return nil
}

func (r *inventoryRepo) Decrement(ctx context.Context, userID string, kind inventory.Kind, itemID string, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.subtract(userID, kind, itemID, qty)
}

func (r *inventoryRepo) Move(ctx context.Context, userID, itemID string, qty int, from, to inventory.Kind, limit int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Se chequean ambas condiciones antes de aplicar nada.
	c := r.s.compartments[compartmentKey{userID, from}]
	if c == nil || c[itemID] < qty {
		return 0, inventory.ErrInsufficientQuantity
	}
	if !r.s.fits(userID, to, itemID, limit) {
		return 0, inventory.ErrCapacityExceeded
	}

	remaining, err := r.s.subtract(userID, from, itemID, qty)
	if err != nil {
		return 0, err
	}
	r.s.add(userID, to, itemID, qty)
	return remaining, nil
}

func (r *inventoryRepo) DeleteIfEmpty(ctx context.Context, userID string, kind inventory.Kind, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := r.s.compartments[compartmentKey{userID, kind}]
	if q, ok := c[itemID]; ok && q <= 0 {
		delete(c, itemID)
	}
	return nil
}

// Helpers: asumen el lock tomado.

func (s *Store) fits(userID string, kind inventory.Kind, itemID string, limit int) bool {
	if limit <= 0 {
		return true
	}
	c := s.compartments[compartmentKey{userID, kind}]
	if c[itemID] > 0 {
		return true
	}
	n := 0
	for _, q := range c {
		if q > 0 {
			n++
		}
	}
	return n < limit
}

func (s *Store) add(userID string, kind inventory.Kind, itemID string, qty int) {
	k := compartmentKey{userID, kind}
	c := s.compartments[k]
	if c == nil {
		c = make(map[string]int)
		s.compartments[k] = c
	}
	c[itemID] += qty
}

func (s *Store) subtract(userID string, kind inventory.Kind, itemID string, qty int) (int, error) {
	c := s.compartments[compartmentKey{userID, kind}]
	if c == nil || c[itemID] < qty {
		return 0, inventory.ErrInsufficientQuantity
	}
	c[itemID] -= qty
	return c[itemID], nil
}

// Keys es para tests: keys presentes (incluidas en cero) de un compartimento.
func (s *Store) Keys(userID string, kind inventory.Kind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0)
	for k := range s.compartments[compartmentKey{userID, kind}] {
		out = append(out, k)
	}
	return out
}
