package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"xiuh/internal/domain/pets"
)

type petRepo struct {
	s *Store
}

func NewPetRepo(s *Store) pets.Repository {
	return &petRepo{s: s}
}

func (r *petRepo) GetProfile(ctx context.Context, userID string) (pets.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.profiles[userID]
	if !ok {
		return pets.Profile{}, pets.ErrNotFound
	}
	p := pets.Profile{UserID: userID, ActivePetID: row.activePetID}
	if row.lastDaily != nil {
		t := *row.lastDaily
		p.LastDailyRewardAt = &t
	}
	return p, nil
}

func (r *petRepo) GetPet(ctx context.Context, userID, petID string) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pets[petKey{userID, petID}]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) CreateWithProfile(ctx context.Context, p pets.Pet) error {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.UserID) == "" {
		return errors.New("pet id and user id required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.s.profiles[p.UserID]
	if row.activePetID != "" {
		return pets.ErrAlreadyHasPet
	}
	k := petKey{p.UserID, p.ID}
	if _, exists := r.s.pets[k]; exists {
		return pets.ErrAlreadyHasPet
	}

	row.activePetID = p.ID
	r.s.profiles[p.UserID] = row
	r.s.pets[k] = p
	return nil
}

func (r *petRepo) UpdateName(ctx context.Context, userID, petID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := petKey{userID, petID}
	p, ok := r.s.pets[k]
	if !ok {
		return pets.ErrNotFound
	}
	p.Name = name
	r.s.pets[k] = p
	return nil
}

func (r *petRepo) UpdateHunger(ctx context.Context, userID, petID string, value float64, lastFedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := petKey{userID, petID}
	p, ok := r.s.pets[k]
	if !ok {
		return pets.ErrNotFound
	}
	p.Hunger = value
	p.LastFedAt = lastFedAt
	r.s.pets[k] = p
	return nil
}

// CountPets es para tests: cuántas mascotas tiene un usuario.
func (s *Store) CountPets(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.pets {
		if k.userID == userID {
			n++
		}
	}
	return n
}
