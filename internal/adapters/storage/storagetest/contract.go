// Package storagetest tiene la suite de contrato que corre contra cada backend.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"xiuh/internal/domain/daily"
	"xiuh/internal/domain/inventory"
	"xiuh/internal/domain/pets"
	"xiuh/internal/domain/timezones"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Repos struct {
	Pets      pets.Repository
	Inventory inventory.Repository
	Daily     daily.Repository
	Timezones timezones.Repository
}

// Factory debe devolver repos sobre un store vacío.
type Factory func(t *testing.T) Repos

var t0 = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func Run(t *testing.T, newRepos Factory) {
	t.Run("pets", func(t *testing.T) { runPets(t, newRepos) })
	t.Run("inventory", func(t *testing.T) { runInventory(t, newRepos) })
	t.Run("daily", func(t *testing.T) { runDaily(t, newRepos) })
	t.Run("timezones", func(t *testing.T) { runTimezones(t, newRepos) })
}

func newPet(userID, petID string) pets.Pet {
	return pets.Pet{
		ID:        petID,
		UserID:    userID,
		SpeciesID: "seedling",
		Name:      "Sprout",
		Hunger:    100,
		LastFedAt: t0,
		AdoptedAt: t0,
	}
}

func runPets(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("profile not found", func(t *testing.T) {
		r := newRepos(t)
		_, err := r.Pets.GetProfile(ctx, "u1")
		assert.ErrorIs(t, err, pets.ErrNotFound)
		_, err = r.Pets.GetPet(ctx, "u1", "p1")
		assert.ErrorIs(t, err, pets.ErrNotFound)
	})

	t.Run("create sets active pet", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Pets.CreateWithProfile(ctx, newPet("u1", "p1")))

		prof, err := r.Pets.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "p1", prof.ActivePetID)

		p, err := r.Pets.GetPet(ctx, "u1", "p1")
		require.NoError(t, err)
		assert.Equal(t, "Sprout", p.Name)
		assert.Equal(t, "seedling", p.SpeciesID)
		assert.Equal(t, 100.0, p.Hunger)
		assert.True(t, t0.Equal(p.LastFedAt))
		assert.True(t, t0.Equal(p.AdoptedAt))

		// Scoped por usuario.
		_, err = r.Pets.GetPet(ctx, "u2", "p1")
		assert.ErrorIs(t, err, pets.ErrNotFound)
	})

	t.Run("second adoption is rejected atomically", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Pets.CreateWithProfile(ctx, newPet("u1", "p1")))

		err := r.Pets.CreateWithProfile(ctx, newPet("u1", "p2"))
		require.ErrorIs(t, err, pets.ErrAlreadyHasPet)

		_, err = r.Pets.GetPet(ctx, "u1", "p2")
		assert.ErrorIs(t, err, pets.ErrNotFound)
		prof, err := r.Pets.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "p1", prof.ActivePetID)
	})

	t.Run("concurrent adoptions: exactly one wins", func(t *testing.T) {
		r := newRepos(t)

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = r.Pets.CreateWithProfile(ctx, newPet("u1", fmt.Sprintf("p%d", i)))
			}(i)
		}
		wg.Wait()

		ok := 0
		winner := -1
		for i, err := range errs {
			if err == nil {
				ok++
				winner = i
				continue
			}
			assert.ErrorIs(t, err, pets.ErrAlreadyHasPet)
		}
		require.Equal(t, 1, ok)

		prof, err := r.Pets.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("p%d", winner), prof.ActivePetID)
		for i := 0; i < n; i++ {
			_, err := r.Pets.GetPet(ctx, "u1", fmt.Sprintf("p%d", i))
			if i == winner {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, pets.ErrNotFound)
			}
		}
	})

	t.Run("adoption keeps daily stamp", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Daily.RecordClaim(ctx, "u1", t0, t0.Add(-time.Hour)))
		require.NoError(t, r.Pets.CreateWithProfile(ctx, newPet("u1", "p1")))

		last, ok, err := r.Daily.GetLastClaim(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, t0.Equal(last))
	})

	t.Run("updates", func(t *testing.T) {
		r := newRepos(t)
		assert.ErrorIs(t, r.Pets.UpdateName(ctx, "u1", "p1", "Nope"), pets.ErrNotFound)
		assert.ErrorIs(t, r.Pets.UpdateHunger(ctx, "u1", "p1", 50, t0), pets.ErrNotFound)

		require.NoError(t, r.Pets.CreateWithProfile(ctx, newPet("u1", "p1")))
		require.NoError(t, r.Pets.UpdateName(ctx, "u1", "p1", "Bud"))
		fed := t0.Add(65 * time.Hour)
		require.NoError(t, r.Pets.UpdateHunger(ctx, "u1", "p1", 55, fed))

		p, err := r.Pets.GetPet(ctx, "u1", "p1")
		require.NoError(t, err)
		assert.Equal(t, "Bud", p.Name)
		assert.Equal(t, 55.0, p.Hunger)
		assert.True(t, fed.Equal(p.LastFedAt))
		assert.True(t, t0.Equal(p.AdoptedAt))
	})
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func runInventory(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	bag, storage := inventory.Bag, inventory.Storage

	t.Run("empty compartment", func(t *testing.T) {
		r := newRepos(t)
		m, err := r.Inventory.Get(ctx, "u1", bag)
		require.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("increment creates and stacks", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "A", 2, 0))
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "A", 3, 0))
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "B", 1, 0))

		m, err := r.Inventory.Get(ctx, "u1", bag)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"A": 5, "B": 1}, m)

		other, err := r.Inventory.Get(ctx, "u1", storage)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("increment enforces distinct type limit", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "A", 1, 2))
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "B", 1, 2))

		err := r.Inventory.Increment(ctx, "u1", bag, "C", 1, 2)
		require.ErrorIs(t, err, inventory.ErrCapacityExceeded)

		// Más de un tipo existente siempre entra.
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "A", 4, 2))

		m, err := r.Inventory.Get(ctx, "u1", bag)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"A": 5, "B": 1}, m)
	})

	t.Run("decrement is conditional", func(t *testing.T) {
		r := newRepos(t)
		_, err := r.Inventory.Decrement(ctx, "u1", bag, "A", 1)
		require.ErrorIs(t, err, inventory.ErrInsufficientQuantity)

		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "A", 3, 0))
		_, err = r.Inventory.Decrement(ctx, "u1", bag, "A", 4)
		require.ErrorIs(t, err, inventory.ErrInsufficientQuantity)

		left, err := r.Inventory.Decrement(ctx, "u1", bag, "A", 2)
		require.NoError(t, err)
		assert.Equal(t, 1, left)

		left, err = r.Inventory.Decrement(ctx, "u1", bag, "A", 1)
		require.NoError(t, err)
		assert.Equal(t, 0, left)
	})

	t.Run("delete if empty", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Inventory.DeleteIfEmpty(ctx, "u1", bag, "A"))

		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "A", 1, 0))
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "B", 1, 0))
		_, err := r.Inventory.Decrement(ctx, "u1", bag, "A", 1)
		require.NoError(t, err)

		require.NoError(t, r.Inventory.DeleteIfEmpty(ctx, "u1", bag, "A"))
		require.NoError(t, r.Inventory.DeleteIfEmpty(ctx, "u1", bag, "B"))

		m, err := r.Inventory.Get(ctx, "u1", bag)
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, keys(m))
	})

	t.Run("move is atomic", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Inventory.Increment(ctx, "u1", storage, "A", 5, 0))

		left, err := r.Inventory.Move(ctx, "u1", "A", 2, storage, bag, inventory.MaxBagCapacity)
		require.NoError(t, err)
		assert.Equal(t, 3, left)

		_, err = r.Inventory.Move(ctx, "u1", "A", 9, storage, bag, inventory.MaxBagCapacity)
		require.ErrorIs(t, err, inventory.ErrInsufficientQuantity)

		s, err := r.Inventory.Get(ctx, "u1", storage)
		require.NoError(t, err)
		b, err := r.Inventory.Get(ctx, "u1", bag)
		require.NoError(t, err)
		assert.Equal(t, 3, s["A"])
		assert.Equal(t, 2, b["A"])
	})

	t.Run("move rolls back when destination is full", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "A", 1, 1))
		require.NoError(t, r.Inventory.Increment(ctx, "u1", storage, "B", 2, 0))

		_, err := r.Inventory.Move(ctx, "u1", "B", 1, storage, bag, 1)
		require.ErrorIs(t, err, inventory.ErrCapacityExceeded)

		s, err := r.Inventory.Get(ctx, "u1", storage)
		require.NoError(t, err)
		assert.Equal(t, 2, s["B"], "source must be untouched")
		b, err := r.Inventory.Get(ctx, "u1", bag)
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, keys(b))
	})

	t.Run("concurrent decrements never go negative", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Inventory.Increment(ctx, "u1", bag, "A", 5, 0))

		const n = 10
		var wg sync.WaitGroup
		var mu sync.Mutex
		ok := 0
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := r.Inventory.Decrement(ctx, "u1", bag, "A", 1); err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 5, ok)
		m, err := r.Inventory.Get(ctx, "u1", bag)
		require.NoError(t, err)
		assert.Equal(t, 0, m["A"])
	})
}

func runDaily(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("no claim yet", func(t *testing.T) {
		r := newRepos(t)
		_, ok, err := r.Daily.GetLastClaim(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("record is conditional on previous stamp", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Daily.RecordClaim(ctx, "u1", t0, t0.Add(-20*time.Hour)))

		later := t0.Add(19 * time.Hour)
		err := r.Daily.RecordClaim(ctx, "u1", later, later.Add(-20*time.Hour))
		require.ErrorIs(t, err, daily.ErrOnCooldown)

		later = t0.Add(20 * time.Hour)
		require.NoError(t, r.Daily.RecordClaim(ctx, "u1", later, later.Add(-20*time.Hour)))

		last, ok, err := r.Daily.GetLastClaim(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, later.Equal(last))
	})

	t.Run("restore", func(t *testing.T) {
		r := newRepos(t)
		at := t0.Add(21 * time.Hour)
		require.NoError(t, r.Daily.RecordClaim(ctx, "u1", t0, t0))
		require.NoError(t, r.Daily.RecordClaim(ctx, "u1", at, at.Add(-20*time.Hour)))

		// Sello distinto: no-op.
		require.NoError(t, r.Daily.RestoreClaim(ctx, "u1", at.Add(time.Second), nil))
		last, ok, err := r.Daily.GetLastClaim(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, at.Equal(last))

		prev := t0
		require.NoError(t, r.Daily.RestoreClaim(ctx, "u1", at, &prev))
		last, ok, err = r.Daily.GetLastClaim(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, t0.Equal(last))

		require.NoError(t, r.Daily.RestoreClaim(ctx, "u1", t0, nil))
		_, ok, err = r.Daily.GetLastClaim(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func runTimezones(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("save get many", func(t *testing.T) {
		r := newRepos(t)
		_, err := r.Timezones.Get(ctx, "u1")
		require.ErrorIs(t, err, timezones.ErrNotFound)

		require.NoError(t, r.Timezones.Save(ctx, timezones.UserTimezone{
			UserID: "u1", Timezone: "America/Mexico_City", DisplayLocation: "CDMX", UpdatedAt: t0,
		}))
		require.NoError(t, r.Timezones.Save(ctx, timezones.UserTimezone{
			UserID: "u2", Timezone: "Europe/Madrid", DisplayLocation: "Madrid", UpdatedAt: t0,
		}))
		// Pisar.
		require.NoError(t, r.Timezones.Save(ctx, timezones.UserTimezone{
			UserID: "u1", Timezone: "America/Monterrey", DisplayLocation: "MTY", UpdatedAt: t0.Add(time.Hour),
		}))

		tz, err := r.Timezones.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "America/Monterrey", tz.Timezone)
		assert.Equal(t, "MTY", tz.DisplayLocation)

		many, err := r.Timezones.GetMany(ctx, []string{"u1", "u2", "u3"})
		require.NoError(t, err)
		sort.Slice(many, func(i, j int) bool { return many[i].UserID < many[j].UserID })
		require.Len(t, many, 2)
		assert.Equal(t, "u1", many[0].UserID)
		assert.Equal(t, "Europe/Madrid", many[1].Timezone)
	})
}
