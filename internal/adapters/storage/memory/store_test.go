package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"xiuh/internal/adapters/storage/storagetest"
	"xiuh/internal/domain/inventory"
	"xiuh/internal/domain/pets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Repos {
		s := NewStore()
		return storagetest.Repos{
			Pets:      NewPetRepo(s),
			Inventory: NewInventoryRepo(s),
			Daily:     NewDailyRepo(s),
			Timezones: NewTimezoneRepo(s),
		}
	})
}

func TestMemoryStore_ConcurrentAdoptionLeavesOnePet(t *testing.T) {
	s := NewStore()
	repo := NewPetRepo(s)
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.CreateWithProfile(context.Background(), pets.Pet{
				ID: fmt.Sprintf("p%d", i), UserID: "u1", SpeciesID: "cat", Name: "Mishi",
				Hunger: 100, LastFedAt: now, AdoptedAt: now,
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.CountPets("u1"))
}

func TestMemoryStore_ZeroKeysUntilCleanup(t *testing.T) {
	s := NewStore()
	repo := NewInventoryRepo(s)
	ctx := context.Background()

	require.NoError(t, repo.Increment(ctx, "u1", inventory.Bag, "SMOOTH_STONE", 1, 50))
	left, err := repo.Decrement(ctx, "u1", inventory.Bag, "SMOOTH_STONE", 1)
	require.NoError(t, err)
	assert.Zero(t, left)
	assert.Equal(t, []string{"SMOOTH_STONE"}, s.Keys("u1", inventory.Bag))

	require.NoError(t, repo.DeleteIfEmpty(ctx, "u1", inventory.Bag, "SMOOTH_STONE"))
	assert.Empty(t, s.Keys("u1", inventory.Bag))
}
