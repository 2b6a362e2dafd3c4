package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_LookupReturnsExplicitNotFound(t *testing.T) {
	d, ok := Item(OmelettePlain)
	require.True(t, ok)
	assert.True(t, d.Edible())
	assert.Equal(t, 20.0, d.HungerRestoration)

	_, ok = Item("NOT_AN_ITEM")
	assert.False(t, ok)
}

func TestItem_NonEdible(t *testing.T) {
	d, ok := Item(SmoothStone)
	require.True(t, ok)
	assert.False(t, d.Edible())
}

func TestSpecies_Lookup(t *testing.T) {
	s, ok := Species("seedling")
	require.True(t, ok)
	assert.Equal(t, CategoryPlant, s.Category)

	_, ok = Species("dragon")
	assert.False(t, ok)
}

func TestListings_AreSortedByID(t *testing.T) {
	items := Items()
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].ID, items[i].ID)
	}
	all := AllSpecies()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestRandomReward_PicksFromPool(t *testing.T) {
	pool := RewardPool()
	for i := range pool {
		d := RandomReward(func(n int) int {
			require.Equal(t, len(pool), n)
			return i
		})
		assert.Equal(t, pool[i], d.ID)
		assert.True(t, d.Edible())
	}
}

func TestValidate_StaticData(t *testing.T) {
	require.NoError(t, validateItems())
	require.NoError(t, validateSpecies())
}
