package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"xiuh/internal/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	docs map[Kind]map[string]int

	// Hooks para simular fallos del store.
	incrementErr error
	deleteErr    error
	deletes      int
}

func newTestRepo() *testRepo {
	return &testRepo{docs: map[Kind]map[string]int{Bag: {}, Storage: {}}}
}

func (r *testRepo) Get(ctx context.Context, userID string, kind Kind) (map[string]int, error) {
	out := map[string]int{}
	for k, v := range r.docs[kind] {
		out[k] = v
	}
	return out, nil
}

func (r *testRepo) Increment(ctx context.Context, userID string, kind Kind, itemID string, qty, limit int) error {
	if r.incrementErr != nil {
		return r.incrementErr
	}
	r.docs[kind][itemID] += qty
	return nil
}

func (r *testRepo) Decrement(ctx context.Context, userID string, kind Kind, itemID string, qty int) (int, error) {
	if r.docs[kind][itemID] < qty {
		return 0, ErrInsufficientQuantity
	}
	r.docs[kind][itemID] -= qty
	return r.docs[kind][itemID], nil
}

func (r *testRepo) Move(ctx context.Context, userID, itemID string, qty int, from, to Kind, limit int) (int, error) {
	left, err := r.Decrement(ctx, userID, from, itemID, qty)
	if err != nil {
		return 0, err
	}
	r.docs[to][itemID] += qty
	return left, nil
}

func (r *testRepo) DeleteIfEmpty(ctx context.Context, userID string, kind Kind, itemID string) error {
	r.deletes++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if r.docs[kind][itemID] <= 0 {
		delete(r.docs[kind], itemID)
	}
	return nil
}

// fill mete n tipos ficticios directo en el documento.
func (r *testRepo) fill(kind Kind, n int) {
	for i := 0; i < n; i++ {
		r.docs[kind][fmt.Sprintf("FILLER_%02d", i)] = 1
	}
}

func TestAdd_StacksAndCreates(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "u1", catalog.OmelettePlain, 2, Bag))
	require.NoError(t, svc.Add(ctx, "u1", catalog.OmelettePlain, 1, Bag))
	require.NoError(t, svc.Add(ctx, "u1", catalog.SmoothStone, 1, Storage))

	assert.Equal(t, 3, repo.docs[Bag][catalog.OmelettePlain])
	assert.Equal(t, 1, repo.docs[Storage][catalog.SmoothStone])
}

func TestAdd_Validation(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Add(ctx, "", catalog.OmelettePlain, 1, Bag), ErrInvalidInput)
	assert.ErrorIs(t, svc.Add(ctx, "u1", catalog.OmelettePlain, 0, Bag), ErrInvalidInput)
	assert.ErrorIs(t, svc.Add(ctx, "u1", catalog.OmelettePlain, 1, Kind("pocket")), ErrInvalidInput)
	assert.ErrorIs(t, svc.Add(ctx, "u1", "GOLDEN_EGG", 1, Bag), ErrUnknownItem)
}

func TestAdd_BagCapacityCountsDistinctTypes(t *testing.T) {
	repo := newTestRepo()
	repo.fill(Bag, MaxBagCapacity)
	svc := NewService(repo, nil)
	ctx := context.Background()

	err := svc.Add(ctx, "u1", catalog.OmelettePlain, 1, Bag)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, MaxBagCapacity, ce.Current)
	assert.Equal(t, MaxBagCapacity, ce.Limit)
	assert.NotContains(t, repo.docs[Bag], catalog.OmelettePlain)

	// Un tipo que ya está siempre entra, aunque la bolsa esté llena.
	delete(repo.docs[Bag], "FILLER_00")
	repo.docs[Bag][catalog.OmelettePlain] = 1
	require.NoError(t, svc.Add(ctx, "u1", catalog.OmelettePlain, 5, Bag))
	assert.Equal(t, 6, repo.docs[Bag][catalog.OmelettePlain])
	assert.ErrorIs(t, svc.Add(ctx, "u1", catalog.OmeletteMushroom, 1, Bag), ErrCapacityExceeded)

	// Storage no tiene límite.
	repo.fill(Storage, 200)
	assert.NoError(t, svc.Add(ctx, "u1", catalog.OmelettePepper, 1, Storage))
}

func TestAdd_ZeroQuantityKeysDoNotCount(t *testing.T) {
	repo := newTestRepo()
	repo.fill(Bag, MaxBagCapacity-1)
	repo.docs[Bag]["GHOST"] = 0
	svc := NewService(repo, nil)

	n, err := svc.ItemTypeCount(context.Background(), "u1", Bag)
	require.NoError(t, err)
	assert.Equal(t, MaxBagCapacity-1, n)

	ok, err := svc.CanAdd(context.Background(), "u1", catalog.OmelettePlain, Bag)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdd_StoreRejectsAfterPrecheck(t *testing.T) {
	repo := newTestRepo()
	repo.incrementErr = ErrCapacityExceeded
	svc := NewService(repo, nil)

	err := svc.Add(context.Background(), "u1", catalog.OmelettePlain, 1, Bag)
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, MaxBagCapacity, ce.Limit)
}

func TestRemove(t *testing.T) {
	repo := newTestRepo()
	repo.docs[Bag][catalog.OmelettePlain] = 3
	svc := NewService(repo, nil)
	ctx := context.Background()

	left, err := svc.Remove(ctx, "u1", catalog.OmelettePlain, 2, Bag)
	require.NoError(t, err)
	assert.Equal(t, 1, left)
	assert.Equal(t, 0, repo.deletes)

	_, err = svc.Remove(ctx, "u1", catalog.OmelettePlain, 2, Bag)
	var qe *QuantityError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 2, qe.Requested)
	assert.Equal(t, Bag, qe.Kind)

	// Sacar el stock exacto limpia la key.
	left, err = svc.Remove(ctx, "u1", catalog.OmelettePlain, 1, Bag)
	require.NoError(t, err)
	assert.Equal(t, 0, left)
	assert.NotContains(t, repo.docs[Bag], catalog.OmelettePlain)
}

func TestRemove_CleanupFailureIsNotPropagated(t *testing.T) {
	repo := newTestRepo()
	repo.docs[Bag][catalog.OmelettePlain] = 1
	repo.deleteErr = errors.New("throttled")
	svc := NewService(repo, nil)

	left, err := svc.Remove(context.Background(), "u1", catalog.OmelettePlain, 1, Bag)
	require.NoError(t, err)
	assert.Equal(t, 0, left)
	assert.Equal(t, 1, repo.deletes)

	// La key en cero equivale a ausente.
	has, err := svc.HasItem(context.Background(), "u1", catalog.OmelettePlain, 1, Bag)
	require.NoError(t, err)
	assert.False(t, has)
	entries, err := svc.Compartment(context.Background(), "u1", Bag)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMove_RoundTripLeavesNoZeroKeys(t *testing.T) {
	repo := newTestRepo()
	repo.docs[Storage][catalog.OmeletteMushroom] = 4
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.Move(ctx, "u1", catalog.OmeletteMushroom, 4, Storage, Bag))
	assert.Equal(t, 4, repo.docs[Bag][catalog.OmeletteMushroom])
	assert.NotContains(t, repo.docs[Storage], catalog.OmeletteMushroom)

	require.NoError(t, svc.Move(ctx, "u1", catalog.OmeletteMushroom, 4, Bag, Storage))
	assert.Equal(t, 4, repo.docs[Storage][catalog.OmeletteMushroom])
	assert.Empty(t, repo.docs[Bag])
}

func TestMove_Errors(t *testing.T) {
	repo := newTestRepo()
	repo.docs[Storage][catalog.SmoothStone] = 1
	svc := NewService(repo, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Move(ctx, "u1", catalog.SmoothStone, 1, Bag, Bag), ErrSameCompartment)
	assert.ErrorIs(t, svc.Move(ctx, "u1", catalog.SmoothStone, 0, Storage, Bag), ErrInvalidInput)
	assert.ErrorIs(t, svc.Move(ctx, "u1", catalog.SmoothStone, 2, Storage, Bag), ErrInsufficientQuantity)

	repo.fill(Bag, MaxBagCapacity)
	err := svc.Move(ctx, "u1", catalog.SmoothStone, 1, Storage, Bag)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 1, repo.docs[Storage][catalog.SmoothStone])
}

func TestPage(t *testing.T) {
	repo := newTestRepo()
	repo.fill(Storage, 45)
	svc := NewService(repo, nil)
	ctx := context.Background()

	p, err := svc.Page(ctx, "u1", Storage, 1)
	require.NoError(t, err)
	assert.Len(t, p.Items, StoragePageSize)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasMore)
	assert.Equal(t, "FILLER_00", p.Items[0].ItemID)
	assert.False(t, p.Items[0].Known)

	p, err = svc.Page(ctx, "u1", Storage, 3)
	require.NoError(t, err)
	assert.Len(t, p.Items, 5)
	assert.False(t, p.HasMore)
	assert.Equal(t, "FILLER_40", p.Items[0].ItemID)

	p, err = svc.Page(ctx, "u1", Storage, 9)
	require.NoError(t, err)
	assert.Empty(t, p.Items)

	p, err = svc.Page(ctx, "u1", Storage, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentPage)

	p, err = svc.Page(ctx, "u1", Storage, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, math.MaxInt, p.CurrentPage)
	assert.False(t, p.HasMore)
}

func TestPage_EmptyCompartment(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	p, err := svc.Page(context.Background(), "u1", Storage, 1)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.Zero(t, p.TotalPages)
	assert.False(t, p.HasMore)
}

func TestCompartment_HydratesFromCatalog(t *testing.T) {
	repo := newTestRepo()
	repo.docs[Bag][catalog.OmelettePlain] = 2
	svc := NewService(repo, nil)

	entries, err := svc.Compartment(context.Background(), "u1", Bag)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Known)
	assert.True(t, entries[0].Item.Edible())
	assert.Equal(t, 2, entries[0].Quantity)
}
