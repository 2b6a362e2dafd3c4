package daily

import (
	"context"
	"errors"
	"testing"
	"time"

	"xiuh/internal/domain/catalog"
	"xiuh/internal/domain/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	stamps map[string]time.Time
}

func newTestRepo() *testRepo {
	return &testRepo{stamps: map[string]time.Time{}}
}

func (r *testRepo) GetLastClaim(ctx context.Context, userID string) (time.Time, bool, error) {
	t, ok := r.stamps[userID]
	return t, ok, nil
}

func (r *testRepo) RecordClaim(ctx context.Context, userID string, at, notAfter time.Time) error {
	if prev, ok := r.stamps[userID]; ok && prev.After(notAfter) {
		return ErrOnCooldown
	}
	r.stamps[userID] = at
	return nil
}

func (r *testRepo) RestoreClaim(ctx context.Context, userID string, at time.Time, prev *time.Time) error {
	cur, ok := r.stamps[userID]
	if !ok || !cur.Equal(at) {
		return nil
	}
	if prev == nil {
		delete(r.stamps, userID)
		return nil
	}
	r.stamps[userID] = *prev
	return nil
}

type added struct {
	userID string
	itemID string
	qty    int
	kind   inventory.Kind
}

type testInventory struct {
	err   error
	calls []added
}

func (i *testInventory) Add(ctx context.Context, userID, itemID string, qty int, kind inventory.Kind) error {
	if i.err != nil {
		return i.err
	}
	i.calls = append(i.calls, added{userID, itemID, qty, kind})
	return nil
}

var t0 = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func newTestService(repo Repository, inv Inventory) (*Service, *time.Time) {
	now := t0
	svc := NewService(repo, inv, nil)
	svc.now = func() time.Time { return now }
	svc.intn = func(int) int { return 0 }
	return svc, &now
}

func TestClaim_FirstClaimAddsRewardToBag(t *testing.T) {
	repo := newTestRepo()
	inv := &testInventory{}
	svc, _ := newTestService(repo, inv)

	item, err := svc.Claim(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, catalog.RewardPool()[0], item.ID)
	require.Len(t, inv.calls, 1)
	assert.Equal(t, added{"u1", item.ID, 1, inventory.Bag}, inv.calls[0])
	assert.Equal(t, t0, repo.stamps["u1"])
}

func TestClaim_CooldownWindow(t *testing.T) {
	repo := newTestRepo()
	inv := &testInventory{}
	svc, now := newTestService(repo, inv)
	ctx := context.Background()

	_, err := svc.Claim(ctx, "u1")
	require.NoError(t, err)

	*now = t0.Add(19 * time.Hour)
	_, err = svc.Claim(ctx, "u1")
	require.ErrorIs(t, err, ErrOnCooldown)
	var ce *CooldownError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, time.Hour, ce.Remaining)

	left, err := svc.Remaining(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, left)

	*now = t0.Add(20*time.Hour + time.Second)
	_, err = svc.Claim(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, inv.calls, 2)
	assert.Equal(t, *now, repo.stamps["u1"])

	left, err = svc.Remaining(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, CooldownDuration, left)
}

func TestClaim_ExactlyAtCooldownIsAllowed(t *testing.T) {
	repo := newTestRepo()
	svc, now := newTestService(repo, &testInventory{})
	ctx := context.Background()

	_, err := svc.Claim(ctx, "u1")
	require.NoError(t, err)

	*now = t0.Add(CooldownDuration)
	_, err = svc.Claim(ctx, "u1")
	assert.NoError(t, err)
}

// Simula un reclamo concurrente que ganó entre la lectura y la escritura.
type racingRepo struct {
	*testRepo
	winner time.Time
}

func (r *racingRepo) RecordClaim(ctx context.Context, userID string, at, notAfter time.Time) error {
	r.stamps[userID] = r.winner
	return r.testRepo.RecordClaim(ctx, userID, at, notAfter)
}

func TestClaim_LosesRaceReportsCooldown(t *testing.T) {
	repo := &racingRepo{testRepo: newTestRepo(), winner: t0.Add(-time.Minute)}
	inv := &testInventory{}
	svc, _ := newTestService(repo, inv)

	_, err := svc.Claim(context.Background(), "u1")
	var ce *CooldownError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CooldownDuration-time.Minute, ce.Remaining)
	assert.Empty(t, inv.calls)
}

func TestClaim_InventoryFailureRestoresStamp(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim", func(t *testing.T) {
		repo := newTestRepo()
		inv := &testInventory{err: &inventory.CapacityError{Current: 50, Limit: 50}}
		svc, _ := newTestService(repo, inv)

		_, err := svc.Claim(ctx, "u1")
		require.ErrorIs(t, err, inventory.ErrCapacityExceeded)

		_, ok := repo.stamps["u1"]
		assert.False(t, ok, "stamp must be rolled back")
	})

	t.Run("with previous claim", func(t *testing.T) {
		repo := newTestRepo()
		prev := t0.Add(-48 * time.Hour)
		repo.stamps["u1"] = prev
		inv := &testInventory{err: errors.New("boom")}
		svc, _ := newTestService(repo, inv)

		_, err := svc.Claim(ctx, "u1")
		require.Error(t, err)
		assert.Equal(t, prev, repo.stamps["u1"])

		// Sin el sello nuevo, el usuario puede reintentar.
		inv.err = nil
		_, err = svc.Claim(ctx, "u1")
		assert.NoError(t, err)
	})
}

func TestClaim_Validation(t *testing.T) {
	svc, _ := newTestService(newTestRepo(), &testInventory{})

	_, err := svc.Claim(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Remaining(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemaining_NeverClaimed(t *testing.T) {
	svc, _ := newTestService(newTestRepo(), &testInventory{})

	left, err := svc.Remaining(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, left)
}
