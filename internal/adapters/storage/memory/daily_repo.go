package memory

import (
	"context"
	"time"

	"xiuh/internal/domain/daily"
)

type dailyRepo struct {
	s *Store
}

func NewDailyRepo(s *Store) daily.Repository {
	return &dailyRepo{s: s}
}

func (r *dailyRepo) GetLastClaim(ctx context.Context, userID string) (time.Time, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.profiles[userID]
	if !ok || row.lastDaily == nil {
		return time.Time{}, false, nil
	}
	return *row.lastDaily, true, nil
}

func (r *dailyRepo) RecordClaim(ctx context.Context, userID string, at, notAfter time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.s.profiles[userID]
	if row.lastDaily != nil && row.lastDaily.After(notAfter) {
		return daily.ErrOnCooldown
	}
	t := at
	row.lastDaily = &t
	r.s.profiles[userID] = row
	return nil
}

func (r *dailyRepo) RestoreClaim(ctx context.Context, userID string, at time.Time, prev *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.profiles[userID]
	if !ok || row.lastDaily == nil || !row.lastDaily.Equal(at) {
		return nil
	}
	if prev == nil {
		row.lastDaily = nil
	} else {
		t := *prev
		row.lastDaily = &t
	}
	r.s.profiles[userID] = row
	return nil
}
