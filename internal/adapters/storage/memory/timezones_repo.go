package memory

import (
	"context"
	"errors"
	"strings"

	"xiuh/internal/domain/timezones"
)

type timezoneRepo struct {
	s *Store
}

func NewTimezoneRepo(s *Store) timezones.Repository {
	return &timezoneRepo{s: s}
}

func (r *timezoneRepo) Save(ctx context.Context, tz timezones.UserTimezone) error {
	if strings.TrimSpace(tz.UserID) == "" {
		return errors.New("user id required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.timezones[tz.UserID] = tz
	return nil
}

func (r *timezoneRepo) Get(ctx context.Context, userID string) (timezones.UserTimezone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tz, ok := r.s.timezones[userID]
	if !ok {
		return timezones.UserTimezone{}, timezones.ErrNotFound
	}
	return tz, nil
}

func (r *timezoneRepo) GetMany(ctx context.Context, userIDs []string) ([]timezones.UserTimezone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]timezones.UserTimezone, 0, len(userIDs))
	for _, id := range userIDs {
		if tz, ok := r.s.timezones[id]; ok {
			out = append(out, tz)
		}
	}
	return out, nil
}
