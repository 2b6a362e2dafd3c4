package timezones

import (
	"context"
	"errors"
	"strings"
	"time"
	_ "time/tzdata" // zonas IANA aunque el host no tenga zoneinfo

	"xiuh/internal/platform/cache"
	"xiuh/internal/platform/logger"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownTimezone = errors.New("unknown timezone")
	ErrNotFound        = errors.New("timezone not found")
)

const maxLocationLen = 100

type Service struct {
	repo  Repository
	cache cache.Cache[UserTimezone]
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, c cache.Cache[UserTimezone], log logger.Logger) *Service {
	if c == nil {
		c = cache.Nop[UserTimezone]{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, cache: c, log: log, now: time.Now}
}

// Save registra (o pisa) la zona del usuario. location es el texto a mostrar;
// si viene vacío se usa el nombre de la zona.
func (s *Service) Save(ctx context.Context, userID, timezone, location string) (UserTimezone, error) {
	userID = strings.TrimSpace(userID)
	timezone = strings.TrimSpace(timezone)
	location = strings.TrimSpace(location)
	if userID == "" || timezone == "" || len(location) > maxLocationLen {
		return UserTimezone{}, ErrInvalidInput
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil || strings.EqualFold(timezone, "local") {
		return UserTimezone{}, ErrUnknownTimezone
	}
	if location == "" {
		location = loc.String()
	}

	tz := UserTimezone{
		UserID:          userID,
		Timezone:        loc.String(),
		DisplayLocation: location,
		UpdatedAt:       s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Save(ctx, tz); err != nil {
		return UserTimezone{}, err
	}
	s.cache.Set(userID, tz)
	return tz, nil
}

func (s *Service) Get(ctx context.Context, userID string) (UserTimezone, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserTimezone{}, ErrInvalidInput
	}
	out, err := s.GetMany(ctx, []string{userID})
	if err != nil {
		return UserTimezone{}, err
	}
	if len(out) == 0 {
		return UserTimezone{}, ErrNotFound
	}
	return out[0], nil
}

// GetMany resuelve varios usuarios: primero cache, los faltantes en un solo batch.
// Devuelve en el orden de userIDs, sin duplicados y omitiendo los que no tienen zona.
func (s *Service) GetMany(ctx context.Context, userIDs []string) ([]UserTimezone, error) {
	ids := make([]string, 0, len(userIDs))
	seen := map[string]struct{}{}
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	found := make(map[string]UserTimezone, len(ids))
	missing := make([]string, 0)
	for _, id := range ids {
		if tz, ok := s.cache.Get(id); ok {
			found[id] = tz
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		fetched, err := s.repo.GetMany(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, tz := range fetched {
			s.cache.Set(tz.UserID, tz)
			found[tz.UserID] = tz
		}
	}

	out := make([]UserTimezone, 0, len(found))
	for _, id := range ids {
		if tz, ok := found[id]; ok {
			out = append(out, tz)
		}
	}
	return out, nil
}

// LocalTime convierte at a la zona del usuario.
func (s *Service) LocalTime(tz UserTimezone, at time.Time) (time.Time, error) {
	loc, err := tz.Location()
	if err != nil {
		s.log.Warn("stored timezone no longer loads", map[string]any{"user_id": tz.UserID, "timezone": tz.Timezone})
		return time.Time{}, ErrUnknownTimezone
	}
	return at.In(loc), nil
}

// Now expone el reloj para los handlers.
func (s *Service) Now() time.Time { return s.now() }
