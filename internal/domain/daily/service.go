package daily

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"xiuh/internal/domain/catalog"
	"xiuh/internal/domain/inventory"
	"xiuh/internal/platform/logger"
)

// CooldownDuration es el tiempo mínimo entre dos reclamos.
const CooldownDuration = 20 * time.Hour

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrOnCooldown   = errors.New("daily reward on cooldown")
)

type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("daily reward on cooldown: %s remaining", e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error { return ErrOnCooldown }

// Inventory es lo que el daily necesita del inventario.
type Inventory interface {
	Add(ctx context.Context, userID, itemID string, qty int, kind inventory.Kind) error
}

type Service struct {
	repo Repository
	inv  Inventory
	log  logger.Logger
	now  func() time.Time
	intn func(n int) int
}

func NewService(repo Repository, inv Inventory, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		inv:  inv,
		log:  log,
		now:  time.Now,
		intn: rand.IntN,
	}
}

// LastClaim devuelve el último reclamo; ok=false si nunca reclamó.
func (s *Service) LastClaim(ctx context.Context, userID string) (time.Time, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return time.Time{}, false, ErrInvalidInput
	}
	return s.repo.GetLastClaim(ctx, userID)
}

// Remaining es cuánto falta para poder reclamar. 0 si ya puede.
func (s *Service) Remaining(ctx context.Context, userID string) (time.Duration, error) {
	last, ok, err := s.LastClaim(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return remaining(last, s.clock()), nil
}

// Claim entrega un item del pool a la bolsa y registra el reclamo.
// El sello se escribe primero con una condición sobre el sello anterior, así dos
// reclamos concurrentes no pueden pasar los dos. Si después falla el alta del item,
// se restaura el sello anterior (best-effort).
func (s *Service) Claim(ctx context.Context, userID string) (catalog.ItemDef, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return catalog.ItemDef{}, ErrInvalidInput
	}

	now := s.clock()
	prev, hadPrev, err := s.repo.GetLastClaim(ctx, userID)
	if err != nil {
		return catalog.ItemDef{}, err
	}
	if hadPrev {
		if left := remaining(prev, now); left > 0 {
			return catalog.ItemDef{}, &CooldownError{Remaining: left}
		}
	}

	if err := s.repo.RecordClaim(ctx, userID, now, now.Add(-CooldownDuration)); err != nil {
		if errors.Is(err, ErrOnCooldown) {
			return catalog.ItemDef{}, s.cooldownError(ctx, userID, now)
		}
		return catalog.ItemDef{}, err
	}

	reward := catalog.RandomReward(s.intn)
	if err := s.inv.Add(ctx, userID, reward.ID, 1, inventory.Bag); err != nil {
		var restoreTo *time.Time
		if hadPrev {
			restoreTo = &prev
		}
		if rerr := s.repo.RestoreClaim(ctx, userID, now, restoreTo); rerr != nil {
			s.log.Error("daily claim restore failed", map[string]any{
				"user_id": userID,
				"err":     rerr,
			})
		}
		return catalog.ItemDef{}, err
	}

	s.log.Info("daily reward claimed", map[string]any{"user_id": userID, "item_id": reward.ID})
	return reward, nil
}

func (s *Service) cooldownError(ctx context.Context, userID string, now time.Time) error {
	left := CooldownDuration
	if last, ok, err := s.repo.GetLastClaim(ctx, userID); err == nil && ok {
		left = remaining(last, now)
	}
	return &CooldownError{Remaining: left}
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func remaining(last, now time.Time) time.Duration {
	elapsed := now.Sub(last)
	if elapsed >= CooldownDuration {
		return 0
	}
	return CooldownDuration - elapsed
}
