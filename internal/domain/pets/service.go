package pets

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"xiuh/internal/domain/catalog"
	"xiuh/internal/domain/hunger"
	"xiuh/internal/domain/inventory"
	"xiuh/internal/platform/cache"
	"xiuh/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("pet not found")
	ErrUnknownSpecies = errors.New("unknown species")
	ErrAlreadyHasPet  = errors.New("user already has a pet")
	ErrNoPet          = errors.New("user has no pet")
	ErrNotEdible      = errors.New("item is not edible")
)

// Bag es lo que FeedItem necesita del inventario.
type Bag interface {
	HasItem(ctx context.Context, userID, itemID string, qty int, kind inventory.Kind) (bool, error)
	Remove(ctx context.Context, userID, itemID string, qty int, kind inventory.Kind) (int, error)
}

type Service struct {
	repo  Repository
	cache cache.Cache[Pet]
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

// NewService arma el service. c y log pueden ser nil (sin cache / sin logs).
func NewService(repo Repository, c cache.Cache[Pet], log logger.Logger) *Service {
	if c == nil {
		c = cache.Nop[Pet]{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:  repo,
		cache: c,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Adopt crea la primera (y única) mascota del usuario.
func (s *Service) Adopt(ctx context.Context, userID, speciesID, name string) (Pet, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Pet{}, ErrInvalidInput
	}
	name, err := normalizeName(name)
	if err != nil {
		return Pet{}, err
	}
	speciesID = strings.ToLower(strings.TrimSpace(speciesID))
	if _, ok := catalog.Species(speciesID); !ok {
		return Pet{}, ErrUnknownSpecies
	}

	// Pre-chequeo barato; la condición de la transacción es la que manda.
	prof, err := s.repo.GetProfile(ctx, userID)
	switch {
	case err == nil && prof.HasPet():
		return Pet{}, ErrAlreadyHasPet
	case err != nil && !errors.Is(err, ErrNotFound):
		return Pet{}, err
	}

	now := s.clock()
	p := Pet{
		ID:        s.newID(),
		UserID:    userID,
		SpeciesID: speciesID,
		Name:      name,
		Hunger:    hunger.Max,
		LastFedAt: now,
		AdoptedAt: now,
	}

	if err := s.repo.CreateWithProfile(ctx, p); err != nil {
		return Pet{}, err
	}

	s.cache.Set(p.ID, p)
	s.log.Info("pet adopted", map[string]any{"user_id": userID, "pet_id": p.ID, "species": speciesID})
	return p, nil
}

// Rename pisa solo el nombre.
func (s *Service) Rename(ctx context.Context, userID, petID, newName string) (Pet, error) {
	userID = strings.TrimSpace(userID)
	petID = strings.TrimSpace(petID)
	if userID == "" || petID == "" {
		return Pet{}, ErrInvalidInput
	}
	name, err := normalizeName(newName)
	if err != nil {
		return Pet{}, err
	}

	if err := s.repo.UpdateName(ctx, userID, petID, name); err != nil {
		return Pet{}, err
	}

	p, err := s.repo.GetPet(ctx, userID, petID)
	if err != nil {
		return Pet{}, err
	}
	s.cache.Set(p.ID, p)
	return p, nil
}

// Feed aplica restoration sobre el hambre actual (ya decaída) y persiste
// el nuevo valor base junto con LastFedAt = now.
func (s *Service) Feed(ctx context.Context, userID, petID string, restoration float64) (FeedResult, error) {
	if restoration < 0 {
		return FeedResult{}, ErrInvalidInput
	}

	p, err := s.GetPet(ctx, userID, petID)
	if err != nil {
		return FeedResult{}, err
	}

	now := s.clock()
	current := hunger.Current(p.Hunger, p.LastFedAt, now)
	next := hunger.Restore(current, restoration)

	if err := s.repo.UpdateHunger(ctx, p.UserID, p.ID, next, now); err != nil {
		return FeedResult{}, err
	}

	p.Hunger = next
	p.LastFedAt = now
	s.cache.Set(p.ID, p)

	return FeedResult{NewHunger: next, NewState: hunger.StateOf(next)}, nil
}

// FeedItem consume un item comestible de la bolsa y alimenta con su HungerRestoration.
// El item se descuenta antes de alimentar; si el Feed falla después, el item ya se gastó.
func (s *Service) FeedItem(ctx context.Context, bag Bag, userID, petID, itemID string) (FeedResult, catalog.ItemDef, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return FeedResult{}, catalog.ItemDef{}, ErrInvalidInput
	}
	def, ok := catalog.Item(itemID)
	if !ok {
		return FeedResult{}, catalog.ItemDef{}, inventory.ErrUnknownItem
	}
	if !def.Edible() {
		return FeedResult{}, def, ErrNotEdible
	}

	p, err := s.GetPet(ctx, userID, petID)
	if err != nil {
		return FeedResult{}, def, err
	}

	has, err := bag.HasItem(ctx, p.UserID, def.ID, 1, inventory.Bag)
	if err != nil {
		return FeedResult{}, def, err
	}
	if !has {
		return FeedResult{}, def, &inventory.QuantityError{ItemID: def.ID, Kind: inventory.Bag, Requested: 1}
	}
	if _, err := bag.Remove(ctx, p.UserID, def.ID, 1, inventory.Bag); err != nil {
		return FeedResult{}, def, err
	}

	res, err := s.Feed(ctx, p.UserID, p.ID, def.HungerRestoration)
	if err != nil {
		s.log.Error("feed failed after item was consumed", map[string]any{
			"user_id": p.UserID,
			"pet_id":  p.ID,
			"item_id": def.ID,
			"err":     err,
		})
		return FeedResult{}, def, err
	}
	return res, def, nil
}

// CurrentHunger es una proyección de solo lectura; no persiste nada.
func (s *Service) CurrentHunger(p Pet) HungerStatus {
	v := hunger.Current(p.Hunger, p.LastFedAt, s.clock())
	return HungerStatus{Value: v, State: hunger.StateOf(v)}
}

// GetProfile siempre va al store: el perfil lo mutan también otros módulos (daily).
// GetProfile va siempre al store: el perfil lleva el activePetId y el sello del
// daily, que otros services escriben sin pasar por esta cache.
func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Profile{}, ErrInvalidInput
	}
	return s.repo.GetProfile(ctx, userID)
}

// GetPet lee primero del cache (por pet id) y si no, del store.
func (s *Service) GetPet(ctx context.Context, userID, petID string) (Pet, error) {
	userID = strings.TrimSpace(userID)
	petID = strings.TrimSpace(petID)
	if userID == "" || petID == "" {
		return Pet{}, ErrInvalidInput
	}

	if p, ok := s.cache.Get(petID); ok && p.UserID == userID {
		return p, nil
	}

	p, err := s.repo.GetPet(ctx, userID, petID)
	if err != nil {
		return Pet{}, err
	}
	s.cache.Set(p.ID, p)
	return p, nil
}

// ActivePet resuelve la mascota activa del usuario. ErrNoPet si no adoptó.
func (s *Service) ActivePet(ctx context.Context, userID string) (Pet, error) {
	prof, err := s.GetProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Pet{}, ErrNoPet
	}
	if err != nil {
		return Pet{}, err
	}
	if !prof.HasPet() {
		return Pet{}, ErrNoPet
	}
	return s.GetPet(ctx, userID, prof.ActivePetID)
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < NameMinLen || n > NameMaxLen {
		return "", ErrInvalidInput
	}
	return name, nil
}
