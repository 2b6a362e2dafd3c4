package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"xiuh/internal/domain/catalog"
	"xiuh/internal/platform/logger"
)

type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log}
}

// Compartment lista el compartimento ordenado por item id, hidratado con el catálogo.
// Ids sin entrada en el catálogo se loguean y se devuelven con Known=false.
func (s *Service) Compartment(ctx context.Context, userID string, kind Kind) ([]Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || !kind.Valid() {
		return nil, ErrInvalidInput
	}

	counts, err := s.repo.Get(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(counts))
	for id, q := range counts {
		if q <= 0 {
			continue
		}
		def, ok := catalog.Item(id)
		if !ok {
			s.log.Error("item missing from catalog", map[string]any{
				"user_id": userID,
				"kind":    string(kind),
				"item_id": id,
			})
		}
		out = append(out, Entry{ItemID: id, Quantity: q, Item: def, Known: ok})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// Page pagina en memoria. page < 1 se trata como 1.
func (s *Service) Page(ctx context.Context, userID string, kind Kind, page int) (Page, error) {
	all, err := s.Compartment(ctx, userID, kind)
	if err != nil {
		return Page{}, err
	}
	if page < 1 {
		page = 1
	}

	total := (len(all) + StoragePageSize - 1) / StoragePageSize
	if page > total {
		return Page{Items: []Entry{}, TotalPages: total, CurrentPage: page}, nil
	}
	start := min((page-1)*StoragePageSize, len(all))
	end := min(start+StoragePageSize, len(all))

	return Page{
		Items:       all[start:end],
		TotalPages:  total,
		CurrentPage: page,
		HasMore:     page < total,
	}, nil
}

// ItemTypeCount cuenta tipos distintos (no cantidad total).
func (s *Service) ItemTypeCount(ctx context.Context, userID string, kind Kind) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || !kind.Valid() {
		return 0, ErrInvalidInput
	}
	counts, err := s.repo.Get(ctx, userID, kind)
	if err != nil {
		return 0, err
	}
	return distinct(counts), nil
}

// CanAdd: storage siempre; bag si el item ya está o si queda lugar para un tipo nuevo.
func (s *Service) CanAdd(ctx context.Context, userID, itemID string, kind Kind) (bool, error) {
	ok, _, err := s.canAdd(ctx, userID, itemID, kind)
	return ok, err
}

func (s *Service) Add(ctx context.Context, userID, itemID string, qty int, kind Kind) error {
	userID = strings.TrimSpace(userID)
	itemID = strings.TrimSpace(itemID)
	if userID == "" || itemID == "" || qty <= 0 || !kind.Valid() {
		return ErrInvalidInput
	}
	if _, ok := catalog.Item(itemID); !ok {
		return ErrUnknownItem
	}

	ok, current, err := s.canAdd(ctx, userID, itemID, kind)
	if err != nil {
		return err
	}
	if !ok {
		return &CapacityError{Current: current, Limit: kind.Limit()}
	}

	err = s.repo.Increment(ctx, userID, kind, itemID, qty, kind.Limit())
	if errors.Is(err, ErrCapacityExceeded) {
		// Otro comando llenó la bolsa entre el pre-chequeo y la escritura.
		return s.capacityError(ctx, userID, kind)
	}
	return err
}

// Remove resta qty y devuelve lo que queda. Si queda en cero, limpia la key (best-effort).
func (s *Service) Remove(ctx context.Context, userID, itemID string, qty int, kind Kind) (int, error) {
	userID = strings.TrimSpace(userID)
	itemID = strings.TrimSpace(itemID)
	if userID == "" || itemID == "" || qty <= 0 || !kind.Valid() {
		return 0, ErrInvalidInput
	}

	remaining, err := s.repo.Decrement(ctx, userID, kind, itemID, qty)
	if errors.Is(err, ErrInsufficientQuantity) {
		return 0, &QuantityError{ItemID: itemID, Kind: kind, Requested: qty}
	}
	if err != nil {
		return 0, err
	}

	if remaining <= 0 {
		s.cleanup(ctx, userID, kind, itemID)
		return 0, nil
	}
	return remaining, nil
}

// Move pasa qty de from a to en una transacción.
func (s *Service) Move(ctx context.Context, userID, itemID string, qty int, from, to Kind) error {
	userID = strings.TrimSpace(userID)
	itemID = strings.TrimSpace(itemID)
	if userID == "" || itemID == "" || qty <= 0 || !from.Valid() || !to.Valid() {
		return ErrInvalidInput
	}
	if from == to {
		return ErrSameCompartment
	}

	if to.Limit() > 0 {
		ok, current, err := s.canAdd(ctx, userID, itemID, to)
		if err != nil {
			return err
		}
		if !ok {
			return &CapacityError{Current: current, Limit: to.Limit()}
		}
	}

	remaining, err := s.repo.Move(ctx, userID, itemID, qty, from, to, to.Limit())
	switch {
	case errors.Is(err, ErrInsufficientQuantity):
		return &QuantityError{ItemID: itemID, Kind: from, Requested: qty}
	case errors.Is(err, ErrCapacityExceeded):
		return s.capacityError(ctx, userID, to)
	case err != nil:
		return err
	}

	if remaining <= 0 {
		s.cleanup(ctx, userID, from, itemID)
	}
	return nil
}

// HasItem es una lectura: cantidad >= qty.
func (s *Service) HasItem(ctx context.Context, userID, itemID string, qty int, kind Kind) (bool, error) {
	userID = strings.TrimSpace(userID)
	itemID = strings.TrimSpace(itemID)
	if userID == "" || itemID == "" || !kind.Valid() {
		return false, ErrInvalidInput
	}
	counts, err := s.repo.Get(ctx, userID, kind)
	if err != nil {
		return false, err
	}
	have := counts[itemID]
	return have > 0 && have >= qty, nil
}

func (s *Service) canAdd(ctx context.Context, userID, itemID string, kind Kind) (bool, int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || !kind.Valid() {
		return false, 0, ErrInvalidInput
	}
	if kind.Limit() == 0 {
		return true, 0, nil
	}

	counts, err := s.repo.Get(ctx, userID, kind)
	if err != nil {
		return false, 0, err
	}
	n := distinct(counts)
	if counts[itemID] > 0 {
		return true, n, nil
	}
	return n < kind.Limit(), n, nil
}

func (s *Service) capacityError(ctx context.Context, userID string, kind Kind) error {
	current := kind.Limit()
	if n, err := s.ItemTypeCount(ctx, userID, kind); err == nil {
		current = n
	}
	return &CapacityError{Current: current, Limit: kind.Limit()}
}

// cleanup es una optimización: una key en cero equivale a una ausente,
// así que un fallo acá se loguea y no se propaga.
func (s *Service) cleanup(ctx context.Context, userID string, kind Kind, itemID string) {
	if err := s.repo.DeleteIfEmpty(ctx, userID, kind, itemID); err != nil {
		s.log.Warn("zero quantity cleanup failed", map[string]any{
			"user_id": userID,
			"kind":    string(kind),
			"item_id": itemID,
			"err":     err,
		})
		return
	}
	s.log.Debug("zero quantity item cleaned up", map[string]any{
		"user_id": userID,
		"kind":    string(kind),
		"item_id": itemID,
	})
}

func distinct(counts map[string]int) int {
	n := 0
	for _, q := range counts {
		if q > 0 {
			n++
		}
	}
	return n
}
