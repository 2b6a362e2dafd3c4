package daily

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"xiuh/internal/domain/inventory"
	"xiuh/internal/domain/pets"
	"xiuh/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// PetLookup: el comando daily exige que el usuario ya haya adoptado.
type PetLookup interface {
	ActivePet(ctx context.Context, userID string) (pets.Pet, error)
}

func RegisterRoutes(r chi.Router, svc *Service, petsSvc PetLookup) {
	r.Route("/daily", func(dr chi.Router) {
		dr.Get("/", statusHandler(svc))
		dr.Post("/", claimHandler(svc, petsSvc))
	})
}

type statusResponse struct {
	LastClaimAt      *time.Time `json:"last_claim_at,omitempty"`
	Available        bool       `json:"available"`
	RemainingSeconds int64      `json:"remaining_seconds"`
}

type claimResponse struct {
	ItemID      string    `json:"item_id"`
	ItemName    string    `json:"item_name"`
	NextClaimAt time.Time `json:"next_claim_at"`
}

type cooldownResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int64  `json:"retry_after_seconds"`
}

func statusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		last, had, err := svc.LastClaim(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		left, err := svc.Remaining(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := statusResponse{Available: left == 0, RemainingSeconds: seconds(left)}
		if had {
			resp.LastClaimAt = &last
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func claimHandler(svc *Service, petsSvc PetLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if _, err := petsSvc.ActivePet(r.Context(), uid); err != nil {
			writeError(w, err)
			return
		}

		item, err := svc.Claim(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, claimResponse{
			ItemID:      item.ID,
			ItemName:    item.Name,
			NextClaimAt: svc.clock().Add(CooldownDuration),
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ce *CooldownError
	switch {
	case errors.As(err, &ce):
		secs := seconds(ce.Remaining)
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
		writeJSON(w, http.StatusTooManyRequests, cooldownResponse{
			Error:             ce.Error(),
			RetryAfterSeconds: secs,
		})
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pets.ErrNoPet):
		http.Error(w, "adopt a pet first", http.StatusNotFound)
	case errors.Is(err, inventory.ErrCapacityExceeded):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// seconds redondea hacia arriba: 0.2s restantes no son "ya podés".
func seconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
