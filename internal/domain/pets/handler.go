package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"xiuh/internal/domain/hunger"
	"xiuh/internal/domain/inventory"
	"xiuh/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, bag Bag) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", adoptHandler(svc))
		pr.Patch("/{petID}", renameHandler(svc))
		pr.Post("/{petID}/feed", feedHandler(svc, bag))
	})

	r.Get("/me/pet", myPetHandler(svc))
}

type adoptRequest struct {
	Species string `json:"species"`
	Name    string `json:"name"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type feedRequest struct {
	ItemID string `json:"item_id"`
}

type petResponse struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Species   string       `json:"species"`
	Name      string       `json:"name"`
	Hunger    float64      `json:"hunger"`
	State     hunger.State `json:"hunger_state"`
	LastFedAt time.Time    `json:"last_fed_at"`
	AdoptedAt time.Time    `json:"adopted_at"`
}

type feedResponse struct {
	PetID    string       `json:"pet_id"`
	ItemID   string       `json:"item_id"`
	ItemName string       `json:"item_name"`
	Hunger   float64      `json:"hunger"`
	State    hunger.State `json:"hunger_state"`
}

func adoptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req adoptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Adopt(r.Context(), uid, req.Species, req.Name)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p, svc.CurrentHunger(p)))
	}
}

func myPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.ActivePet(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p, svc.CurrentHunger(p)))
	}
}

func renameHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req renameRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Rename(r.Context(), uid, chi.URLParam(r, "petID"), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p, svc.CurrentHunger(p)))
	}
}

func feedHandler(svc *Service, bag Bag) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req feedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		petID := chi.URLParam(r, "petID")
		res, def, err := svc.FeedItem(r.Context(), bag, uid, petID, req.ItemID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, feedResponse{
			PetID:    petID,
			ItemID:   def.ID,
			ItemName: def.Name,
			Hunger:   res.NewHunger,
			State:    res.NewState,
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotEdible):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoPet),
		errors.Is(err, ErrUnknownSpecies), errors.Is(err, inventory.ErrUnknownItem):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAlreadyHasPet), errors.Is(err, inventory.ErrInsufficientQuantity):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPetResponse(p Pet, st HungerStatus) petResponse {
	return petResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Species:   p.SpeciesID,
		Name:      p.Name,
		Hunger:    st.Value,
		State:     st.State,
		LastFedAt: p.LastFedAt,
		AdoptedAt: p.AdoptedAt,
	}
}

// writeJSON está duplicado intencionalmente en los handlers de cada módulo
// para no crear un paquete de helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
