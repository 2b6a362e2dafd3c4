package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"xiuh/internal/domain/catalog"
	"xiuh/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/inventory", func(ir chi.Router) {
		ir.Get("/bag", bagHandler(svc))
		ir.Get("/storage", storageHandler(svc))
		ir.Post("/move", moveHandler(svc))
	})
}

type entryResponse struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	Traits      []catalog.Trait `json:"traits"`
}

type bagResponse struct {
	Items    []entryResponse `json:"items"`
	Count    int             `json:"count"`
	Capacity int             `json:"capacity"`
}

type storageResponse struct {
	Items       []entryResponse `json:"items"`
	TotalPages  int             `json:"total_pages"`
	CurrentPage int             `json:"current_page"`
	HasMore     bool            `json:"has_more"`
}

type moveRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type moveResponse struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	From     Kind   `json:"from"`
	To       Kind   `json:"to"`
}

func bagHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		entries, err := svc.Compartment(r.Context(), uid, Bag)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, bagResponse{
			Items:    toEntryResponses(entries),
			Count:    len(entries),
			Capacity: Bag.Limit(),
		})
	}
}

func storageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		page := 1
		if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "page must be a number", http.StatusBadRequest)
				return
			}
			page = n
		}

		p, err := svc.Page(r.Context(), uid, Storage, page)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, storageResponse{
			Items:       toEntryResponses(p.Items),
			TotalPages:  p.TotalPages,
			CurrentPage: p.CurrentPage,
			HasMore:     p.HasMore,
		})
	}
}

func moveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req moveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		from, err := ParseKind(req.From)
		if err != nil {
			http.Error(w, "from must be bag or storage", http.StatusBadRequest)
			return
		}
		to, err := ParseKind(req.To)
		if err != nil {
			http.Error(w, "to must be bag or storage", http.StatusBadRequest)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		if err := svc.Move(r.Context(), uid, req.ItemID, req.Quantity, from, to); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, moveResponse{
			ItemID:   strings.TrimSpace(req.ItemID),
			Quantity: req.Quantity,
			From:     from,
			To:       to,
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrSameCompartment):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnknownItem):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrInsufficientQuantity):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEntryResponses(entries []Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		name := e.Item.Name
		if !e.Known {
			name = e.ItemID
		}
		traits := e.Item.Traits
		if traits == nil {
			traits = []catalog.Trait{}
		}
		out = append(out, entryResponse{
			ItemID:      e.ItemID,
			Name:        name,
			Description: e.Item.Description,
			Quantity:    e.Quantity,
			Traits:      traits,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
