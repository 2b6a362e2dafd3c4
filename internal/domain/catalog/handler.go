package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router) {
	r.Route("/catalog", func(cr chi.Router) {
		cr.Get("/species", listSpeciesHandler())
		cr.Get("/items", listItemsHandler())
	})
}

type speciesResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

type itemResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Traits            []Trait `json:"traits"`
	HungerRestoration float64 `json:"hunger_restoration,omitempty"`
}

func listSpeciesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		all := AllSpecies()
		out := make([]speciesResponse, 0, len(all))
		for _, s := range all {
			out = append(out, speciesResponse{ID: s.ID, Name: s.Name, Category: s.Category})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listItemsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		all := Items()
		out := make([]itemResponse, 0, len(all))
		for _, d := range all {
			traits := d.Traits
			if traits == nil {
				traits = []Trait{}
			}
			out = append(out, itemResponse{
				ID:                d.ID,
				Name:              d.Name,
				Description:       d.Description,
				Traits:            traits,
				HungerRestoration: d.HungerRestoration,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
