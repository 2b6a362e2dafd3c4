package timezones

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"xiuh/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// maxBatch acota los ids por request en GET /timezones.
const maxBatch = 100

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/me/timezone", func(tr chi.Router) {
		tr.Put("/", saveHandler(svc))
		tr.Get("/", mineHandler(svc))
	})
	r.Get("/timezones", batchHandler(svc))
}

type saveRequest struct {
	Timezone string `json:"timezone"`
	Location string `json:"location"`
}

type timezoneResponse struct {
	UserID    string    `json:"user_id"`
	Timezone  string    `json:"timezone"`
	Location  string    `json:"location"`
	LocalTime string    `json:"local_time,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func saveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		tz, err := svc.Save(r.Context(), uid, req.Timezone, req.Location)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toResponse(svc, tz))
	}
}

func mineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		tz, err := svc.Get(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toResponse(svc, tz))
	}
}

// batchHandler acepta ?user_id=a&user_id=b o ?user_id=a,b.
func batchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.UserID(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ids := make([]string, 0)
		for _, v := range r.URL.Query()["user_id"] {
			for _, id := range strings.Split(v, ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
		}
		if len(ids) == 0 {
			http.Error(w, "user_id required", http.StatusBadRequest)
			return
		}
		if len(ids) > maxBatch {
			http.Error(w, "too many user ids", http.StatusBadRequest)
			return
		}

		found, err := svc.GetMany(r.Context(), ids)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]timezoneResponse, 0, len(found))
		for _, tz := range found {
			out = append(out, toResponse(svc, tz))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownTimezone):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toResponse(svc *Service, tz UserTimezone) timezoneResponse {
	resp := timezoneResponse{
		UserID:    tz.UserID,
		Timezone:  tz.Timezone,
		Location:  tz.DisplayLocation,
		UpdatedAt: tz.UpdatedAt,
	}
	if local, err := svc.LocalTime(tz, svc.Now()); err == nil {
		resp.LocalTime = local.Format("2006-01-02 15:04 MST")
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
