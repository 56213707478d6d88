package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"snct-watcher/internal/dispatcher"
	"snct-watcher/internal/model"
)

const dateLayout = "2006-01-02"

// errorBody is the JSON error shape shared by REST and the subscribe
// stream.
type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message, Status: status})
}

// handleHealth reports readiness. The process is degraded until the first
// catalog and availability refresh completed.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if !s.catalog.Ready() || s.dispatcher.KeyCount() == 0 {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"components": map[string]any{
			"catalog": map[string]any{
				"sites":         len(s.catalog.Sites()),
				"vehicle_types": len(s.catalog.VehicleTypes()),
			},
			"dispatcher": map[string]any{
				"keys":        s.dispatcher.KeyCount(),
				"subscribers": s.dispatcher.SubscriberCount(),
			},
		},
	})
}

// handleSites returns the (organism, site) enumeration.
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	type siteView struct {
		Organism string `json:"organism"`
		Site     string `json:"site"`
	}
	sites := s.catalog.Sites()
	out := make([]siteView, 0, len(sites))
	for _, sk := range sites {
		out = append(out, siteView{Organism: sk.Organism, Site: sk.Site})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleVehicleTypes returns the vehicle-type enumeration.
func (s *Server) handleVehicleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.VehicleTypes())
}

// handleAppointments returns the stored timestamps for one key between
// start_date (inclusive) and end_date (exclusive).
func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	key := model.Key{
		UserType:    chi.URLParam(r, "user_type"),
		ControlType: chi.URLParam(r, "control_type"),
		VehicleType: chi.URLParam(r, "vehicle_type"),
		Organism:    chi.URLParam(r, "organism"),
		Site:        chi.URLParam(r, "site"),
	}

	if err := s.dispatcher.ValidateKey(key); err != nil {
		var verr *dispatcher.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	start, err := time.ParseInLocation(dateLayout, chi.URLParam(r, "start_date"), s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date is not a valid date (YYYY-MM-DD)")
		return
	}
	end, err := time.ParseInLocation(dateLayout, chi.URLParam(r, "end_date"), s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date is not a valid date (YYYY-MM-DD)")
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "start_date must not be after end_date")
		return
	}

	out := make([]string, 0)
	for _, ts := range s.dispatcher.Slots(key) {
		if !ts.Before(start) && ts.Before(end) {
			out = append(out, ts.Format(time.RFC3339))
		}
	}
	writeJSON(w, http.StatusOK, out)
}
