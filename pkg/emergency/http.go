package emergency

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/atharvamohekar/guardian-ai/pkg/monitor"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	service *Service
	userID  int
}

func NewHTTPHandler(service *Service, userID int) *HTTPHandler {
	return &HTTPHandler{service: service, userID: userID}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/emergency/{incidentId}/trigger", h.handleTrigger).Methods(http.MethodPost)
	router.HandleFunc("/emergency/logs", h.handleLogs).Methods(http.MethodGet)
	router.HandleFunc("/emergency/logs/{id}", h.handleLog).Methods(http.MethodGet)
	router.HandleFunc("/emergency/logs/{id}/outcome", h.handleOutcome).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	incidentID := mux.Vars(r)["incidentId"]

	var req struct {
		ConfirmedActions []models.ActionType `json:"confirmed_actions"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	log, err := h.service.TriggerWorkflow(r.Context(), incidentID, req.ConfirmedActions)
	if err != nil {
		if errors.Is(err, monitor.ErrIncidentNotFound) {
			http.Error(w, "incident not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).WithField("incident_id", incidentID).Error("emergency workflow failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, log)
}

func (h *HTTPHandler) handleLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.Logs(r.Context(), h.userID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list emergency logs")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, logs)
}

func (h *HTTPHandler) handleLog(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	log, err := h.service.Log(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "emergency log not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch emergency log")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, log)
}

func (h *HTTPHandler) handleOutcome(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Outcome      models.EmergencyOutcome `json:"outcome"`
		ResponseTime *int64                  `json:"response_time,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.RecordOutcome(r.Context(), id, req.Outcome, req.ResponseTime); err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "emergency log not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrInvalidOutcome) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to record outcome")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
