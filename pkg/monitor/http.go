package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/gorilla/mux"
)

// PreferenceWriter covers the pause commands issued from the UI.
type PreferenceWriter interface {
	SetPredictionsPausedUntil(ctx context.Context, userID int, until int64) error
	ClearPausePredictions(ctx context.Context, userID int) error
}

type HTTPHandler struct {
	agent  *Agent
	repo   *Repository
	prefs  PreferenceWriter
	userID int
}

func NewHTTPHandler(agent *Agent, repo *Repository, prefs PreferenceWriter, userID int) *HTTPHandler {
	return &HTTPHandler{agent: agent, repo: repo, prefs: prefs, userID: userID}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/monitor/state", h.handleState).Methods(http.MethodGet)
	router.HandleFunc("/monitor/readings", h.handleSubmitReading).Methods(http.MethodPost)
	router.HandleFunc("/monitor/cancel", h.handleCancel).Methods(http.MethodPost)
	router.HandleFunc("/monitor/acknowledge", h.handleAcknowledge).Methods(http.MethodPost)
	router.HandleFunc("/monitor/pause", h.handlePause).Methods(http.MethodPost)
	router.HandleFunc("/monitor/pause", h.handleClearPause).Methods(http.MethodDelete)
	router.HandleFunc("/incidents", h.handleListIncidents).Methods(http.MethodGet)
	router.HandleFunc("/incidents/recent", h.handleRecentIncidents).Methods(http.MethodGet)
	router.HandleFunc("/incidents/{id}", h.handleGetIncident).Methods(http.MethodGet)
	router.HandleFunc("/incidents/{id}/resolve", h.handleResolve).Methods(http.MethodPost)
	router.HandleFunc("/incidents/{id}/escalate", h.handleEscalate).Methods(http.MethodPost)
	router.HandleFunc("/vitals/recent", h.handleRecentVitals).Methods(http.MethodGet)
	router.HandleFunc("/vitals/anomalies", h.handleRecentAnomalies).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleState(w http.ResponseWriter, r *http.Request) {
	state := h.agent.State()
	writeJSON(w, map[string]interface{}{
		"verifying":    state != nil,
		"verification": state,
	})
}

func (h *HTTPHandler) handleSubmitReading(w http.ResponseWriter, r *http.Request) {
	var sample models.VitalsSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if sample.Timestamp == 0 {
		sample.Timestamp = models.NowMillis()
	}
	if sample.Source == "" {
		sample.Source = models.SourceManualEntry
	}

	if err := h.agent.SubmitVerificationReading(r.Context(), sample); err != nil {
		if errors.Is(err, ErrNoActiveVerification) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		logger.Log.WithError(err).Error("failed to submit verification reading")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *HTTPHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.agent.CancelCurrentAlert(); err != nil {
		if errors.Is(err, ErrNoActiveVerification) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	h.agent.AcknowledgeAlert()
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Minutes <= 0 {
		http.Error(w, "minutes must be a positive integer", http.StatusBadRequest)
		return
	}

	until := time.Now().Add(time.Duration(req.Minutes) * time.Minute).UnixMilli()
	if err := h.prefs.SetPredictionsPausedUntil(r.Context(), h.userID, until); err != nil {
		logger.Log.WithError(err).Error("failed to pause predictions")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"paused_until": until})
}

func (h *HTTPHandler) handleClearPause(w http.ResponseWriter, r *http.Request) {
	if err := h.prefs.ClearPausePredictions(r.Context(), h.userID); err != nil {
		logger.Log.WithError(err).Error("failed to clear prediction pause")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.repo.ListIncidents(r.Context(), h.userID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list incidents")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, incidents)
}

func (h *HTTPHandler) handleRecentIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.repo.RecentIncidents(r.Context(), h.userID, queryLimit(r, 10))
	if err != nil {
		logger.Log.WithError(err).Error("failed to list recent incidents")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, incidents)
}

func (h *HTTPHandler) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	incident, err := h.repo.GetIncident(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			http.Error(w, "incident not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch incident")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, incident)
}

func (h *HTTPHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	h.markIncident(w, r, h.repo.MarkResolved)
}

func (h *HTTPHandler) handleEscalate(w http.ResponseWriter, r *http.Request) {
	h.markIncident(w, r, h.repo.MarkEscalated)
}

func (h *HTTPHandler) markIncident(w http.ResponseWriter, r *http.Request, mark func(context.Context, string) error) {
	id := mux.Vars(r)["id"]
	if err := mark(r.Context(), id); err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			http.Error(w, "incident not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update incident")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleRecentVitals(w http.ResponseWriter, r *http.Request) {
	samples, err := h.repo.RecentSamples(r.Context(), h.userID, queryLimit(r, 50))
	if err != nil {
		logger.Log.WithError(err).Error("failed to list recent vitals")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, samples)
}

func (h *HTTPHandler) handleRecentAnomalies(w http.ResponseWriter, r *http.Request) {
	samples, err := h.repo.RecentAnomalies(r.Context(), h.userID, queryLimit(r, 20))
	if err != nil {
		logger.Log.WithError(err).Error("failed to list recent anomalies")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, samples)
}

func queryLimit(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			return limit
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
