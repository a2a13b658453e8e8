package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	service *Service
	prefs   *PreferenceStore
}

func NewHTTPHandler(service *Service, prefs *PreferenceStore) *HTTPHandler {
	return &HTTPHandler{service: service, prefs: prefs}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/auth/signin", h.handleSignIn).Methods(http.MethodPost)
	router.HandleFunc("/profile", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/profile/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/profile/{id}", h.handleUpdate).Methods(http.MethodPut)
	router.HandleFunc("/profile/{id}/onboarding", h.handleOnboardingComplete).Methods(http.MethodPost)
	router.HandleFunc("/profile/{id}/autonomy", h.handleSetAutonomy).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.service.SignIn(r.Context(), req.Email)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("sign-in lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, profile)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Create(r.Context(), &profile); err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to create profile")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, profile)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch profile")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, profile)
}

func (h *HTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	profile.ID = id

	if err := h.service.Update(r.Context(), &profile); err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update profile")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, profile)
}

func (h *HTTPHandler) handleOnboardingComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.prefs.SetOnboardingComplete(r.Context(), id, true); err != nil {
		logger.Log.WithError(err).Error("failed to set onboarding flag")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleSetAutonomy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Mode models.AutonomyLevel `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Mode != models.AutonomySemiAutomatic && req.Mode != models.AutonomyFullyAutomatic {
		http.Error(w, "invalid autonomy mode", http.StatusBadRequest)
		return
	}

	if err := h.prefs.SetAutonomyMode(r.Context(), id, req.Mode); err != nil {
		logger.Log.WithError(err).Error("failed to set autonomy mode")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid profile id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
