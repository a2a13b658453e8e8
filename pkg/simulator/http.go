package simulator

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	sim *Simulator
}

func NewHTTPHandler(sim *Simulator) *HTTPHandler {
	return &HTTPHandler{sim: sim}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/simulator/status", h.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/simulator/scenario", h.handleSetScenario).Methods(http.MethodPost)
	router.HandleFunc("/simulator/compression", h.handleSetCompression).Methods(http.MethodPost)
	router.HandleFunc("/simulator/inject", h.handleInject).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.sim.Status())
}

func (h *HTTPHandler) handleSetScenario(w http.ResponseWriter, r *http.Request) {
	h.setScenario(w, r)
}

// Inject is the developer-mode shortcut: the anomaly scenario takes effect
// on the next generation cycle.
func (h *HTTPHandler) handleInject(w http.ResponseWriter, r *http.Request) {
	h.setScenario(w, r)
}

func (h *HTTPHandler) setScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario string `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	scenario, err := ParseScenario(req.Scenario)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.sim.SetScenario(scenario)
	writeJSON(w, h.sim.Status())
}

func (h *HTTPHandler) handleSetCompression(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Factor int `json:"factor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.sim.SetCompressionFactor(req.Factor)
	writeJSON(w, h.sim.Status())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
