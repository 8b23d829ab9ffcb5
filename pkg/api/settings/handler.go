package settings

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	coreSettings "fin_statements/pkg/core/settings"
)

// Handler holds dependencies for the settings endpoints.
type Handler struct {
	Service       *coreSettings.Service
	AllowedOrigin string
}

// NewHandler creates a new settings handler.
func NewHandler(svc *coreSettings.Service, origin string) *Handler {
	if origin == "" {
		origin = "*"
	}
	return &Handler{Service: svc, AllowedOrigin: origin}
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/settings", h.HandleGet).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/settings", h.HandleUpdate).Methods("PUT")
	r.HandleFunc("/api/settings/presets", h.HandlePresets).Methods("GET")
}

func (h *Handler) cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", h.AllowedOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	// Encode first so a failure can still change the status code.
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("[API] failed to encode response: %v", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if h.cors(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Get())
}

// HandleUpdate replaces the settings. Omitted fields keep their current value.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)

	next := h.Service.Get()
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	saved, err := h.Service.Update(next)
	if errors.Is(err, coreSettings.ErrInvalidColor) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("[SETTINGS] update failed: %v", err)
		http.Error(w, "failed to save settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) HandlePresets(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)
	writeJSON(w, http.StatusOK, coreSettings.Presets())
}
