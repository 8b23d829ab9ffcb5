package statements

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/ingest"
	"fin_statements/pkg/core/schema"
	"fin_statements/pkg/core/session"
	"fin_statements/pkg/core/utils"
)

const maxImportBytes = 1 << 20

// Handler holds dependencies for the statement endpoints.
type Handler struct {
	Sessions      *session.Manager
	Sources       map[string]ingest.Fetcher
	DefaultSource string
	AllowedOrigin string
}

// NewHandler creates a handler. defaultSource is used when a ticker request
// names no source.
func NewHandler(mgr *session.Manager, sources map[string]ingest.Fetcher, defaultSource, origin string) *Handler {
	if origin == "" {
		origin = "*"
	}
	return &Handler{
		Sessions:      mgr,
		Sources:       sources,
		DefaultSource: defaultSource,
		AllowedOrigin: origin,
	}
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/sessions", h.HandleCreateSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/sessions/{id}", h.HandleGetSession).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/sessions/{id}", h.HandleDeleteSession).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/ticker", h.HandleSubmitTicker).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/sessions/{id}/import", h.HandleImport).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/sessions/{id}/statements/{statement}", h.HandleEdit).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/api/sessions/{id}/export.xlsx", h.HandleExportXLSX).Methods("GET")
	r.HandleFunc("/api/sessions/{id}/export.pdf", h.HandleExportPDF).Methods("GET")
	r.HandleFunc("/api/sources", h.HandleSources).Methods("GET")
	r.HandleFunc("/api/schema", h.HandleSchema).Methods("GET")
	r.HandleFunc("/api/ratios", h.HandleRatioGuide).Methods("GET")
	r.HandleFunc("/api/explain/{statement}/{key}", h.HandleExplain).Methods("GET")
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type createResponse struct {
	ID string `json:"id"`
}

type TickerRequest struct {
	Ticker string `json:"ticker"`
	Source string `json:"source"`
}

type EditRequest struct {
	Key    string   `json:"key"`
	Amount *float64 `json:"amount"`
}

func (h *Handler) cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", h.AllowedOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
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

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := mux.Vars(r)["id"]
	s, ok := h.Sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session not found: %s", id), "")
		return nil, false
	}
	return s, true
}

func (h *Handler) writeView(w http.ResponseWriter, s *session.Session, status int) {
	view, err := s.View()
	if err != nil {
		log.Printf("[API] session %s: %v", s.ID, err)
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, status, view)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	if h.cors(w, r) {
		return
	}
	s := h.Sessions.Create()
	log.Printf("[API] created session %s", s.ID)
	writeJSON(w, http.StatusCreated, createResponse{ID: s.ID})
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if h.cors(w, r) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeView(w, s, http.StatusOK)
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)
	if !h.Sessions.Delete(mux.Vars(r)["id"]) {
		writeError(w, http.StatusNotFound, "session not found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSubmitTicker(w http.ResponseWriter, r *http.Request) {
	if h.cors(w, r) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req TickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required", "")
		return
	}
	sourceName := strings.ToLower(strings.TrimSpace(req.Source))
	if sourceName == "" {
		sourceName = h.DefaultSource
	}
	fetcher, ok := h.Sources[sourceName]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source: %s", req.Source), "")
		return
	}

	log.Printf("[API] session %s: loading %s from %s", s.ID, ticker, sourceName)
	if err := s.Submit(r.Context(), fetcher, ticker); err != nil {
		status, kind, msg := classify(err)
		writeError(w, status, msg, kind)
		return
	}
	h.writeView(w, s, http.StatusOK)
}

// classify maps a Submit error to a status code, an error kind and a user message.
func classify(err error) (int, string, string) {
	if errors.Is(err, session.ErrSuperseded) {
		return http.StatusConflict, "superseded", "A newer request replaced this one."
	}
	var se *ingest.SourceError
	if errors.As(err, &se) {
		status := http.StatusBadGateway
		switch se.Kind {
		case ingest.KindMissingCredential:
			status = http.StatusServiceUnavailable
		case ingest.KindRateLimited:
			status = http.StatusTooManyRequests
		case ingest.KindNotFound:
			status = http.StatusNotFound
		}
		return status, string(se.Kind), se.Message()
	}
	return http.StatusBadGateway, "", err.Error()
}

// HandleImport loads statements from a request body shaped like
// {"income": {...}, "balance": {...}, "cashflow": {...}}. Hand-edited input
// (comments, trailing commas, unquoted keys) is accepted.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if h.cors(w, r) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	var raw map[string]map[string]any
	if err := utils.DecodeRecords(string(body), &raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	byType := make(map[schema.StatementType]map[string]any, len(raw))
	for name, fields := range raw {
		t, err := schema.ParseType(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		byType[t] = fields
	}

	label := r.URL.Query().Get("label")
	if err := s.Import(label, ingest.NormalizeSet(ingest.SourceInternal, byType)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	h.writeView(w, s, http.StatusOK)
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if h.cors(w, r) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	t, err := schema.ParseType(mux.Vars(r)["statement"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), "")
		return
	}
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if err := s.Edit(t, req.Key, *req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	h.writeView(w, s, http.StatusOK)
}

type sourceInfo struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

func (h *Handler) HandleSources(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)
	names := make([]string, 0, len(h.Sources))
	for name := range h.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]sourceInfo, 0, len(names))
	for _, name := range names {
		out = append(out, sourceInfo{Name: name, Default: name == h.DefaultSource})
	}
	writeJSON(w, http.StatusOK, out)
}

type schemaResponse struct {
	Statements []*schema.Statement `json:"statements"`
	Labels     map[string]string   `json:"labels"`
}

func (h *Handler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)
	resp := schemaResponse{Labels: map[string]string{}}
	for _, t := range schema.AllTypes() {
		st := schema.MustGet(t)
		resp.Statements = append(resp.Statements, st)
		for _, k := range st.Keys() {
			resp.Labels[k] = schema.Label(k)
		}
		for _, total := range st.Totals {
			resp.Labels[total.Key] = schema.Label(total.Key)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleRatioGuide(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)
	writeJSON(w, http.StatusOK, calc.Catalogue())
}

type explainResponse struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Short  string `json:"short"`
	Detail string `json:"detail_html,omitempty"`
}

func (h *Handler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)
	vars := mux.Vars(r)
	t, err := schema.ParseType(vars["statement"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), "")
		return
	}
	e, err := schema.Explain(t, vars["key"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), "")
		return
	}
	detail, err := utils.RenderMarkdown(e.Detail)
	if err != nil {
		log.Printf("[API] failed to render explanation %s.%s: %v", t, vars["key"], err)
	}
	writeJSON(w, http.StatusOK, explainResponse{
		Key:    vars["key"],
		Label:  schema.Label(vars["key"]),
		Short:  e.Short,
		Detail: detail,
	})
}
