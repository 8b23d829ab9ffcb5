package statements

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"fin_statements/pkg/core/export"
	"fin_statements/pkg/core/metrics"
	"fin_statements/pkg/core/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, "xlsx", xlsxContentType, export.BuildXLSX)
}

func (h *Handler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, "pdf", "application/pdf", export.BuildPDF)
}

func (h *Handler) serveExport(w http.ResponseWriter, r *http.Request, format, contentType string, build func(*session.View) ([]byte, error)) {
	h.cors(w, r)
	result := metrics.ResultSuccess
	defer func() {
		metrics.IncExport(format, result)
	}()

	s, ok := h.session(w, r)
	if !ok {
		result = metrics.ResultError
		return
	}
	view, err := s.View()
	if err != nil {
		result = metrics.ResultError
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	data, err := build(view)
	if err != nil {
		result = metrics.ResultError
		log.Printf("[API] session %s: %s export failed: %v", s.ID, format, err)
		writeError(w, http.StatusInternalServerError, "export failed", "")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(view, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func exportName(view *session.View, format string) string {
	name := "statements"
	if view.Ticker != "" {
		name = strings.ToLower(view.Ticker) + "-statements"
	}
	return name + "." + format
}
