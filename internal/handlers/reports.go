package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandleReports lists stored report IDs, newest first.
func (h *Handler) HandleReports(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"reports": h.reports.IDs()})
}

// HandleReport returns one stored report.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reports.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, "Report not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// HandleDeleteReport drops a stored report.
func (h *Handler) HandleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if !h.reports.Delete(chi.URLParam(r, "id")) {
		h.writeError(w, "Report not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
