package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type checkRequest struct {
	MRZ string `json:"mrz"`
}

// HandleCheck validates MRZ text sent as {"mrz": "..."}.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxUploadBytes)).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.MRZ) == "" {
		h.writeError(w, "mrz is required", http.StatusBadRequest)
		return
	}

	res, err := h.verifier.Check(r.Context(), req.MRZ)
	if err != nil {
		h.writeJSON(w, statusFor(err), res)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
