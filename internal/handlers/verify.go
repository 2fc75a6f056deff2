package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

// HandleVerify accepts a multipart "file" field, a raw request body, or
// JSON {"image_url": "..."} and returns the verification report. The
// report is kept for later retrieval under the X-Report-ID header value.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	page := 0
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			h.writeError(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		page = n
	}

	var (
		report *verify.Report
		err    error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var request struct {
			ImageURL string `json:"image_url"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if request.ImageURL == "" {
			h.writeError(w, "image_url is required", http.StatusBadRequest)
			return
		}
		report, err = h.verifier.VerifyURL(r.Context(), request.ImageURL, page)
	} else {
		data, name, readErr := readUpload(w, r)
		if readErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(readErr, &tooLarge) {
				h.writeError(w, "File too large (max 10MB)", http.StatusRequestEntityTooLarge)
				return
			}
			h.writeError(w, "Failed to read file: "+readErr.Error(), http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			h.writeError(w, "empty upload", http.StatusBadRequest)
			return
		}
		if len(data) > MaxUploadBytes {
			h.writeError(w, "File too large (max 10MB)", http.StatusRequestEntityTooLarge)
			return
		}
		report, err = h.verifier.VerifyBytes(r.Context(), name, data, page)
	}

	if report == nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	id := uuid.NewString()
	h.reports.Set(id, report)
	w.Header().Set("X-Report-ID", id)
	w.Header().Set("Location", "/api/reports/"+id)

	if err != nil {
		h.writeJSON(w, statusFor(err), report)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, err := io.ReadAll(io.LimitReader(r.Body, MaxUploadBytes+1))
		return data, "upload", err
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1024*1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return nil, "", err
	}
	if header.Filename == "" {
		return data, "upload", nil
	}
	return data, header.Filename, nil
}
