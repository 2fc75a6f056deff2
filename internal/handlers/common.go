package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/storage"
	"github.com/lehigh-university-libraries/mrzscan/internal/validation"
	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

// MaxUploadBytes caps request bodies.
const MaxUploadBytes = 10 * 1024 * 1024

// Verifier is what the handlers need from verify.Verifier.
type Verifier interface {
	VerifyBytes(ctx context.Context, name string, data []byte, page int) (*verify.Report, error)
	VerifyURL(ctx context.Context, rawURL string, page int) (*verify.Report, error)
	Check(ctx context.Context, text string) (*validation.Result, error)
}

type Handler struct {
	verifier Verifier
	reports  *storage.ReportStore
}

func New(v Verifier, reports *storage.ReportStore) *Handler {
	if reports == nil {
		reports = storage.New(0)
	}
	return &Handler{verifier: v, reports: reports}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// statusFor maps an error kind to the response status used when a report
// is still returned.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindImageDecode:
		return http.StatusBadRequest
	case errs.KindStructuralParse:
		return http.StatusUnprocessableEntity
	case errs.KindExternalTool:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
