package errs

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error", errors.New("boom"), KindUnknown},
		{"io", IO("open", os.ErrNotExist), KindIO},
		{"wrapped tool", fmt.Errorf("ocr failed: %w", Tool("tesseract", ErrEngineNotInstalled)), KindExternalTool},
		{"parse", Parse("detect", ErrUnknownFormat), KindStructuralParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("recognize: %w", Tool("tesseract", ErrLanguageDataMissing))
	if !errors.Is(err, ErrLanguageDataMissing) {
		t.Errorf("Expected ErrLanguageDataMissing in chain: %v", err)
	}
	if errors.Is(err, ErrEngineNotInstalled) {
		t.Errorf("Did not expect ErrEngineNotInstalled in chain")
	}
	if !Is(err, KindExternalTool) {
		t.Errorf("Expected external tool kind")
	}
}

func TestENil(t *testing.T) {
	if E(KindIO, "noop", nil) != nil {
		t.Error("Expected nil for nil error")
	}
}
