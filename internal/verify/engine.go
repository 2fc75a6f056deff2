package verify

import (
	"fmt"

	"github.com/lehigh-university-libraries/mrzscan/internal/config"
	"github.com/lehigh-university-libraries/mrzscan/internal/gemini"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
	"github.com/lehigh-university-libraries/mrzscan/internal/ollama"
	"github.com/lehigh-university-libraries/mrzscan/internal/openai"
	"github.com/lehigh-university-libraries/mrzscan/internal/tesseract"
)

// NewEngine builds the OCR engine named by cfg.Engine.
func NewEngine(cfg config.Config) (ocr.Engine, error) {
	switch cfg.Engine {
	case "", "tesseract":
		return tesseract.NewCLI(cfg.TesseractPath, cfg.TessdataPrefix), nil
	case "gosseract":
		return tesseract.NewGosseract(cfg.TessdataPrefix), nil
	case "gemini":
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaModel), nil
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.Engine)
	}
}
