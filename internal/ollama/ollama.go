package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
)

const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "mistral-small3.2:24b"
)

// Ollama transcribes the zone with a local vision model.
type Ollama struct {
	URL    string
	Model  string
	Client *http.Client
}

// New returns an Ollama engine, filling in defaults for empty values.
func New(url, model string) *Ollama {
	if url == "" {
		url = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Ollama{URL: strings.TrimRight(url, "/"), Model: model, Client: &http.Client{}}
}

func (o *Ollama) Name() string { return "ollama" }

// Recognize sends the image to /api/generate with zero temperature.
func (o *Ollama) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	requestBody, err := json.Marshal(map[string]any{
		"model":  o.Model,
		"prompt": ocr.TranscriptionPrompt,
		"images": []string{base64.StdEncoding.EncodeToString(in.Image)},
		"stream": false,
		"options": map[string]any{
			"temperature": 0.0,
		},
	})
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.URL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return ocr.Result{}, errs.Tool("ollama", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return ocr.Result{}, errs.Tool("ollama", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body)))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return ocr.Result{}, errs.Tool("ollama", fmt.Errorf("failed to decode response body: %w", err))
	}
	if strings.TrimSpace(response.Response) == "" {
		return ocr.Result{}, errs.Tool("ollama", errs.ErrNoOutput)
	}

	slog.Debug("Extracted OCR text", "engine", "ollama", "model", o.Model, "length", len(response.Response))
	return ocr.Result{Text: response.Response, Engine: o.Name()}, nil
}
