package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o"
)

// OpenAI transcribes the zone with a chat completions vision model.
type OpenAI struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

// New returns an OpenAI engine. An empty key is reported on first use.
func New(apiKey, baseURL, model string) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{APIKey: apiKey, BaseURL: strings.TrimRight(baseURL, "/"), Model: model, Client: &http.Client{}}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if o.APIKey == "" {
		return ocr.Result{}, errs.Tool("openai", fmt.Errorf("%w: OPENAI_API_KEY not set", errs.ErrEngineNotInstalled))
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": o.Model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "text",
						"text": ocr.TranscriptionPrompt,
					},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(in.Image),
						},
					},
				},
			},
		},
		"max_tokens":  300,
		"temperature": 0.0,
	})
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.Client.Do(req)
	if err != nil {
		return ocr.Result{}, errs.Tool("openai", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return ocr.Result{}, errs.Tool("openai", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body)))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return ocr.Result{}, errs.Tool("openai", fmt.Errorf("failed to decode response body: %w", err))
	}

	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return ocr.Result{}, errs.Tool("openai", errs.ErrNoOutput)
	}

	return ocr.Result{Text: response.Choices[0].Message.Content, Engine: o.Name()}, nil
}
