package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
)

const DefaultModel = "gemini-1.5-flash"

// Gemini transcribes the zone with Google Gemini.
type Gemini struct {
	APIKey string
	Model  string
}

// New returns a Gemini engine.
func New(apiKey, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{APIKey: apiKey, Model: model}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if g.APIKey == "" {
		return ocr.Result{}, errs.Tool("gemini", fmt.Errorf("%w: GEMINI_API_KEY not set", errs.ErrEngineNotInstalled))
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return ocr.Result{}, errs.Tool("gemini", fmt.Errorf("failed to create new gemini client: %w", err))
	}
	defer client.Close()

	model := client.GenerativeModel(g.Model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.ImageData("png", in.Image), genai.Text(ocr.TranscriptionPrompt))
	if err != nil {
		return ocr.Result{}, errs.Tool("gemini", fmt.Errorf("failed to generate content: %w", err))
	}

	text, err := responseText(resp)
	if err != nil {
		return ocr.Result{}, errs.Tool("gemini", err)
	}
	return ocr.Result{Text: text, Engine: g.Name()}, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned from Gemini", errs.ErrNoOutput)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content returned from Gemini", errs.ErrNoOutput)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return b.String(), nil
}
