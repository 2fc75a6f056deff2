// Package ocr defines the contract between the verifier and text
// recognition engines.
package ocr

import (
	"context"
)

// MRZWhitelist is every character that may appear in a machine readable zone.
const MRZWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

// DefaultLanguages is tried in order; the OCR-B model first.
var DefaultLanguages = []string{"ocrb", "eng"}

// Input is one OCR request.
type Input struct {
	// Image is a single channel PNG.
	Image []byte
	// Languages in preference order. Entries may join models with '+'.
	Languages []string
	// Whitelist restricts recognised characters when the engine supports it.
	Whitelist string
}

// Result is the recognised text and the engine's overall confidence.
type Result struct {
	Text string `json:"text" yaml:"text"`
	// Confidence in [0,1]; meaningful only when ConfidenceKnown.
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	ConfidenceKnown bool    `json:"confidence_known" yaml:"confidence_known"`
	Engine          string  `json:"engine" yaml:"engine"`
	Language        string  `json:"language,omitempty" yaml:"language,omitempty"`
}

// Engine recognises text in an image. Missing binaries and missing
// language data surface as errs.KindExternalTool errors wrapping
// errs.ErrEngineNotInstalled or errs.ErrLanguageDataMissing.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

// TranscriptionPrompt asks a vision model for the zone only.
const TranscriptionPrompt = `You are performing OCR on the machine readable zone (MRZ) of an identity document.

The MRZ is the block of two or three lines of monospaced text at the bottom of the page,
made only of the characters A-Z, 0-9 and the filler character "<".

INSTRUCTIONS:
1. Transcribe only the MRZ lines, one per output line, top to bottom
2. Keep every "<" exactly as printed; count them carefully
3. Do not transcribe any other text on the document
4. Do not add commentary, labels, code fences or explanations

Example output:
P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<
L898902C36UTO7408122F1204159ZE184226B<<<<<10`
