// Package render turns lease documents into per-page payloads for the
// pipeline. Rendering quality is out of scope here: implementations hand
// back whatever text or imagery the underlying tool produces.
package render

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lease-abstract-cli/internal/config"
)

// Page is one rendered document page.
type Page struct {
	Number    int    `json:"page_number"` // 1-based
	Text      string `json:"text,omitempty"`
	ImageData string `json:"image_data,omitempty"` // base64, when the provider renders images
	MediaType string `json:"media_type,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Renderer produces per-page payloads from a document on disk.
type Renderer interface {
	RenderPages(ctx context.Context, path string) ([]Page, error)
}

// NewRenderer creates a Renderer based on config.
func NewRenderer(cfg config.RenderConfig) (Renderer, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("render: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("render: unknown provider %q", cfg.Provider)
	}
}
