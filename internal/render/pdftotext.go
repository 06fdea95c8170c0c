package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// PdfToText renders pages using the pdftotext CLI tool. Output is text
// only; no page imagery or dimensions are available from this provider.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText renderer. If binPath is empty,
// "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// RenderPages runs pdftotext -layout and splits stdout on the form feeds
// pdftotext emits between pages.
func (p *PdfToText) RenderPages(ctx context.Context, path string) ([]Page, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "render: pdftotext failed for %s: %s", path, stderr.String())
	}

	return splitFormFeedPages(stdout.String()), nil
}

// splitFormFeedPages converts raw pdftotext output into numbered pages.
// pdftotext terminates every page with \f, so a trailing empty segment is
// dropped; interior blank pages are kept to preserve numbering.
func splitFormFeedPages(raw string) []Page {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	segments := strings.Split(raw, "\f")
	if len(segments) > 1 && strings.TrimSpace(segments[len(segments)-1]) == "" {
		segments = segments[:len(segments)-1]
	}

	pages := make([]Page, len(segments))
	for i, seg := range segments {
		pages[i] = Page{
			Number: i + 1,
			Text:   seg,
		}
	}
	return pages
}
