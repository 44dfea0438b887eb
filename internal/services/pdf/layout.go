package pdf

import (
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/ternarybob/docmark/internal/models"
)

// ExtractLayout returns the text fragments of every page in PDF user space.
// The configured backend decides how text operations are read.
func (e *Engine) ExtractLayout(ctx context.Context, data []byte) ([]models.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		fragments []models.Fragment
		err       error
	)
	switch e.opts.LayoutBackend {
	case BackendGlyph:
		fragments, err = extractGlyphRuns(ctx, data)
	case BackendPdfcpu, "":
		fragments, err = extractContentStreams(ctx, data)
	default:
		return nil, fmt.Errorf("unknown layout backend %q", e.opts.LayoutBackend)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("backend", e.opts.LayoutBackend).
		Int("fragments", len(fragments)).
		Msg("Extracted page layout")

	return fragments, nil
}

// extractContentStreams interprets each page's content stream as read by pdfcpu
func extractContentStreams(ctx context.Context, data []byte) ([]models.Fragment, error) {
	pctx, err := readContext(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedDocument, err)
	}

	var fragments []models.Fragment
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", models.ErrMalformedDocument, pageNr, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", models.ErrMalformedDocument, pageNr, err)
		}

		pageFragments, err := interpretPage(content, uint(pageNr-1), pageFonts(pctx, pageNr))
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", models.ErrMalformedDocument, pageNr, err)
		}
		fragments = append(fragments, pageFragments...)
	}
	return fragments, nil
}
