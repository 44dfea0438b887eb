package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/docmark/internal/models"
)

// Normalize converts the uploaded document to PDF.
// PDF input is passed through untouched; other kinds have their text
// extracted and re-flowed onto fresh pages.
func (e *Engine) Normalize(ctx context.Context, doc models.SourceDocument) (*models.NormalizedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if doc.Kind == models.KindPDF {
		return &models.NormalizedDocument{Data: doc.Data}, nil
	}

	var (
		content string
		err     error
	)
	switch doc.Kind {
	case models.KindDOCX:
		content, err = extractDocxText(doc.Data)
	case models.KindDOC:
		content, err = extractDocText(doc.Data)
	case models.KindMarkdown:
		content = extractMarkdownText(doc.Data)
	case models.KindText:
		content = strings.ToValidUTF8(string(doc.Data), "")
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, doc.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrMalformedDocument, doc.Kind, err)
	}

	data, layout, err := e.reflowText(content, doc.BaseName())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedDocument, err)
	}

	e.logger.Debug().
		Str("kind", string(doc.Kind)).
		Int("text_len", len(content)).
		Int("lines", len(layout)).
		Int("pdf_bytes", len(data)).
		Msg("Re-flowed document text into PDF")

	return &models.NormalizedDocument{Data: data, Reflowed: true, Layout: layout}, nil
}
