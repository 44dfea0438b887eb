// -----------------------------------------------------------------------
// Document Engine - capability interfaces over the PDF libraries
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/docmark/internal/models"
)

// DocumentNormalizer converts an uploaded document into PDF bytes.
// PDF input is returned byte-identical; word-processor input is re-flowed.
type DocumentNormalizer interface {
	Normalize(ctx context.Context, doc models.SourceDocument) (*models.NormalizedDocument, error)
}

// LayoutExtractor yields positioned text fragments in PDF user space
// (bottom-left origin), ordered by page then draw order.
// Returns models.ErrMalformedDocument when the bytes cannot be parsed.
type LayoutExtractor interface {
	ExtractLayout(ctx context.Context, data []byte) ([]models.Fragment, error)
}

// HighlightCompositor draws translucent rectangles over the given fragments.
// It never fails: any problem yields an Unchanged result carrying the input bytes.
type HighlightCompositor interface {
	DrawHighlights(ctx context.Context, data []byte, fragments []models.Fragment) models.HighlightResult
}

// DocumentMerger writes all cover pages followed by all body pages into a new document
type DocumentMerger interface {
	CopyPages(ctx context.Context, cover, body []byte) ([]byte, error)
}

// DocumentInspector reports the page structure of a PDF
type DocumentInspector interface {
	Inspect(ctx context.Context, data []byte) (*models.DocumentInfo, error)
}

// DocumentEngine is the full capability set the assembly pipeline depends on
type DocumentEngine interface {
	DocumentNormalizer
	LayoutExtractor
	HighlightCompositor
	DocumentMerger
	DocumentInspector
}
