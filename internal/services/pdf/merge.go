package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ternarybob/docmark/internal/models"
)

// CopyPages writes every cover page, then every body page, into a new document
func (e *Engine) CopyPages(ctx context.Context, cover, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, part := range []struct {
		name string
		data []byte
	}{{"cover", cover}, {"body", body}} {
		if _, err := readContext(part.data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrMalformedDocument, part.name, err)
		}
	}

	var buf bytes.Buffer
	sources := []io.ReadSeeker{bytes.NewReader(cover), bytes.NewReader(body)}
	if err := api.MergeRaw(sources, &buf, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: merge: %v", models.ErrMalformedDocument, err)
	}

	e.logger.Debug().
		Int("cover_bytes", len(cover)).
		Int("body_bytes", len(body)).
		Int("merged_bytes", buf.Len()).
		Msg("Merged cover and body")

	return buf.Bytes(), nil
}
