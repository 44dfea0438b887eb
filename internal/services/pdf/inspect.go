package pdf

import (
	"context"
	"fmt"

	"github.com/ternarybob/docmark/internal/models"
)

// Inspect reports page count, page sizes and file size
func (e *Engine) Inspect(ctx context.Context, data []byte) (*models.DocumentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := readContext(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedDocument, err)
	}

	dims, err := pctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("%w: page dimensions: %v", models.ErrMalformedDocument, err)
	}

	info := &models.DocumentInfo{
		PageCount:   pctx.PageCount,
		Pages:       make([]models.PageSize, len(dims)),
		FileSize:    int64(len(data)),
		IsEncrypted: pctx.Encrypt != nil,
	}
	for i, d := range dims {
		info.Pages[i] = models.PageSize{Width: d.Width, Height: d.Height}
	}
	return info, nil
}
