package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/ternarybob/docmark/internal/models"
)

// baselineTolerance is how far two glyph baselines may differ within one run
const baselineTolerance = 0.5

// extractGlyphRuns reads positioned glyphs with ledongthuc/pdf and groups
// consecutive glyphs sharing a baseline and font into one fragment. Glyph
// advances are known here, so fragments carry an explicit width.
func extractGlyphRuns(ctx context.Context, data []byte) (fragments []models.Fragment, err error) {
	// ledongthuc/pdf reports malformed input by panicking
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
			err = fmt.Errorf("%w: %v", models.ErrMalformedDocument, r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedDocument, err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fragments = append(fragments, groupGlyphs(page.Content().Text, uint(i-1))...)
	}
	return fragments, nil
}

type glyphRun struct {
	font     string
	fontSize float64
	x, y     float64
	end      float64
	text     strings.Builder
}

func (r *glyphRun) accepts(g lpdf.Text) bool {
	if g.Font != r.font || g.FontSize != r.fontSize {
		return false
	}
	if math.Abs(g.Y-r.y) > baselineTolerance {
		return false
	}
	// a jump backwards or a gap wider than a glyph starts a new run
	return g.X >= r.x && g.X <= r.end+g.FontSize
}

func groupGlyphs(glyphs []lpdf.Text, page uint) []models.Fragment {
	var out []models.Fragment
	var run *glyphRun

	closeRun := func() {
		if run == nil {
			return
		}
		if f, ok := newFragment(run.text.String(), page, run.x, run.y, run.fontSize, run.fontSize, run.end-run.x); ok {
			out = append(out, f)
		}
		run = nil
	}

	for _, g := range glyphs {
		if run == nil || !run.accepts(g) {
			closeRun()
			run = &glyphRun{font: g.Font, fontSize: g.FontSize, x: g.X, y: g.Y, end: g.X}
		}
		run.text.WriteString(g.S)
		run.end = math.Max(run.end, g.X+g.W)
	}
	closeRun()
	return out
}
