package pdf

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/ternarybob/docmark/internal/models"
)

// highlightGState is the ExtGState resource name carrying the fill opacity
const highlightGState = "GSdmHL"

// DrawHighlights paints a translucent rectangle under each fragment's box.
// Fragments on pages that do not exist are skipped. On any failure the
// original bytes come back with StatusUnchanged and the reason.
func (e *Engine) DrawHighlights(ctx context.Context, data []byte, fragments []models.Fragment) (result models.HighlightResult) {
	if len(fragments) == 0 {
		return models.Unchanged(data, "empty selection")
	}
	if err := ctx.Err(); err != nil {
		return models.Unchanged(data, err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Str("panic", fmt.Sprintf("%v", r)).Msg("Highlighting panicked, keeping original document")
			result = models.Unchanged(data, fmt.Sprintf("highlight panic: %v", r))
		}
	}()

	out, drawn, skipped, err := e.overlay(data, fragments)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Highlighting failed, keeping original document")
		return models.Unchanged(data, err.Error())
	}
	if drawn == 0 {
		return models.Unchanged(data, fmt.Sprintf("no fragment falls on an existing page (%d skipped)", skipped))
	}

	e.logger.Debug().
		Int("drawn", drawn).
		Int("skipped", skipped).
		Int("pdf_bytes", len(out)).
		Msg("Applied highlights")

	return models.Highlighted(out, drawn, skipped)
}

func (e *Engine) overlay(data []byte, fragments []models.Fragment) ([]byte, int, int, error) {
	pctx, err := readContext(data)
	if err != nil {
		return nil, 0, 0, err
	}

	byPage := make(map[int][]models.Fragment)
	skipped := 0
	for _, f := range fragments {
		if int(f.PageIndex) >= pctx.PageCount {
			skipped++
			continue
		}
		byPage[int(f.PageIndex)+1] = append(byPage[int(f.PageIndex)+1], f)
	}

	pages := make([]int, 0, len(byPage))
	for pageNr := range byPage {
		pages = append(pages, pageNr)
	}
	sort.Ints(pages)

	drawn := 0
	for _, pageNr := range pages {
		d, _, inherited, err := pctx.PageDict(pageNr, true)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("page %d: %w", pageNr, err)
		}
		if d == nil || inherited == nil || inherited.MediaBox == nil {
			return nil, 0, 0, fmt.Errorf("page %d: missing page dictionary or media box", pageNr)
		}

		if err := e.addHighlightState(pctx, d); err != nil {
			return nil, 0, 0, fmt.Errorf("page %d: %w", pageNr, err)
		}

		ops := e.overlayOps(byPage[pageNr], inherited.MediaBox)
		if err := wrapContents(pctx, d, ops); err != nil {
			return nil, 0, 0, fmt.Errorf("page %d: %w", pageNr, err)
		}
		drawn += len(byPage[pageNr])
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pctx, &buf); err != nil {
		return nil, 0, 0, fmt.Errorf("write highlighted document: %w", err)
	}
	return buf.Bytes(), drawn, skipped, nil
}

// addHighlightState registers the translucent ExtGState in the page resources
func (e *Engine) addHighlightState(pctx *model.Context, page types.Dict) error {
	res, err := pctx.DereferenceDict(page["Resources"])
	if err != nil {
		return fmt.Errorf("resources: %w", err)
	}
	if res == nil {
		res = types.Dict{}
		page["Resources"] = res
	}

	states, err := pctx.DereferenceDict(res["ExtGState"])
	if err != nil {
		return fmt.Errorf("ExtGState: %w", err)
	}
	if states == nil {
		states = types.Dict{}
		res["ExtGState"] = states
	}

	states[highlightGState] = types.Dict{
		"Type": types.Name("ExtGState"),
		"ca":   types.Float(e.opts.Opacity),
		"CA":   types.Float(e.opts.Opacity),
	}
	return nil
}

// highlightRect returns the rectangle drawn for f in PDF user space.
// TopLeft fragments are measured from the media box's top-left corner and are
// flipped onto the bottom-left axis.
func highlightRect(f models.Fragment, box *types.Rectangle, pad float64) (x, y, w, h float64) {
	x, y = f.X, f.Y
	if f.Origin == models.OriginTopLeft {
		x = box.LL.X + f.X
		y = box.LL.Y + f.BottomLeftY(box.Height())
	}
	return x - pad, y - pad, f.Width + 2*pad, f.Height + 2*pad
}

func (e *Engine) overlayOps(fragments []models.Fragment, box *types.Rectangle) []byte {
	var sb strings.Builder
	c := e.opts.HighlightColor
	// Q closes the q prepended before the page's own content
	fmt.Fprintf(&sb, "Q q /%s gs %s %s %s rg\n", highlightGState, num(c[0]), num(c[1]), num(c[2]))
	for _, f := range fragments {
		x, y, w, h := highlightRect(f, box, e.opts.Padding)
		fmt.Fprintf(&sb, "%s %s %s %s re f\n", num(x), num(y), num(w), num(h))
	}
	sb.WriteString("Q\n")
	return []byte(sb.String())
}

// wrapContents isolates the existing content in q/Q and appends the overlay
func wrapContents(pctx *model.Context, page types.Dict, overlay []byte) error {
	open, err := newContentStream(pctx, []byte("q\n"))
	if err != nil {
		return err
	}
	over, err := newContentStream(pctx, overlay)
	if err != nil {
		return err
	}

	contents := types.Array{*open}
	if obj, found := page.Find("Contents"); found && obj != nil {
		resolved, err := pctx.Dereference(obj)
		if err != nil {
			return fmt.Errorf("contents: %w", err)
		}
		if arr, ok := resolved.(types.Array); ok {
			contents = append(contents, arr...)
		} else {
			contents = append(contents, obj)
		}
	}
	contents = append(contents, *over)
	page["Contents"] = contents
	return nil
}

func newContentStream(pctx *model.Context, content []byte) (*types.IndirectRef, error) {
	sd, err := pctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, fmt.Errorf("new content stream: %w", err)
	}
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("encode content stream: %w", err)
	}
	return pctx.IndRefForNewObject(*sd)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
