package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/ternarybob/docmark/internal/models"
)

// reflowText lays plain text out on fixed-size pages with a single monospace
// font and greedy word wrap. It returns the PDF and the lines it drew as
// TopLeft fragments in fpdf's page space.
func (e *Engine) reflowText(content, title string) ([]byte, []models.Fragment, error) {
	o := e.opts

	pdf := fpdf.New("P", "pt", o.PageSize, "")
	pdf.SetMargins(o.Margin, o.Margin, o.Margin)
	pdf.SetAutoPageBreak(false, o.Margin)
	pdf.SetCreator("docmark", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetFont(o.FontFamily, "", o.FontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	maxWidth := pageWidth - 2*o.Margin
	top := o.Margin + o.FontSize // first baseline
	bottom := pageHeight - o.Margin

	var layout []models.Fragment
	y := top
	page := 0

	flush := func(line string) {
		if y > bottom {
			pdf.AddPage()
			page++
			y = top
		}
		encoded := tr(line)
		pdf.Text(o.Margin, y, encoded)
		layout = append(layout, models.Fragment{
			Text:      line,
			PageIndex: uint(page),
			X:         o.Margin,
			Y:         y - o.FontSize,
			Width:     pdf.GetStringWidth(encoded),
			Height:    o.FontSize,
			Origin:    models.OriginTopLeft,
		})
		y += o.LineHeight
	}

	for _, sourceLine := range strings.Split(content, "\n") {
		current := ""
		for _, word := range strings.Fields(sourceLine) {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if current != "" && pdf.GetStringWidth(tr(candidate)) > maxWidth {
				flush(current)
				current = word
				continue
			}
			current = candidate
		}
		if current != "" {
			flush(current)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, fmt.Errorf("render reflowed text: %w", err)
	}
	return buf.Bytes(), layout, nil
}
