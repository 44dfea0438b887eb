package pdf

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	fixtureFontSize = 12
	fixtureX        = 72
	fixtureTop      = 100
	fixtureStep     = 20
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultOptions(), arbor.NewLogger())
}

func newGlyphEngine(t *testing.T) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.LayoutBackend = BackendGlyph
	return NewEngine(opts, arbor.NewLogger())
}

// newPDF renders one A4 page per entry, drawing each line in Courier 12 at
// x=72 with baselines 100, 120, ... measured from the top of the page.
func newPDF(t *testing.T, pages ...[]string) []byte {
	t.Helper()

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetFont("Courier", "", fixtureFontSize)
	for _, lines := range pages {
		doc.AddPage()
		for i, line := range lines {
			doc.Text(fixtureX, float64(fixtureTop+i*fixtureStep), line)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

// newUTF8PDF is newPDF with an embedded TrueType font, which fpdf writes as a
// Type0 font with two-byte codes and a ToUnicode map.
func newUTF8PDF(t *testing.T, lines ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "pt", "A4", "")
	doc.AddUTF8FontFromBytes("GoMono", "", gomono.TTF)
	doc.SetFont("GoMono", "", fixtureFontSize)
	doc.AddPage()
	for i, line := range lines {
		doc.Text(fixtureX, float64(fixtureTop+i*fixtureStep), line)
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

// newDocx builds a minimal Office Open XML package with one paragraph per entry
func newDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
