package pdf

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/docmark/internal/models"
)

func TestNormalize_PDFPassesThroughUnchanged(t *testing.T) {
	engine := newTestEngine(t)
	data := newPDF(t, []string{"Hello world"})

	out, err := engine.Normalize(context.Background(), models.SourceDocument{Filename: "a.pdf", Kind: models.KindPDF, Data: data})
	require.NoError(t, err)

	assert.Equal(t, data, out.Data)
	assert.False(t, out.Reflowed)
	assert.Empty(t, out.Layout)
}

func TestNormalize_UnsupportedKind(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Normalize(context.Background(), models.SourceDocument{Filename: "a.rtf", Kind: "rtf", Data: []byte("{\\rtf1}")})
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestNormalize_CancelledContext(t *testing.T) {
	engine := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Normalize(ctx, models.SourceDocument{Filename: "a.txt", Kind: models.KindText, Data: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalize_TextIsReflowed(t *testing.T) {
	engine := newTestEngine(t)
	opts := engine.Options()

	words := make([]string, 100)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	content := strings.Join(words, " ")

	out, err := engine.Normalize(context.Background(), models.SourceDocument{Filename: "essay.txt", Kind: models.KindText, Data: []byte(content)})
	require.NoError(t, err)
	require.True(t, out.Reflowed)
	require.NotEmpty(t, out.Layout)

	assert.Equal(t, 100, models.CountWords(models.JoinText(out.Layout)))
	assert.Greater(t, len(out.Layout), 1, "100 words do not fit on one line")

	first := out.Layout[0]
	assert.Equal(t, models.OriginTopLeft, first.Origin)
	assert.Equal(t, uint(0), first.PageIndex)
	assert.InDelta(t, opts.Margin, first.X, 1e-9)
	assert.InDelta(t, opts.Margin, first.Y, 1e-9)
	assert.InDelta(t, opts.FontSize, first.Height, 1e-9)

	for _, f := range out.Layout {
		assert.LessOrEqual(t, f.Width, 595.28-2*opts.Margin+1e-6, "line %q overflows the text area", f.Text)
	}

	info, err := engine.Inspect(context.Background(), out.Data)
	require.NoError(t, err)
	assert.Equal(t, 1, info.PageCount)
}

func TestNormalize_ReflowLayoutMatchesExtractedLayout(t *testing.T) {
	engine := newTestEngine(t)

	out, err := engine.Normalize(context.Background(), models.SourceDocument{
		Filename: "two.txt",
		Kind:     models.KindText,
		Data:     []byte("first line\nsecond line"),
	})
	require.NoError(t, err)
	require.Len(t, out.Layout, 2)

	extracted, err := engine.ExtractLayout(context.Background(), out.Data)
	require.NoError(t, err)
	require.Len(t, extracted, 2)

	info, err := engine.Inspect(context.Background(), out.Data)
	require.NoError(t, err)
	pageHeight := info.Pages[0].Height

	for i := range extracted {
		assert.Equal(t, out.Layout[i].Text, extracted[i].Text)
		assert.InDelta(t, extracted[i].X, out.Layout[i].X, 0.01)
		assert.InDelta(t, extracted[i].Y, out.Layout[i].BottomLeftY(pageHeight), 0.01,
			"flipped reflow position must land on the drawn baseline")
	}
}

func TestNormalize_LongTextAddsPagesWithoutTrailingBlank(t *testing.T) {
	engine := newTestEngine(t)

	lines := make([]string, 200)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}

	out, err := engine.Normalize(context.Background(), models.SourceDocument{
		Filename: "long.txt",
		Kind:     models.KindText,
		Data:     []byte(strings.Join(lines, "\n")),
	})
	require.NoError(t, err)
	require.Len(t, out.Layout, 200)

	lastPage := out.Layout[len(out.Layout)-1].PageIndex
	assert.Greater(t, lastPage, uint(0))

	info, err := engine.Inspect(context.Background(), out.Data)
	require.NoError(t, err)
	assert.Equal(t, int(lastPage)+1, info.PageCount)
}

func TestNormalize_Docx(t *testing.T) {
	engine := newTestEngine(t)
	data := newDocx(t, "The quick brown fox", "jumps over the lazy dog")

	out, err := engine.Normalize(context.Background(), models.SourceDocument{Filename: "fox.docx", Kind: models.KindDOCX, Data: data})
	require.NoError(t, err)
	require.True(t, out.Reflowed)
	require.Len(t, out.Layout, 2)

	assert.Equal(t, "The quick brown fox", out.Layout[0].Text)
	assert.Equal(t, "jumps over the lazy dog", out.Layout[1].Text)
}

func TestNormalize_MalformedWordDocuments(t *testing.T) {
	engine := newTestEngine(t)

	for _, kind := range []models.MediaKind{models.KindDOCX, models.KindDOC} {
		t.Run(string(kind), func(t *testing.T) {
			_, err := engine.Normalize(context.Background(), models.SourceDocument{
				Filename: "broken." + string(kind),
				Kind:     kind,
				Data:     []byte("this is not a word document"),
			})
			assert.ErrorIs(t, err, models.ErrMalformedDocument)
		})
	}
}

func TestNormalize_Markdown(t *testing.T) {
	engine := newTestEngine(t)
	source := "# Title\n\nSome *emphasised* text\nacross lines.\n\n- one\n- two\n"

	out, err := engine.Normalize(context.Background(), models.SourceDocument{Filename: "notes.md", Kind: models.KindMarkdown, Data: []byte(source)})
	require.NoError(t, err)

	text := models.JoinText(out.Layout)
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Some emphasised text across lines.")
	assert.NotContains(t, text, "*")
	assert.NotContains(t, text, "#")
}
