package pdf

import (
	"context"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/docmark/internal/models"
)

const a4Height = 841.89

func TestExtractLayout_ContentStreams(t *testing.T) {
	engine := newTestEngine(t)
	data := newPDF(t, []string{"Hello world", "Second line"}, []string{"Next page"})

	fragments, err := engine.ExtractLayout(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, fragments, 3)

	first := fragments[0]
	assert.Equal(t, "Hello world", first.Text)
	assert.Equal(t, uint(0), first.PageIndex)
	assert.Equal(t, models.OriginBottomLeft, first.Origin)
	assert.InDelta(t, fixtureX, first.X, 0.01)
	assert.InDelta(t, a4Height-fixtureTop, first.Y, 0.01)
	assert.InDelta(t, fixtureFontSize, first.Height, 0.01)
	assert.InDelta(t, 11*fixtureFontSize*estimatedGlyphAdvance, first.Width, 0.01)

	assert.InDelta(t, a4Height-fixtureTop-fixtureStep, fragments[1].Y, 0.01)

	assert.Equal(t, "Next page", fragments[2].Text)
	assert.Equal(t, uint(1), fragments[2].PageIndex)
}

func TestExtractLayout_GlyphBackend(t *testing.T) {
	engine := newGlyphEngine(t)
	data := newPDF(t, []string{"Hello world"})

	fragments, err := engine.ExtractLayout(context.Background(), data)
	require.NoError(t, err)
	require.NotEmpty(t, fragments)

	assert.Contains(t, models.JoinText(fragments), "Hello")
	assert.InDelta(t, fixtureX, fragments[0].X, 1)
	assert.InDelta(t, a4Height-fixtureTop, fragments[0].Y, 1)
	assert.Greater(t, fragments[0].Width, 0.0)
}

func TestExtractLayout_TwoByteFont(t *testing.T) {
	lines := []string{"The quick brown fox jumps over the lazy dog", "Grüße aus Köln"}
	data := newUTF8PDF(t, lines...)

	fragments, err := newTestEngine(t).ExtractLayout(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	for i, f := range fragments {
		assert.Equal(t, lines[i], f.Text)
		assert.NotContains(t, f.Text, "\x00")
		assert.InDelta(t, fixtureX, f.X, 0.01)
		assert.InDelta(t, a4Height-fixtureTop-float64(i*fixtureStep), f.Y, 0.01)
		assert.InDelta(t, float64(len([]rune(lines[i])))*fixtureFontSize*estimatedGlyphAdvance, f.Width, 0.5)
		assert.LessOrEqual(t, f.X+f.Width, 595.28)
	}

	glyphFragments, err := newGlyphEngine(t).ExtractLayout(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, models.CountWords(models.JoinText(glyphFragments)), models.CountWords(models.JoinText(fragments)))
}

func TestExtractLayout_Malformed(t *testing.T) {
	for _, engine := range []*Engine{newTestEngine(t), newGlyphEngine(t)} {
		t.Run(engine.Options().LayoutBackend, func(t *testing.T) {
			_, err := engine.ExtractLayout(context.Background(), []byte("%PDF-1.4 garbage"))
			assert.ErrorIs(t, err, models.ErrMalformedDocument)
		})
	}
}

func TestExtractLayout_UnknownBackend(t *testing.T) {
	opts := DefaultOptions()
	opts.LayoutBackend = "ocr"
	engine := NewEngine(opts, newTestEngine(t).logger)

	_, err := engine.ExtractLayout(context.Background(), newPDF(t, []string{"x"}))
	assert.Error(t, err)
}

func TestGroupGlyphs_SplitsOnBaselineAndGap(t *testing.T) {
	glyphs := []lpdf.Text{
		{Font: "F1", FontSize: 10, X: 10, Y: 100, W: 6, S: "a"},
		{Font: "F1", FontSize: 10, X: 16, Y: 100, W: 6, S: "b"},
		{Font: "F1", FontSize: 10, X: 200, Y: 100, W: 6, S: "c"},
		{Font: "F1", FontSize: 10, X: 10, Y: 80, W: 6, S: "d"},
	}

	fragments := groupGlyphs(glyphs, 2)
	require.Len(t, fragments, 3)

	assert.Equal(t, "ab", fragments[0].Text)
	assert.InDelta(t, 12, fragments[0].Width, 1e-9)
	assert.Equal(t, uint(2), fragments[0].PageIndex)
	assert.Equal(t, "c", fragments[1].Text)
	assert.Equal(t, "d", fragments[2].Text)
	assert.InDelta(t, 80, fragments[2].Y, 1e-9)
}
