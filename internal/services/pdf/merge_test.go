package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/docmark/internal/models"
)

func TestCopyPages(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	cover := newPDF(t, []string{"Cover one"}, []string{"Cover two"})
	body := newPDF(t, []string{"Body text"})

	merged, err := engine.CopyPages(ctx, cover, body)
	require.NoError(t, err)

	info, err := engine.Inspect(ctx, merged)
	require.NoError(t, err)
	assert.Equal(t, 3, info.PageCount)

	fragments, err := engine.ExtractLayout(ctx, merged)
	require.NoError(t, err)
	require.Len(t, fragments, 3)
	assert.Equal(t, "Cover one", fragments[0].Text)
	assert.Equal(t, "Body text", fragments[2].Text)
	assert.Equal(t, uint(2), fragments[2].PageIndex, "body pages follow the cover")
}

func TestCopyPages_KeepsPageDimensions(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	// Letter portrait followed by an A5 landscape page
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Courier", "", fixtureFontSize)
	doc.AddPage()
	doc.Text(fixtureX, fixtureTop, "Letter cover")
	doc.AddPageFormat("L", fpdf.SizeType{Wd: 419.53, Ht: 595.28})
	doc.Text(fixtureX, fixtureTop, "Landscape cover")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	cover := buf.Bytes()

	body := newPDF(t, []string{"Body one"}, []string{"Body two"})

	merged, err := engine.CopyPages(ctx, cover, body)
	require.NoError(t, err)

	coverInfo, err := engine.Inspect(ctx, cover)
	require.NoError(t, err)
	bodyInfo, err := engine.Inspect(ctx, body)
	require.NoError(t, err)
	mergedInfo, err := engine.Inspect(ctx, merged)
	require.NoError(t, err)

	assert.InDelta(t, 612, coverInfo.Pages[0].Width, 0.01)
	assert.InDelta(t, 792, coverInfo.Pages[0].Height, 0.01)
	assert.InDelta(t, 595.28, coverInfo.Pages[1].Width, 0.01)
	assert.InDelta(t, 419.53, coverInfo.Pages[1].Height, 0.01)

	want := append(append([]models.PageSize{}, coverInfo.Pages...), bodyInfo.Pages...)
	require.Len(t, mergedInfo.Pages, len(want))
	for i := range want {
		assert.InDelta(t, want[i].Width, mergedInfo.Pages[i].Width, 0.001, "page %d width", i)
		assert.InDelta(t, want[i].Height, mergedInfo.Pages[i].Height, 0.001, "page %d height", i)
	}
}

func TestCopyPages_Malformed(t *testing.T) {
	engine := newTestEngine(t)
	body := newPDF(t, []string{"Body text"})

	_, err := engine.CopyPages(context.Background(), []byte("broken"), body)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
	assert.Contains(t, err.Error(), "cover")

	_, err = engine.CopyPages(context.Background(), body, nil)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}

func TestInspect(t *testing.T) {
	engine := newTestEngine(t)
	data := newPDF(t, []string{"a"}, []string{"b"})

	info, err := engine.Inspect(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, 2, info.PageCount)
	assert.Equal(t, int64(len(data)), info.FileSize)
	assert.False(t, info.IsEncrypted)
	require.Len(t, info.Pages, 2)
	assert.InDelta(t, 595.28, info.Pages[0].Width, 1)
	assert.InDelta(t, a4Height, info.Pages[0].Height, 1)
}

func TestInspect_Malformed(t *testing.T) {
	_, err := newTestEngine(t).Inspect(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}
