package delivery

import (
	"context"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/models"
)

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		original string
		ext      string
		want     string
	}{
		{"replaces extension", "highlighted", "report.docx", "pdf", "highlighted_report.pdf"},
		{"windows path", "highlighted", `C:\Users\me\essay v2.doc`, ".pdf", "highlighted_essay v2.pdf"},
		{"no prefix", "", "a.pdf", "pdf", "a.pdf"},
		{"unsafe characters", "p", "../../etc/pa$$wd", "pdf", "p_pa__wd.pdf"},
		{"only an extension", "p", ".pdf", "pdf", "p_document.pdf"},
		{"unicode letters kept", "p", "résumé.doc", "pdf", "p_résumé.pdf"},
		{"quotes replaced", "p", `my "best" work.pdf`, "pdf", "p_my _best_ work.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputFilename(tt.prefix, tt.original, tt.ext))
		})
	}
}

func testArtifact() *models.Artifact {
	return &models.Artifact{
		RequestID:   "asm_123",
		Filename:    "highlighted_essay.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.7 merged"),
		PageCount:   5,
		Highlight:   models.HighlightResult{Status: models.HighlightApplied},
	}
}

func TestUniqueFilenames(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"distinct", []string{"a.pdf", "b.pdf"}, []string{"a.pdf", "b.pdf"}},
		{"repeats", []string{"a.pdf", "a.pdf", "a.pdf"}, []string{"a.pdf", "a_2.pdf", "a_3.pdf"}},
		{"case only", []string{"Report.pdf", "report.pdf"}, []string{"Report.pdf", "report_2.pdf"}},
		{"suffix already taken later", []string{"a.pdf", "a.pdf", "a_2.pdf"}, []string{"a.pdf", "a_3.pdf", "a_2.pdf"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueFilenames(tt.names))
		})
	}
}

func TestFileSink_Deliver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := NewFileSink(dir, arbor.NewLogger())

	require.NoError(t, sink.Deliver(context.Background(), testArtifact()))

	written, err := os.ReadFile(filepath.Join(dir, "highlighted_essay.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 merged"), written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestFileSink_PathStaysInDirectory(t *testing.T) {
	sink := NewFileSink("/srv/out", arbor.NewLogger())
	assert.Equal(t, filepath.Join("/srv/out", "passwd"), sink.Path("../../etc/passwd"))
}

func TestFileSink_CancelledContext(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFileSink(dir, arbor.NewLogger()).Deliver(ctx, testArtifact())
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHTTPSink_Deliver(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, NewHTTPSink(rec).Deliver(context.Background(), testArtifact()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "15", rec.Header().Get("Content-Length"))
	assert.Equal(t, "asm_123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "highlighted", rec.Header().Get("X-Highlight-Status"))
	assert.Equal(t, "5", rec.Header().Get("X-Page-Count"))

	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "highlighted_essay.pdf", params["filename"])

	assert.Equal(t, "%PDF-1.7 merged", rec.Body.String())
}

func TestHTTPSink_CancelledContextWritesNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewHTTPSink(rec).Deliver(ctx, testArtifact())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Zero(t, rec.Body.Len())
}
