package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/app"
	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/models"
)

type staticCover struct {
	data []byte
}

func (c staticCover) RenderCover(ctx context.Context, req models.CoverRequest) ([]byte, error) {
	return c.data, nil
}

func renderPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetFont("Courier", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Text(72, 100, text)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := common.NewDefaultConfig()
	application, err := app.New(cfg, arbor.NewLogger(), nil,
		app.WithCoverService(staticCover{data: renderPDF(t, "Cover one", "Cover two")}))
	require.NoError(t, err)

	ts := httptest.NewServer(New(application).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestRoutes_Assemble(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "essay.pdf")
	require.NoError(t, err)
	_, err = part.Write(renderPDF(t, "The quick brown fox jumps over the lazy dog"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("percentage", "50"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/documents/assemble", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "3", resp.Header.Get("X-Page-Count"))
	assert.Equal(t, "highlighted", resp.Header.Get("X-Highlight-Status"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "highlighted_essay.pdf")
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "X-Request-ID")
}

func TestRoutes_System(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
		allow  string
	}{
		{http.MethodGet, "/api/health", http.StatusOK, ""},
		{http.MethodGet, "/api/version", http.StatusOK, ""},
		{http.MethodGet, "/api/config", http.StatusOK, ""},
		{http.MethodPut, "/api/config", http.StatusMethodNotAllowed, "GET"},
		{http.MethodGet, "/api/documents/assemble", http.StatusMethodNotAllowed, "POST"},
		{http.MethodGet, "/api/unknown", http.StatusNotFound, ""},
		{http.MethodGet, "/", http.StatusNotFound, ""},
		{http.MethodOptions, "/api/documents/assemble", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.allow != "" {
				assert.Equal(t, tt.allow, resp.Header.Get("Allow"))
			}
		})
	}
}

func TestRouteByMethod_SortsAllowHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	noop := func(http.ResponseWriter, *http.Request) {}

	RouteByMethod(rec, httptest.NewRequest(http.MethodDelete, "/x", nil), MethodRouter{
		http.MethodPost: noop,
		http.MethodGet:  noop,
	})

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}
