package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/models"
	"github.com/ternarybob/docmark/internal/services/pdf"
	"github.com/ternarybob/docmark/internal/services/upload"
)

// stubAssembly records the request it was given and returns a canned result
type stubAssembly struct {
	got      models.AssembleRequest
	artifact *models.Artifact
	err      error
}

func (s *stubAssembly) Assemble(ctx context.Context, req models.AssembleRequest) (*models.Artifact, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	a := *s.artifact
	a.RequestID = req.RequestID
	return &a, nil
}

func samplePDF(t *testing.T) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetFont("Courier", "", 12)
	doc.AddPage()
	doc.Text(72, 100, "Hello handler")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

// multipartRequest builds a POST with a "file" part and the given fields
func multipartRequest(t *testing.T, target, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newDocumentHandler(t *testing.T, assembly *stubAssembly, maxBytes int64) *DocumentHandler {
	t.Helper()
	logger := arbor.NewLogger()
	validator, err := upload.NewValidator(common.UploadConfig{MaxBytes: maxBytes, AllowedKinds: []string{"pdf", "docx", "txt"}}, logger)
	require.NoError(t, err)
	return NewDocumentHandler(logger, assembly, pdf.NewEngine(pdf.DefaultOptions(), logger), validator)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "error", payload["status"])
	return payload["error"]
}

func TestAssembleHandler_Success(t *testing.T) {
	assembly := &stubAssembly{artifact: &models.Artifact{
		Filename:  "highlighted_report.pdf",
		Data:      []byte("%PDF-1.7 assembled"),
		PageCount: 3,
		Highlight: models.HighlightResult{Status: models.HighlightApplied},
	}}
	h := newDocumentHandler(t, assembly, 1<<20)

	req := multipartRequest(t, "/api/documents/assemble", "report.pdf", samplePDF(t), map[string]string{
		"percentage": "35",
		"title":      "  Quarterly report ",
		"percent_ai": "12",
	})
	rec := httptest.NewRecorder()
	h.AssembleHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "highlighted_report.pdf")
	assert.Equal(t, "highlighted", rec.Header().Get("X-Highlight-Status"))
	assert.Equal(t, "3", rec.Header().Get("X-Page-Count"))
	assert.Equal(t, "%PDF-1.7 assembled", rec.Body.String())

	got := assembly.got
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, got.RequestID, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "report.pdf", got.Document.Filename)
	assert.Equal(t, models.KindPDF, got.Document.Kind)
	assert.Equal(t, "Quarterly report", got.Title)
	assert.Equal(t, "35", got.Percentage.String())
	assert.Equal(t, map[string]int{"ai": 12}, got.ExtraPercentages)
}

func TestAssembleHandler_DefaultsToRandomPercentage(t *testing.T) {
	assembly := &stubAssembly{artifact: &models.Artifact{Filename: "x.pdf", Data: []byte("%PDF-")}}
	h := newDocumentHandler(t, assembly, 1<<20)

	rec := httptest.NewRecorder()
	h.AssembleHandler(rec, multipartRequest(t, "/api/documents/assemble", "notes.txt", []byte("some plain text"), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, assembly.got.Percentage.IsRandom())
	assert.Nil(t, assembly.got.ExtraPercentages)
}

func TestAssembleHandler_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		filename string
		data     []byte
		fields   map[string]string
		status   int
	}{
		{name: "wrong method", method: http.MethodGet, status: http.StatusMethodNotAllowed},
		{name: "missing file", fields: map[string]string{"percentage": "10"}, status: http.StatusBadRequest},
		{name: "unsupported extension", filename: "slides.pptx", data: []byte("PK\x03\x04"), status: http.StatusUnsupportedMediaType},
		{name: "content mismatch", filename: "fake.pdf", data: []byte("hello there"), status: http.StatusUnsupportedMediaType},
		{name: "too large", filename: "big.txt", data: bytes.Repeat([]byte("a "), 600), status: http.StatusRequestEntityTooLarge},
		{name: "bad percentage", filename: "a.txt", data: []byte("words"), fields: map[string]string{"percentage": "150"}, status: http.StatusBadRequest},
		{name: "bad extra percentage", filename: "a.txt", data: []byte("words"), fields: map[string]string{"percent_ai": "lots"}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assembly := &stubAssembly{artifact: &models.Artifact{}}
			h := newDocumentHandler(t, assembly, 1024)

			var req *http.Request
			if tt.method == http.MethodGet {
				req = httptest.NewRequest(http.MethodGet, "/api/documents/assemble", nil)
			} else {
				req = multipartRequest(t, "/api/documents/assemble", tt.filename, tt.data, tt.fields)
			}
			rec := httptest.NewRecorder()
			h.AssembleHandler(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
			assert.Empty(t, assembly.got.RequestID, "the pipeline must not run")
		})
	}
}

func TestAssembleHandler_PipelineErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "cover failure",
			err:     models.NewPipelineError(models.ErrDependencyFailure, "cover", assertErr("template missing")),
			status:  http.StatusBadGateway,
			message: "cover generation failed: template missing",
		},
		{
			name:    "malformed",
			err:     models.NewPipelineError(models.ErrMalformedDocument, "extract", assertErr("bad xref")),
			status:  http.StatusUnprocessableEntity,
			message: "the document could not be processed: bad xref",
		},
		{
			name:    "cancelled",
			err:     context.Canceled,
			status:  http.StatusServiceUnavailable,
			message: "the request was cancelled before the document was ready",
		},
		{
			name:    "unclassified",
			err:     assertErr("nil pointer somewhere"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newDocumentHandler(t, &stubAssembly{err: tt.err}, 1<<20)

			rec := httptest.NewRecorder()
			h.AssembleHandler(rec, multipartRequest(t, "/api/documents/assemble", "a.pdf", samplePDF(t), nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestInspectHandler(t *testing.T) {
	h := newDocumentHandler(t, &stubAssembly{}, 1<<20)

	rec := httptest.NewRecorder()
	h.InspectHandler(rec, multipartRequest(t, "/api/documents/inspect", "report.pdf", samplePDF(t), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Filename string              `json:"filename"`
		Kind     string              `json:"kind"`
		Reflowed bool                `json:"reflowed"`
		Info     models.DocumentInfo `json:"info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "report.pdf", payload.Filename)
	assert.Equal(t, "pdf", payload.Kind)
	assert.False(t, payload.Reflowed)
	assert.Equal(t, 1, payload.Info.PageCount)
}

func TestInspectHandler_ReflowsText(t *testing.T) {
	h := newDocumentHandler(t, &stubAssembly{}, 1<<20)

	rec := httptest.NewRecorder()
	h.InspectHandler(rec, multipartRequest(t, "/api/documents/inspect", "notes.txt", []byte("line one\nline two"), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"reflowed":true`)
}

func TestInspectHandler_MalformedPDF(t *testing.T) {
	h := newDocumentHandler(t, &stubAssembly{}, 1<<20)

	rec := httptest.NewRecorder()
	h.InspectHandler(rec, multipartRequest(t, "/api/documents/inspect", "broken.pdf", []byte("%PDF-1.4 truncated"), nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusRequestEntityTooLarge, StatusForError(&upload.Error{Status: http.StatusRequestEntityTooLarge}))
	assert.Equal(t, http.StatusUnsupportedMediaType, StatusForError(models.NewPipelineError(models.ErrUnsupportedFormat, "normalize", nil)))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusForError(models.ErrMalformedDocument))
	assert.Equal(t, http.StatusBadGateway, StatusForError(models.ErrDependencyFailure))
	assert.Equal(t, http.StatusServiceUnavailable, StatusForError(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, StatusForError(assertErr("boom")))
}

func TestClassify(t *testing.T) {
	err := classify("inspect", assertErr("no pages"))
	assert.ErrorIs(t, err, models.ErrMalformedDocument)

	err = classify("normalize", models.ErrUnsupportedFormat)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)

	assert.Equal(t, context.Canceled, classify("inspect", context.Canceled))
}

func TestAPIHandler(t *testing.T) {
	h := NewAPIHandler(arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	h.VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)

	rec = httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))

	rec = httptest.NewRecorder()
	h.NotFoundHandler(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/nope")
}

type stubConfigService struct {
	cfg interface{}
	err error
}

func (s stubConfigService) GetConfig(ctx context.Context) (interface{}, error) {
	return s.cfg, s.err
}

func TestConfigHandler(t *testing.T) {
	fallback := common.NewDefaultConfig()
	fallback.Server.Port = 9999

	live := common.NewDefaultConfig()
	live.Server.Port = 8123

	tests := []struct {
		name string
		svc  stubConfigService
		port int
	}{
		{"service config", stubConfigService{cfg: live}, 8123},
		{"service error", stubConfigService{err: assertErr("down")}, 9999},
		{"unexpected type", stubConfigService{cfg: "nope"}, 9999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewConfigHandler(arbor.NewLogger(), fallback, tt.svc)
			rec := httptest.NewRecorder()
			h.GetConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp ConfigResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.port, resp.Port)
			assert.Equal(t, common.Version, resp.Version)
			require.NotNil(t, resp.Config)
			assert.Equal(t, tt.port, resp.Config.Server.Port)
		})
	}
}
