package delivery

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/ternarybob/docmark/internal/interfaces"
	"github.com/ternarybob/docmark/internal/models"
)

// HTTPSink streams an artifact to the client as a file download
type HTTPSink struct {
	w http.ResponseWriter
}

// Compile-time assertion
var _ interfaces.DeliverySink = (*HTTPSink)(nil)

// NewHTTPSink wraps the response of the request being served
func NewHTTPSink(w http.ResponseWriter) *HTTPSink {
	return &HTTPSink{w: w}
}

// Deliver writes headers and body. Nothing is written if ctx is already done.
func (s *HTTPSink) Deliver(ctx context.Context, artifact *models.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	contentType := artifact.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	h := s.w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	h.Set("X-Request-ID", artifact.RequestID)
	h.Set("X-Highlight-Status", string(artifact.Highlight.Status))
	h.Set("X-Page-Count", strconv.Itoa(artifact.PageCount))
	s.w.WriteHeader(http.StatusOK)

	if _, err := s.w.Write(artifact.Data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
