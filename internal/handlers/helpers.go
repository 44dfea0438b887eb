package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/docmark/internal/models"
	"github.com/ternarybob/docmark/internal/services/upload"
)

// multipartOverhead is the allowance above the file limit for form fields and boundaries
const multipartOverhead = 1 << 20

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// StatusForError maps a pipeline or validation error to an HTTP status
func StatusForError(err error) int {
	var uploadErr *upload.Error
	switch {
	case errors.As(err, &uploadErr):
		return uploadErr.Status
	case errors.Is(err, models.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, models.ErrMalformedDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrDependencyFailure):
		return http.StatusBadGateway
	case isContextDone(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// MessageForError returns the text shown to the client. Unclassified errors get
// a generic message so internals never leak.
func MessageForError(err error) string {
	var uploadErr *upload.Error
	if errors.As(err, &uploadErr) {
		return uploadErr.Message
	}

	var pipelineErr *models.PipelineError
	if errors.As(err, &pipelineErr) {
		switch {
		case errors.Is(err, models.ErrDependencyFailure):
			return fmt.Sprintf("cover generation failed: %s", pipelineErr.Message())
		case errors.Is(err, models.ErrUnsupportedFormat):
			return fmt.Sprintf("unsupported document: %s", pipelineErr.Message())
		default:
			return fmt.Sprintf("the document could not be processed: %s", pipelineErr.Message())
		}
	}

	if isContextDone(err) {
		return "the request was cancelled before the document was ready"
	}
	return "Internal server error"
}

// readUpload reads the "file" part of a multipart request, bounded by maxBytes
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, &upload.Error{Status: http.StatusRequestEntityTooLarge, Message: "the upload exceeds the size limit"}
		}
		return "", nil, &upload.Error{Status: http.StatusBadRequest, Message: "expected a multipart/form-data upload"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, &upload.Error{Status: http.StatusBadRequest, Message: "missing form field \"file\""}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return "", nil, &upload.Error{Status: http.StatusBadRequest, Message: "failed to read the uploaded file"}
	}
	return header.Filename, data, nil
}

// extraPercentages collects percent_<name>=<int> form fields
func extraPercentages(r *http.Request) (map[string]int, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var out map[string]int
	for key, values := range r.MultipartForm.Value {
		name, ok := strings.CutPrefix(key, "percent_")
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil || v < 0 || v > 100 {
			return nil, &upload.Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("%s must be an integer between 0 and 100", key)}
		}
		if out == nil {
			out = make(map[string]int)
		}
		out[name] = v
	}
	return out, nil
}

func isContextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// classify wraps an engine error as a PipelineError, keeping its kind when it has one
func classify(stage string, err error) error {
	if isContextDone(err) {
		return err
	}
	for _, kind := range []error{models.ErrUnsupportedFormat, models.ErrMalformedDocument, models.ErrDependencyFailure} {
		if errors.Is(err, kind) {
			return models.NewPipelineError(kind, stage, err)
		}
	}
	return models.NewPipelineError(models.ErrMalformedDocument, stage, err)
}
