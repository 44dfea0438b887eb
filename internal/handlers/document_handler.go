// -----------------------------------------------------------------------
// Last Modified: Saturday, 17th October 2026 10:15:32 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/interfaces"
	"github.com/ternarybob/docmark/internal/models"
	"github.com/ternarybob/docmark/internal/services/delivery"
	"github.com/ternarybob/docmark/internal/services/upload"
)

// DocumentHandler serves the document upload endpoints
type DocumentHandler struct {
	logger     arbor.ILogger
	assembly   interfaces.AssemblyService
	normalizer interfaces.DocumentNormalizer
	inspector  interfaces.DocumentInspector
	validator  *upload.Validator
}

func NewDocumentHandler(
	logger arbor.ILogger,
	assembly interfaces.AssemblyService,
	engine interfaces.DocumentEngine,
	validator *upload.Validator,
) *DocumentHandler {
	return &DocumentHandler{
		logger:     logger,
		assembly:   assembly,
		normalizer: engine,
		inspector:  engine,
		validator:  validator,
	}
}

// AssembleHandler accepts a multipart upload and streams back the assembled PDF.
// Form fields: file (required), percentage ("random", 0-100, default random),
// title (optional), percent_<name> (optional extras for the cover).
func (h *DocumentHandler) AssembleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	requestID := common.NewRequestID()
	logger := h.logger.WithCorrelationId(requestID)

	doc, err := h.readDocument(w, r)
	if err != nil {
		h.reject(w, logger, err)
		return
	}

	percentage := models.RandomPercentage()
	if raw := strings.TrimSpace(r.FormValue("percentage")); raw != "" {
		percentage, err = models.ParsePercentage(raw)
		if err != nil {
			h.reject(w, logger, &upload.Error{Status: http.StatusBadRequest, Message: err.Error()})
			return
		}
	}

	extras, err := extraPercentages(r)
	if err != nil {
		h.reject(w, logger, err)
		return
	}

	artifact, err := h.assembly.Assemble(r.Context(), models.AssembleRequest{
		RequestID:        requestID,
		Document:         doc,
		Title:            strings.TrimSpace(r.FormValue("title")),
		Percentage:       percentage,
		ExtraPercentages: extras,
	})
	if err != nil {
		h.reject(w, logger, err)
		return
	}

	if err := delivery.NewHTTPSink(w).Deliver(r.Context(), artifact); err != nil {
		// Headers may already be gone; nothing more can be sent
		logger.Warn().Err(err).Str("filename", artifact.Filename).Msg("Failed to deliver artifact")
	}
}

// InspectHandler normalizes an upload and reports its page structure
func (h *DocumentHandler) InspectHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	logger := h.logger.WithCorrelationId(common.NewRequestID())

	doc, err := h.readDocument(w, r)
	if err != nil {
		h.reject(w, logger, err)
		return
	}

	normalized, err := h.normalizer.Normalize(r.Context(), doc)
	if err != nil {
		h.reject(w, logger, classify("normalize", err))
		return
	}

	info, err := h.inspector.Inspect(r.Context(), normalized.Data)
	if err != nil {
		h.reject(w, logger, classify("inspect", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"filename": doc.Filename,
		"kind":     doc.Kind,
		"reflowed": normalized.Reflowed,
		"info":     info,
	})
}

func (h *DocumentHandler) readDocument(w http.ResponseWriter, r *http.Request) (models.SourceDocument, error) {
	filename, data, err := readUpload(w, r, h.validator.MaxBytes())
	if err != nil {
		return models.SourceDocument{}, err
	}
	return h.validator.Validate(filename, data)
}

func (h *DocumentHandler) reject(w http.ResponseWriter, logger arbor.ILogger, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Document request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("Document request rejected")
	}
	WriteError(w, status, MessageForError(err))
}
