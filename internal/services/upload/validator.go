// -----------------------------------------------------------------------
// Upload Validator - size, extension and content-type policy for uploads
// -----------------------------------------------------------------------

package upload

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/models"
)

// kindMIMEs lists the detected types accepted for each kind. A detected type
// also matches when one of its parents is listed (docx is a zip, doc an OLE file).
var kindMIMEs = map[models.MediaKind][]string{
	models.KindPDF:      {"application/pdf"},
	models.KindDOCX:     {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	models.KindDOC:      {"application/msword", "application/x-ole-storage"},
	models.KindMarkdown: {"text/plain"},
	models.KindText:     {"text/plain"},
}

// Error is a user-facing rejection with the HTTP status to report
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func reject(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Validator enforces the [upload] policy
type Validator struct {
	maxBytes int64
	allowed  map[models.MediaKind]bool
	logger   arbor.ILogger
}

// NewValidator builds a validator from the [upload] section
func NewValidator(cfg common.UploadConfig, logger arbor.ILogger) (*Validator, error) {
	allowed := make(map[models.MediaKind]bool, len(cfg.AllowedKinds))
	for _, name := range cfg.AllowedKinds {
		kind, err := models.ParseMediaKind(name)
		if err != nil {
			return nil, fmt.Errorf("upload.allowed_kinds: %w", err)
		}
		allowed[kind] = true
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("upload.allowed_kinds is empty")
	}
	return &Validator{maxBytes: cfg.MaxBytes, allowed: allowed, logger: logger}, nil
}

// MaxBytes returns the largest accepted upload
func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// AllowedKinds returns the accepted kinds in a stable order
func (v *Validator) AllowedKinds() []string {
	var out []string
	for _, k := range []models.MediaKind{models.KindPDF, models.KindDOC, models.KindDOCX, models.KindMarkdown, models.KindText} {
		if v.allowed[k] {
			out = append(out, string(k))
		}
	}
	return out
}

// Validate checks an upload against the policy and returns it as a SourceDocument.
// Rejections are *Error values carrying a message safe to show the user.
func (v *Validator) Validate(filename string, data []byte) (models.SourceDocument, error) {
	if len(data) == 0 {
		return models.SourceDocument{}, reject(http.StatusBadRequest, "the uploaded file is empty")
	}
	if v.maxBytes > 0 && int64(len(data)) > v.maxBytes {
		return models.SourceDocument{}, reject(http.StatusRequestEntityTooLarge,
			"the uploaded file is %s, the limit is %s", humanSize(int64(len(data))), humanSize(v.maxBytes))
	}

	kind, err := models.KindFromFilename(filename)
	if err != nil || !v.allowed[kind] {
		return models.SourceDocument{}, reject(http.StatusUnsupportedMediaType,
			"unsupported file type, allowed types: %s", strings.Join(v.AllowedKinds(), ", "))
	}

	detected := DetectMIME(data)
	if !matchesKind(detected, kind) {
		v.logger.Debug().
			Str("filename", filename).
			Str("kind", string(kind)).
			Str("detected", detected.String()).
			Msg("Upload content does not match its extension")
		return models.SourceDocument{}, reject(http.StatusUnsupportedMediaType,
			"the file content does not look like a .%s document", kind)
	}

	return models.SourceDocument{Filename: filename, Kind: kind, Data: data}, nil
}

// DetectMIME sniffs the content type. mimetype knows office formats; the
// stdlib sniffer is consulted when mimetype gives up.
func DetectMIME(data []byte) *mimetype.MIME {
	mt := mimetype.Detect(data)
	if mt.Is("application/octet-stream") {
		if std := http.DetectContentType(data); std != "application/octet-stream" {
			if lookup := mimetype.Lookup(strings.TrimSpace(strings.Split(std, ";")[0])); lookup != nil {
				return lookup
			}
		}
	}
	return mt
}

func matchesKind(mt *mimetype.MIME, kind models.MediaKind) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, accepted := range kindMIMEs[kind] {
			if m.Is(accepted) {
				return true
			}
		}
	}
	return false
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
