package models

// Artifact is the final assembled document ready for delivery
type Artifact struct {
	RequestID   string          `json:"request_id"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	Data        []byte          `json:"-"`
	PageCount   int             `json:"page_count"`
	CoverPages  int             `json:"cover_pages"`
	BodyPages   int             `json:"body_pages"`
	Highlight   HighlightResult `json:"highlight"`
	Selection   SelectionStats  `json:"selection"`
}
