package models

// HighlightStatus says whether the compositor changed the document
type HighlightStatus string

const (
	HighlightApplied   HighlightStatus = "highlighted"
	HighlightUnchanged HighlightStatus = "unchanged"
)

// HighlightResult is the compositor's output. When Status is HighlightUnchanged,
// Data is the original input and Reason says why.
type HighlightResult struct {
	Data    []byte          `json:"-"`
	Status  HighlightStatus `json:"status"`
	Reason  string          `json:"reason,omitempty"`
	Drawn   int             `json:"drawn"`
	Skipped int             `json:"skipped"`
}

// Highlighted builds an applied result
func Highlighted(data []byte, drawn, skipped int) HighlightResult {
	return HighlightResult{Data: data, Status: HighlightApplied, Drawn: drawn, Skipped: skipped}
}

// Unchanged builds a fallback result carrying the original bytes
func Unchanged(original []byte, reason string) HighlightResult {
	return HighlightResult{Data: original, Status: HighlightUnchanged, Reason: reason}
}
