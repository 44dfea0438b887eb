package models

import "strings"

// Origin is the corner a coordinate space measures y from
type Origin int

const (
	// OriginBottomLeft is PDF user space: y grows upward from the bottom edge
	OriginBottomLeft Origin = iota
	// OriginTopLeft is the fpdf page space: y grows downward from the top edge
	OriginTopLeft
)

func (o Origin) String() string {
	if o == OriginTopLeft {
		return "top-left"
	}
	return "bottom-left"
}

// Fragment is one positioned run of text on one page.
// Coordinates are only meaningful against the document the fragment was read from.
type Fragment struct {
	Text      string  `json:"text"`
	PageIndex uint    `json:"page_index"` // zero-based
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Origin    Origin  `json:"origin"`
}

// BottomLeftY returns the fragment's lower edge in bottom-left space for a page of the given height
func (f Fragment) BottomLeftY(pageHeight float64) float64 {
	if f.Origin == OriginTopLeft {
		return pageHeight - f.Y - f.Height
	}
	return f.Y
}

// CountWords counts maximal runs of non-whitespace
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// JoinText concatenates fragment text with single spaces
func JoinText(fragments []Fragment) string {
	parts := make([]string, len(fragments))
	for i, f := range fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}
