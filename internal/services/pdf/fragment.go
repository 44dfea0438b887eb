package pdf

import (
	"math"
	"strings"

	"github.com/ternarybob/docmark/internal/models"
)

const (
	// estimatedGlyphAdvance is the width of one glyph as a fraction of the font size
	// when the producer gives no explicit width. Exact for Courier.
	estimatedGlyphAdvance = 0.6
	defaultFragmentHeight = 12
)

// newFragment applies the shared extraction rules to one text-drawing operation.
// scaleX and scaleY are the horizontal and vertical scale of the operation's
// transform; explicitWidth is used when positive.
func newFragment(text string, page uint, x, y, scaleX, scaleY, explicitWidth float64) (models.Fragment, bool) {
	if strings.TrimSpace(text) == "" {
		return models.Fragment{}, false
	}
	if scaleX <= 0 || math.IsNaN(scaleX) || math.IsNaN(scaleY) {
		return models.Fragment{}, false
	}

	width := explicitWidth
	if width <= 0 {
		width = float64(len([]rune(text))) * math.Abs(scaleX) * estimatedGlyphAdvance
	}
	height := math.Abs(scaleY)
	if height == 0 {
		height = defaultFragmentHeight
	}

	return models.Fragment{
		Text:      text,
		PageIndex: page,
		X:         x,
		Y:         y,
		Width:     width,
		Height:    height,
		Origin:    models.OriginBottomLeft,
	}, true
}
