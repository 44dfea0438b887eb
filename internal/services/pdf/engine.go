// -----------------------------------------------------------------------
// Document Engine - PDF normalisation, layout, highlighting and merging
// Uses pdfcpu for the page model and fpdf for re-flowing text
// -----------------------------------------------------------------------

package pdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/interfaces"
)

const (
	BackendPdfcpu = "pdfcpu"
	BackendGlyph  = "glyph"
)

// Options holds the engine's tunables, all measurements in points
type Options struct {
	PageSize   string
	Margin     float64
	FontFamily string
	FontSize   float64
	LineHeight float64

	LayoutBackend string

	HighlightColor [3]float64 // RGB in [0,1]
	Opacity        float64
	Padding        float64
}

// DefaultOptions mirrors common.NewDefaultConfig
func DefaultOptions() Options {
	return OptionsFromConfig(common.NewDefaultConfig())
}

// OptionsFromConfig maps the [normalize], [layout] and [highlight] sections onto Options
func OptionsFromConfig(cfg *common.Config) Options {
	rgb, err := parseHexColor(cfg.Highlight.Color)
	if err != nil {
		rgb = [3]float64{1, 0.92, 0.23}
	}
	return Options{
		PageSize:       cfg.Normalize.PageSize,
		Margin:         cfg.Normalize.Margin,
		FontFamily:     cfg.Normalize.FontFamily,
		FontSize:       cfg.Normalize.FontSize,
		LineHeight:     cfg.Normalize.LineHeight,
		LayoutBackend:  cfg.Layout.Backend,
		HighlightColor: rgb,
		Opacity:        cfg.Highlight.Opacity,
		Padding:        cfg.Highlight.Padding,
	}
}

// Engine implements interfaces.DocumentEngine
type Engine struct {
	opts   Options
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DocumentEngine = (*Engine)(nil)

// NewEngine creates a new document engine
func NewEngine(opts Options, logger arbor.ILogger) *Engine {
	return &Engine{
		opts:   opts,
		logger: logger,
	}
}

// Options returns the engine's configuration
func (e *Engine) Options() Options {
	return e.opts
}

func parseHexColor(s string) ([3]float64, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return [3]float64{}, fmt.Errorf("invalid colour %q", s)
	}
	var rgb [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return [3]float64{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		rgb[i] = float64(v) / 255
	}
	return rgb, nil
}
