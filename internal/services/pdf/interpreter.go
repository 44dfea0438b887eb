package pdf

import (
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/ternarybob/docmark/internal/models"
)

// tjSpaceThreshold is the TJ adjustment (thousandths of text space) treated as a word gap
const tjSpaceThreshold = -200

type textParams struct {
	fontSize    float64
	charSpacing float64
	wordSpacing float64
	hScale      float64
	leading     float64
	rise        float64
	font        *pdfFont
}

// graphicsState holds what the interpreter tracks across q/Q. Text parameters
// live here too, so a Tf in one BT block applies to the next.
type graphicsState struct {
	ctm  matrix
	text textParams
}

// textInterpreter walks one page's content stream and emits a fragment per
// text-showing operator, positioned by its text rendering matrix.
type textInterpreter struct {
	page      uint
	fonts     map[string]*pdfFont
	gs        graphicsState
	stack     []graphicsState
	tm        matrix
	tlm       matrix
	fragments []models.Fragment
}

func newTextInterpreter(page uint, fonts map[string]*pdfFont) *textInterpreter {
	return &textInterpreter{
		page:  page,
		fonts: fonts,
		gs: graphicsState{
			ctm:  identity(),
			text: textParams{hScale: 1},
		},
		tm:  identity(),
		tlm: identity(),
	}
}

// interpretPage returns the fragments drawn by a decoded content stream.
// fonts maps the page's font resource names; unknown names decode as WinAnsi.
func interpretPage(content []byte, page uint, fonts map[string]*pdfFont) ([]models.Fragment, error) {
	in := newTextInterpreter(page, fonts)
	lexer := &contentLexer{data: content}
	if err := lexer.each(in.apply); err != nil {
		return nil, err
	}
	return in.fragments, nil
}

func numbers(args []operand, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	args = args[len(args)-n:]
	out := make([]float64, n)
	for i, a := range args {
		if a.kind != operandNumber {
			return nil, false
		}
		out[i] = a.num
	}
	return out, true
}

func lastString(args []operand) ([]byte, bool) {
	if len(args) == 0 || args[len(args)-1].kind != operandString {
		return nil, false
	}
	return args[len(args)-1].str, true
}

// apply executes one operator. Operators with bad operands are ignored.
func (in *textInterpreter) apply(op string, args []operand) error {
	t := &in.gs.text
	switch op {
	case "q":
		in.stack = append(in.stack, in.gs)
	case "Q":
		if n := len(in.stack); n > 0 {
			in.gs = in.stack[n-1]
			in.stack = in.stack[:n-1]
		}
	case "cm":
		if v, ok := numbers(args, 6); ok {
			in.gs.ctm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.multiply(in.gs.ctm)
		}
	case "BT":
		in.tm = identity()
		in.tlm = identity()
	case "Tf":
		if v, ok := numbers(args, 1); ok {
			t.fontSize = v[0]
		}
		if len(args) >= 2 && args[len(args)-2].kind == operandName {
			t.font = in.fonts[args[len(args)-2].name]
		}
	case "Tc":
		if v, ok := numbers(args, 1); ok {
			t.charSpacing = v[0]
		}
	case "Tw":
		if v, ok := numbers(args, 1); ok {
			t.wordSpacing = v[0]
		}
	case "Tz":
		if v, ok := numbers(args, 1); ok {
			t.hScale = v[0] / 100
		}
	case "TL":
		if v, ok := numbers(args, 1); ok {
			t.leading = v[0]
		}
	case "Ts":
		if v, ok := numbers(args, 1); ok {
			t.rise = v[0]
		}
	case "Td":
		if v, ok := numbers(args, 2); ok {
			in.moveLine(v[0], v[1])
		}
	case "TD":
		if v, ok := numbers(args, 2); ok {
			t.leading = -v[1]
			in.moveLine(v[0], v[1])
		}
	case "Tm":
		if v, ok := numbers(args, 6); ok {
			in.tm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			in.tlm = in.tm
		}
	case "T*":
		in.moveLine(0, -t.leading)
	case "Tj":
		if s, ok := lastString(args); ok {
			in.show(s)
		}
	case "'":
		if s, ok := lastString(args); ok {
			in.moveLine(0, -t.leading)
			in.show(s)
		}
	case "\"":
		if len(args) >= 3 {
			if v, ok := numbers(args[:len(args)-1], 2); ok {
				t.wordSpacing, t.charSpacing = v[0], v[1]
			}
		}
		if s, ok := lastString(args); ok {
			in.moveLine(0, -t.leading)
			in.show(s)
		}
	case "TJ":
		if len(args) > 0 && args[len(args)-1].kind == operandArray {
			in.showArray(args[len(args)-1].items)
		}
	}
	return nil
}

func (in *textInterpreter) moveLine(tx, ty float64) {
	in.tlm = translate(tx, ty).multiply(in.tlm)
	in.tm = in.tlm
}

// renderingMatrix is Trm = [fs*Th 0 0 fs 0 rise] × Tm × CTM
func (in *textInterpreter) renderingMatrix() matrix {
	t := in.gs.text
	return matrix{t.fontSize * t.hScale, 0, 0, t.fontSize, 0, t.rise}.multiply(in.tm).multiply(in.gs.ctm)
}

// show emits raw as one fragment and advances the text matrix past it
func (in *textInterpreter) show(raw []byte) {
	trm := in.renderingMatrix()
	text, codes, spaces := in.gs.text.font.decode(raw)
	if f, ok := newFragment(text, in.page, trm[4], trm[5], trm[0], trm[3], 0); ok {
		in.fragments = append(in.fragments, f)
	}
	in.advance(codes, spaces, 0)
}

// showArray joins a TJ array into a single fragment, inserting a space where a
// large negative adjustment separates words.
func (in *textInterpreter) showArray(items []operand) {
	trm := in.renderingMatrix()
	var sb strings.Builder
	codes, spaces := 0, 0
	adjust := 0.0
	for _, item := range items {
		switch item.kind {
		case operandString:
			text, n, sp := in.gs.text.font.decode(item.str)
			sb.WriteString(text)
			codes += n
			spaces += sp
		case operandNumber:
			adjust += item.num
			if item.num <= tjSpaceThreshold && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
		}
	}
	if f, ok := newFragment(sb.String(), in.page, trm[4], trm[5], trm[0], trm[3], 0); ok {
		in.fragments = append(in.fragments, f)
	}
	in.advance(codes, spaces, adjust)
}

// advance moves Tm by the estimated width of codes glyphs. Word spacing
// applies to single-byte spaces only.
func (in *textInterpreter) advance(codes, spaces int, adjust float64) {
	t := in.gs.text
	n := float64(codes)
	tx := (n*(estimatedGlyphAdvance*t.fontSize+t.charSpacing) + float64(spaces)*t.wordSpacing - adjust/1000*t.fontSize) * t.hScale
	in.tm = translate(tx, 0).multiply(in.tm)
}

func decodeWinAnsi(raw []byte) string {
	s, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(s)
}
