package pdf

import (
	"errors"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pdfFont is what the interpreter needs from a font resource: how many bytes
// make one character code and how codes map to text.
type pdfFont struct {
	codeLen int
	cmap    *toUnicodeMap
}

// simpleFont is assumed when Tf names a font the page does not declare
var simpleFont = &pdfFont{codeLen: 1}

// decode splits raw into character codes and returns the text they stand for,
// the number of codes and the number of single-byte spaces (for Tw).
func (f *pdfFont) decode(raw []byte) (text string, codes, spaces int) {
	if f == nil {
		f = simpleFont
	}
	if f.codeLen == 1 && f.cmap == nil {
		for _, b := range raw {
			if b == ' ' {
				spaces++
			}
		}
		return decodeWinAnsi(raw), len(raw), spaces
	}

	var out []rune
	for i := 0; i+f.codeLen <= len(raw); i += f.codeLen {
		var code uint32
		for _, b := range raw[i : i+f.codeLen] {
			code = code<<8 | uint32(b)
		}
		codes++
		if f.codeLen == 1 && code == ' ' {
			spaces++
		}

		if s, ok := f.cmap.lookup(code); ok {
			out = append(out, []rune(s)...)
			continue
		}
		switch {
		case f.codeLen == 1:
			out = append(out, []rune(decodeWinAnsi([]byte{byte(code)}))...)
		case code != 0:
			// Identity encodings without a ToUnicode map; producers that
			// subset with codes equal to code points decode correctly
			out = append(out, rune(code))
		}
	}
	return string(out), codes, spaces
}

// pageFonts resolves the font resources of a page by resource name.
// Fonts that cannot be read are left out and decode as simple fonts.
func pageFonts(pctx *model.Context, pageNr int) map[string]*pdfFont {
	_, _, inherited, err := pctx.PageDict(pageNr, false)
	if err != nil || inherited == nil || inherited.Resources == nil {
		return nil
	}
	fontDict, err := pctx.DereferenceDict(inherited.Resources["Font"])
	if err != nil || fontDict == nil {
		return nil
	}

	fonts := make(map[string]*pdfFont, len(fontDict))
	for name, obj := range fontDict {
		d, err := pctx.DereferenceDict(obj)
		if err != nil || d == nil {
			continue
		}
		fonts[name] = loadFont(pctx, d)
	}
	return fonts
}

func loadFont(pctx *model.Context, d types.Dict) *pdfFont {
	f := &pdfFont{codeLen: 1}
	if subtype := d.Subtype(); subtype != nil && *subtype == "Type0" {
		f.codeLen = 2
	}

	obj, found := d.Find("ToUnicode")
	if !found {
		return f
	}
	sd, _, err := pctx.DereferenceStreamDict(obj)
	if err != nil || sd == nil {
		return f
	}
	if err := sd.Decode(); err != nil {
		return f
	}
	if cmap, err := parseToUnicode(sd.Content); err == nil {
		f.cmap = cmap
	}
	return f
}

type cmapRange struct {
	lo, hi uint32
	start  []rune   // destination of lo; later codes increment the last rune
	list   []string // explicit destinations, one per code
}

// toUnicodeMap holds the bfchar and bfrange mappings of a ToUnicode CMap
type toUnicodeMap struct {
	chars  map[uint32]string
	ranges []cmapRange
}

func (m *toUnicodeMap) lookup(code uint32) (string, bool) {
	if m == nil {
		return "", false
	}
	if s, ok := m.chars[code]; ok {
		return s, true
	}
	for _, r := range m.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		offset := code - r.lo
		if r.list != nil {
			if int(offset) < len(r.list) {
				return r.list[offset], true
			}
			return "", false
		}
		if len(r.start) == 0 {
			return "", false
		}
		dst := append([]rune(nil), r.start...)
		dst[len(dst)-1] += rune(offset)
		return string(dst), true
	}
	return "", false
}

// parseToUnicode reads the bfchar and bfrange sections of a CMap stream.
// CMap syntax is close enough to content-stream syntax for the same lexer.
func parseToUnicode(data []byte) (*toUnicodeMap, error) {
	m := &toUnicodeMap{chars: map[uint32]string{}}
	lexer := &contentLexer{data: data}
	err := lexer.each(func(op string, args []operand) error {
		switch op {
		case "endbfchar":
			for i := 0; i+1 < len(args); i += 2 {
				if args[i].kind != operandString || args[i+1].kind != operandString {
					continue
				}
				m.chars[codeValue(args[i].str)] = string(utf16BE(args[i+1].str))
			}
		case "endbfrange":
			for i := 0; i+2 < len(args); i += 3 {
				if args[i].kind != operandString || args[i+1].kind != operandString {
					continue
				}
				r := cmapRange{lo: codeValue(args[i].str), hi: codeValue(args[i+1].str)}
				if r.hi < r.lo {
					continue
				}
				switch dst := args[i+2]; dst.kind {
				case operandString:
					r.start = utf16BE(dst.str)
				case operandArray:
					r.list = make([]string, 0, len(dst.items))
					for _, item := range dst.items {
						r.list = append(r.list, string(utf16BE(item.str)))
					}
				default:
					continue
				}
				m.ranges = append(m.ranges, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(m.chars) == 0 && len(m.ranges) == 0 {
		return nil, errors.New("cmap has no mappings")
	}
	return m, nil
}

func codeValue(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

func utf16BE(b []byte) []rune {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return utf16.Decode(units)
}
