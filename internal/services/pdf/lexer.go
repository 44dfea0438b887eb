package pdf

import (
	"bytes"
	"fmt"
	"strconv"
)

type operandKind int

const (
	operandNumber operandKind = iota
	operandName
	operandString
	operandArray
	operandDict
	operandOther
)

// operand is one content-stream operand
type operand struct {
	kind  operandKind
	num   float64
	name  string
	str   []byte
	items []operand
}

// contentLexer splits a decoded content stream into operands and operators
type contentLexer struct {
	data []byte
	pos  int
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *contentLexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isWhitespace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *contentLexer) regular() []byte {
	start := l.pos
	for l.pos < len(l.data) && !isWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return l.data[start:l.pos]
}

// each calls fn for every operator with the operands that preceded it
func (l *contentLexer) each(fn func(op string, args []operand) error) error {
	var args []operand
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return nil
		}

		c := l.data[l.pos]
		if c == ']' || c == '>' || c == ')' || c == '}' || c == '{' {
			// stray delimiters are tolerated
			l.pos++
			continue
		}
		if isDelimiter(c) || isNumberStart(c) {
			v, err := l.operand()
			if err != nil {
				return err
			}
			args = append(args, v)
			continue
		}

		op := string(l.regular())
		if op == "" {
			l.pos++
			continue
		}
		if op == "true" || op == "false" || op == "null" {
			args = append(args, operand{kind: operandOther, name: op})
			continue
		}
		if op == "ID" {
			l.skipInlineImage()
		}
		if err := fn(op, args); err != nil {
			return err
		}
		args = args[:0]
	}
}

func (l *contentLexer) operand() (operand, error) {
	c := l.data[l.pos]
	switch c {
	case '/':
		l.pos++
		return operand{kind: operandName, name: decodeName(l.regular())}, nil
	case '(':
		s, err := l.literalString()
		return operand{kind: operandString, str: s}, err
	case '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			items, err := l.until(">>")
			return operand{kind: operandDict, items: items}, err
		}
		s, err := l.hexString()
		return operand{kind: operandString, str: s}, err
	case '[':
		l.pos++
		items, err := l.until("]")
		return operand{kind: operandArray, items: items}, err
	}

	tok := l.regular()
	if len(tok) == 0 {
		l.pos++
		return operand{kind: operandOther}, nil
	}
	v, err := strconv.ParseFloat(string(tok), 64)
	if err != nil {
		return operand{kind: operandOther, name: string(tok)}, nil
	}
	return operand{kind: operandNumber, num: v}, nil
}

// until collects operands up to the closing delimiter
func (l *contentLexer) until(end string) ([]operand, error) {
	var items []operand
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return nil, fmt.Errorf("unterminated %q at offset %d", end, l.pos)
		}
		if bytes.HasPrefix(l.data[l.pos:], []byte(end)) {
			l.pos += len(end)
			return items, nil
		}

		c := l.data[l.pos]
		switch {
		case c == '/' || c == '(' || c == '<' || c == '[' || isNumberStart(c):
			v, err := l.operand()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		case isDelimiter(c):
			l.pos++
		default:
			// keywords such as true/false/null
			items = append(items, operand{kind: operandOther, name: string(l.regular())})
		}
	}
}

func isNumberStart(c byte) bool {
	return c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9')
}

func (l *contentLexer) literalString() ([]byte, error) {
	start := l.pos
	l.pos++ // (
	depth := 1
	var out []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out, nil
			}
			out = append(out, c)
		case '\\':
			if l.pos >= len(l.data) {
				return nil, fmt.Errorf("unterminated string at offset %d", start)
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return nil, fmt.Errorf("unterminated string at offset %d", start)
}

func (l *contentLexer) hexString() ([]byte, error) {
	start := l.pos
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := range out {
				out[i] = unhex(digits[2*i])<<4 | unhex(digits[2*i+1])
			}
			return out, nil
		}
		if isWhitespace(c) {
			continue
		}
		if unhex(c) == 0xFF {
			return nil, fmt.Errorf("invalid hex string at offset %d", start)
		}
		digits = append(digits, c)
	}
	return nil, fmt.Errorf("unterminated hex string at offset %d", start)
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0xFF
}

func decodeName(raw []byte) string {
	if bytes.IndexByte(raw, '#') < 0 {
		return string(raw)
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) && unhex(raw[i+1]) != 0xFF && unhex(raw[i+2]) != 0xFF {
			out = append(out, unhex(raw[i+1])<<4|unhex(raw[i+2]))
			i += 2
			continue
		}
		out = append(out, raw[i])
	}
	return string(out)
}

// skipInlineImage moves past binary image data up to the EI operator
func (l *contentLexer) skipInlineImage() {
	if l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isWhitespace(l.data[i-1])
		after := i+2 >= len(l.data) || isWhitespace(l.data[i+2])
		if before && after {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.data)
}
