package pdf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
)

// Word 97-2003 File Information Block offsets
const (
	fibFlagsOffset  = 0x000A
	fibWhichTblStm  = 0x0200
	fibEncrypted    = 0x0100
	fibFcClxOffset  = 0x01A2
	fibLcbClxOffset = 0x01A6
	wordIdent       = 0xA5EC

	clxPrc  = 0x01
	clxPcdt = 0x02
	pcdSize = 8
)

// extractDocText reads the text of a legacy .doc through its piece table.
func extractDocText(data []byte) (string, error) {
	streams, err := readCompoundStreams(data, "WordDocument", "0Table", "1Table")
	if err != nil {
		return "", err
	}

	wordDoc := streams["WordDocument"]
	if len(wordDoc) < fibLcbClxOffset+4 {
		return "", fmt.Errorf("WordDocument stream missing or truncated")
	}
	if binary.LittleEndian.Uint16(wordDoc[0:2]) != wordIdent {
		return "", fmt.Errorf("WordDocument stream has no Word signature")
	}

	flags := binary.LittleEndian.Uint16(wordDoc[fibFlagsOffset:])
	if flags&fibEncrypted != 0 {
		return "", fmt.Errorf("document is encrypted")
	}
	tableName := "0Table"
	if flags&fibWhichTblStm != 0 {
		tableName = "1Table"
	}
	table := streams[tableName]
	if table == nil {
		return "", fmt.Errorf("%s stream not found", tableName)
	}

	fcClx := binary.LittleEndian.Uint32(wordDoc[fibFcClxOffset:])
	lcbClx := binary.LittleEndian.Uint32(wordDoc[fibLcbClxOffset:])
	if lcbClx == 0 || uint64(fcClx)+uint64(lcbClx) > uint64(len(table)) {
		return "", fmt.Errorf("piece table out of range")
	}

	text, err := readPieces(wordDoc, table[fcClx:fcClx+lcbClx])
	if err != nil {
		return "", err
	}
	return cleanWordText(text), nil
}

func readCompoundStreams(data []byte, names ...string) (map[string][]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	streams := make(map[string][]byte)
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read compound file: %w", err)
		}
		if !wanted[entry.Name] || streams[entry.Name] != nil {
			continue
		}
		buf := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, buf); err != nil {
			return nil, fmt.Errorf("read %s stream: %w", entry.Name, err)
		}
		streams[entry.Name] = buf
	}
	return streams, nil
}

// readPieces walks the Clx: optional Prc blocks followed by one Pcdt holding
// the PlcPcd (n+1 character positions then n piece descriptors).
func readPieces(wordDoc, clx []byte) (string, error) {
	pos := 0
	for pos < len(clx) && clx[pos] == clxPrc {
		if pos+3 > len(clx) {
			return "", fmt.Errorf("truncated Prc")
		}
		cb := int(binary.LittleEndian.Uint16(clx[pos+1:]))
		pos += 3 + cb
	}
	if pos+5 > len(clx) || clx[pos] != clxPcdt {
		return "", fmt.Errorf("piece table descriptor not found")
	}
	lcb := int(binary.LittleEndian.Uint32(clx[pos+1:]))
	plc := clx[pos+5:]
	if lcb > len(plc) || lcb < 4+pcdSize+4 {
		return "", fmt.Errorf("piece table truncated")
	}
	plc = plc[:lcb]

	n := (lcb - 4) / (4 + pcdSize)
	cps := make([]uint32, n+1)
	for i := range cps {
		cps[i] = binary.LittleEndian.Uint32(plc[i*4:])
	}
	pcds := plc[(n+1)*4:]

	decoder := charmap.Windows1252.NewDecoder()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if cps[i+1] < cps[i] {
			return "", fmt.Errorf("piece %d has negative length", i)
		}
		chars := int(cps[i+1] - cps[i])
		fc := binary.LittleEndian.Uint32(pcds[i*pcdSize+2:])
		compressed := fc&(1<<30) != 0
		offset := int(fc &^ (1 << 30))

		if compressed {
			offset /= 2
			if offset+chars > len(wordDoc) {
				return "", fmt.Errorf("piece %d out of range", i)
			}
			decoded, err := decoder.Bytes(wordDoc[offset : offset+chars])
			if err != nil {
				return "", fmt.Errorf("decode piece %d: %w", i, err)
			}
			sb.Write(decoded)
			continue
		}

		if offset+chars*2 > len(wordDoc) {
			return "", fmt.Errorf("piece %d out of range", i)
		}
		units := make([]uint16, chars)
		for j := range units {
			units[j] = binary.LittleEndian.Uint16(wordDoc[offset+j*2:])
		}
		sb.WriteString(string(utf16.Decode(units)))
	}
	return sb.String(), nil
}

// cleanWordText maps Word's control characters onto plain text.
// Paragraph, cell and row marks become line breaks; field instructions are
// dropped and field results kept.
func cleanWordText(s string) string {
	var sb strings.Builder
	var fields []bool // true while inside a field's instruction part
	inInstruction := func() bool {
		for _, instr := range fields {
			if instr {
				return true
			}
		}
		return false
	}

	for _, r := range s {
		switch r {
		case 0x13: // field begin
			fields = append(fields, true)
			continue
		case 0x14: // field separator
			if len(fields) > 0 {
				fields[len(fields)-1] = false
			}
			continue
		case 0x15: // field end
			if len(fields) > 0 {
				fields = fields[:len(fields)-1]
			}
			continue
		}
		if inInstruction() {
			continue
		}
		switch {
		case r == '\r' || r == '\n' || r == 0x07 || r == 0x0B || r == 0x0C:
			sb.WriteByte('\n')
		case r == '\t':
			sb.WriteByte(' ')
		case r >= 0x20:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
