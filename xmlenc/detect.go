// Package xmlenc normalizes the character encoding of article XML before
// parsing. Publisher archives ship UTF-8 almost exclusively, but older
// deposits carry UTF-16 with or without a BOM, and some declare legacy
// single-byte encodings in the XML prolog.
package xmlenc

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Aliases seen in real article prologs, mapped to canonical labels that
// charset readers understand.
var encodingAliases = map[string]string{
	"ascii":     "utf-8",
	"us-ascii":  "utf-8",
	"macintosh": "mac-roman",
	"latin1":    "iso-8859-1",
	"latin-1":   "iso-8859-1",
}

var boms = []struct {
	bom      []byte
	encoding string
}{
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, "utf-32be"},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, "utf-32le"},
	{[]byte{0xEF, 0xBB, 0xBF}, "utf-8"},
	{[]byte{0xFF, 0xFE}, "utf-16le"},
	{[]byte{0xFE, 0xFF}, "utf-16be"},
}

var xmlDeclPattern = regexp.MustCompile(`<\?xml[^<>]+encoding\s*=\s*['"]([^'"]+)['"][^<>]*\?>`)

// DetectResult describes how the input encoding was determined.
type DetectResult struct {
	Encoding string
	BOM      bool
	Declared bool
}

// Detect inspects raw article bytes and reports their encoding. BOM wins
// over the prolog declaration, which wins over heuristics.
func Detect(raw []byte) DetectResult {
	if len(raw) == 0 {
		return DetectResult{Encoding: "utf-8"}
	}
	for _, b := range boms {
		if bytes.HasPrefix(raw, b.bom) {
			return DetectResult{Encoding: b.encoding, BOM: true}
		}
	}
	prefix := raw
	if len(prefix) > 4096 {
		prefix = prefix[:4096]
	}
	if m := xmlDeclPattern.FindSubmatch(prefix); len(m) > 1 {
		return DetectResult{Encoding: normalize(string(m[1])), Declared: true}
	}
	// NUL-interleaved ASCII is byte-valid UTF-8, so the UTF-16 probes
	// must run before assuming UTF-8.
	if looksLikeUTF16(raw, 1) {
		return DetectResult{Encoding: "utf-16le"}
	}
	if looksLikeUTF16(raw, 0) {
		return DetectResult{Encoding: "utf-16be"}
	}
	return DetectResult{Encoding: "utf-8"}
}

func normalize(enc string) string {
	enc = strings.ToLower(strings.TrimSpace(enc))
	if alias, ok := encodingAliases[enc]; ok {
		return alias
	}
	enc = strings.ReplaceAll(enc, "_", "-")
	enc = strings.ReplaceAll(enc, "utf8", "utf-8")
	enc = strings.ReplaceAll(enc, "utf16", "utf-16")
	return enc
}

// looksLikeUTF16 reports whether the byte at the given parity within each
// 16-bit unit is predominantly NUL, which is what ASCII-heavy XML looks
// like in UTF-16.
func looksLikeUTF16(data []byte, parity int) bool {
	if len(data) < 2 || len(data)%2 != 0 {
		return false
	}
	limit := len(data)
	if limit > 100 {
		limit = 100
	}
	nulls := 0
	for i := parity; i < limit; i += 2 {
		if data[i] == 0 {
			nulls++
		}
	}
	return float64(nulls)/float64(limit/2) > 0.7
}

// Normalize returns the input as UTF-8 bytes with any BOM stripped. UTF-16
// variants are decoded here; other declared encodings are left to the XML
// reader's charset hook, which understands the declaration label.
func Normalize(raw []byte) ([]byte, DetectResult, error) {
	det := Detect(raw)
	switch det.Encoding {
	case "utf-16le", "utf-16":
		out, err := decodeUTF16(raw, unicode.LittleEndian)
		return out, det, err
	case "utf-16be":
		out, err := decodeUTF16(raw, unicode.BigEndian)
		return out, det, err
	case "utf-8":
		return bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), det, nil
	default:
		return raw, det, nil
	}
}

func decodeUTF16(raw []byte, endianness unicode.Endianness) ([]byte, error) {
	dec := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("xmlenc: utf-16 decode failed: %w", err)
	}
	// The declaration still names utf-16; drop it so downstream parsers do
	// not try to re-decode.
	return xmlDeclPattern.ReplaceAll(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)), nil
}
