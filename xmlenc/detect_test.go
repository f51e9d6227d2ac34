package xmlenc

import (
	"strings"
	"testing"
)

func TestDetectBOM(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"utf-8 BOM", []byte{0xEF, 0xBB, 0xBF, '<', '?'}, "utf-8"},
		{"utf-16le BOM", []byte{0xFF, 0xFE, '<', 0x00}, "utf-16le"},
		{"utf-16be BOM", []byte{0xFE, 0xFF, 0x00, '<'}, "utf-16be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.data)
			if got.Encoding != tt.want {
				t.Errorf("Detect() encoding = %v, want %v", got.Encoding, tt.want)
			}
			if !got.BOM {
				t.Error("Detect() BOM = false, want true")
			}
		})
	}
}

func TestDetectDeclaration(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><article/>`)
	got := Detect(data)
	if got.Encoding != "iso-8859-1" {
		t.Errorf("Detect() encoding = %v, want iso-8859-1", got.Encoding)
	}
	if !got.Declared {
		t.Error("Detect() Declared = false, want true")
	}
}

func TestDetectAlias(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="US-ASCII"?><article/>`)
	if got := Detect(data); got.Encoding != "utf-8" {
		t.Errorf("Detect() encoding = %v, want utf-8", got.Encoding)
	}
}

func TestNormalizeStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<article/>")...)
	out, det, err := Normalize(data)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if det.Encoding != "utf-8" {
		t.Errorf("encoding = %v, want utf-8", det.Encoding)
	}
	if string(out) != "<article/>" {
		t.Errorf("output = %q, want %q", out, "<article/>")
	}
}

func TestDetectBOMlessUTF16(t *testing.T) {
	// NUL-interleaved ASCII is byte-valid UTF-8; detection must still
	// recognize it as UTF-16 from the NUL pattern alone.
	src := `<?xml version="1.0"?><article><front/></article>`
	var le, be []byte
	for _, r := range src {
		le = append(le, byte(r), 0x00)
		be = append(be, 0x00, byte(r))
	}

	for _, tt := range []struct {
		name string
		data []byte
		want string
	}{
		{"little endian", le, "utf-16le"},
		{"big endian", be, "utf-16be"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.data)
			if got.Encoding != tt.want {
				t.Fatalf("Detect() encoding = %v, want %v", got.Encoding, tt.want)
			}
			if got.BOM {
				t.Error("Detect() BOM = true, want false")
			}
			out, _, err := Normalize(tt.data)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if string(out) != src {
				t.Errorf("Normalize() = %q, want %q", out, src)
			}
		})
	}
}

func TestNormalizeUTF16(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-16"?><article><front/></article>`
	var buf []byte
	buf = append(buf, 0xFF, 0xFE)
	for _, r := range src {
		buf = append(buf, byte(r), 0x00)
	}
	out, _, err := Normalize(buf)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<article><front/></article>") {
		t.Errorf("output does not contain article markup: %q", s)
	}
	if strings.Contains(strings.ToLower(s), "utf-16") {
		t.Errorf("output still declares utf-16: %q", s)
	}
}
