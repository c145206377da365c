package core

// encodings.go defines the candidate text encodings the loader can try.
//
// Every candidate turns the raw file bytes into UTF-8 text or fails with a
// DecodeError. Single-byte charmaps accept any input, so they only fail when
// the input cannot be read at all; strict candidates (UTF-8, UTF-16 with BOM)
// reject input that is not valid in their encoding.

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncodings is the candidate order used when none is configured.
var DefaultEncodings = []string{"utf-8", "latin-1", "iso-8859-1"}

// Encoding is a named candidate text encoding.
type Encoding struct {
	// Name is the canonical name reported in load results and logs.
	Name string

	newTransformer func() transform.Transformer
	skipBOM        bool
}

// Decode converts raw bytes to UTF-8 text using this encoding.
// Returns a *DecodeError if the bytes are not valid in the encoding.
func (e Encoding) Decode(raw []byte) (string, error) {
	var r io.Reader = bytes.NewReader(raw)
	if e.skipBOM {
		r = NewBOMSkippingReader(r)
	}

	out, err := io.ReadAll(transform.NewReader(r, e.newTransformer()))
	if err != nil {
		return "", &DecodeError{Encoding: e.Name, Err: err}
	}
	return string(out), nil
}

var (
	encodingUTF8 = Encoding{
		Name:           "utf-8",
		newTransformer: func() transform.Transformer { return encoding.UTF8Validator },
		skipBOM:        true,
	}
	encodingLatin1 = Encoding{
		Name:           "latin-1",
		newTransformer: func() transform.Transformer { return charmap.ISO8859_1.NewDecoder() },
	}
	encodingISO88591 = Encoding{
		Name:           "iso-8859-1",
		newTransformer: func() transform.Transformer { return charmap.ISO8859_1.NewDecoder() },
	}
	encodingWindows1252 = Encoding{
		Name:           "windows-1252",
		newTransformer: func() transform.Transformer { return charmap.Windows1252.NewDecoder() },
	}
	encodingUTF16 = Encoding{
		Name: "utf-16",
		newTransformer: func() transform.Transformer {
			return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		},
	}
)

// encodingAliases maps accepted spellings to candidates. Latin-1 and
// ISO-8859-1 share a charmap but stay separate candidates so the configured
// order is reported faithfully.
var encodingAliases = map[string]Encoding{
	"utf-8":        encodingUTF8,
	"utf8":         encodingUTF8,
	"latin-1":      encodingLatin1,
	"latin1":       encodingLatin1,
	"l1":           encodingLatin1,
	"iso-8859-1":   encodingISO88591,
	"iso8859-1":    encodingISO88591,
	"iso_8859_1":   encodingISO88591,
	"windows-1252": encodingWindows1252,
	"cp1252":       encodingWindows1252,
	"utf-16":       encodingUTF16,
	"utf16":        encodingUTF16,
}

// LookupEncoding returns the candidate registered under name (case-insensitive).
func LookupEncoding(name string) (Encoding, error) {
	enc, ok := encodingAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Encoding{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// LookupEncodings resolves an ordered list of names. An empty list resolves
// to DefaultEncodings.
func LookupEncodings(names []string) ([]Encoding, error) {
	if len(names) == 0 {
		names = DefaultEncodings
	}
	encs := make([]Encoding, 0, len(names))
	for _, name := range names {
		enc, err := LookupEncoding(name)
		if err != nil {
			return nil, err
		}
		encs = append(encs, enc)
	}
	return encs, nil
}
