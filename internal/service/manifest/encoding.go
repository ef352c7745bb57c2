package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is used when the document declares no encoding.
const DefaultEncoding = "UTF-8"

// declarationLimit bounds how far into the document the declaration is searched.
const declarationLimit = 1024

var (
	// xmlDeclaration captures the encoding attribute of a leading XML declaration.
	xmlDeclaration = regexp.MustCompile(`^\s*<\?xml\s[^>]*?\bencoding\s*=\s*["']([A-Za-z][A-Za-z0-9._:-]*)["']`)

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	// errUnsupportedEncoding is returned for a declared encoding with no encoder.
	errUnsupportedEncoding = errors.New("unsupported encoding")
)

// DetectEncoding returns the encoding declared by an XML document, or
// DefaultEncoding when there is none.
func DetectEncoding(document []byte) string {
	head := bytes.TrimPrefix(document, utf8BOM)
	if len(head) > declarationLimit {
		head = head[:declarationLimit]
	}

	if m := xmlDeclaration.FindSubmatch(head); m != nil {
		return string(m[1])
	}

	return DefaultEncoding
}

// Encode converts UTF-8 text into the named IANA encoding.
func Encode(text []byte, name string) ([]byte, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if enc == nil {
		return nil, fmt.Errorf("%s: %w", name, errUnsupportedEncoding)
	}

	encoded, err := enc.NewEncoder().Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("encode as %s: %w", name, err)
	}

	return encoded, nil
}
