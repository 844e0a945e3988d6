package script

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var errUnsupportedEncoding = errors.New("script: unsupported encoding")

// decodeReader wraps r so that it yields UTF-8 for the named encoding.
// A leading UTF-8 BOM is dropped for every encoding.
func decodeReader(r io.Reader, enc string) (io.Reader, error) {
	switch strings.ToUpper(strings.ReplaceAll(enc, "_", "-")) {
	case "", EncodingUTF8, "UTF8":
		return skipBOM(r)
	case EncodingLatin1, "ISO-8859-1", "LATIN-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case EncodingWindows1252, "CP1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, errUnsupportedEncoding
	}
}

func skipBOM(r io.Reader) (io.Reader, error) {
	head := make([]byte, len(UTF8BOM))
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	if bytes.Equal(head, []byte(UTF8BOM)) {
		return r, nil
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}
