package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Load reads a delimited text file into a dataset. The separator is a single
// rune; the encoding name selects a charset decoder (utf-8 passes bytes
// through). A path that does not resolve yields ErrSourceNotFound, anything
// unparsable yields ErrInvalidInput.
func Load(path string, sep rune, encodingName string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, sep, encodingName)
}

// Read parses delimited text from an arbitrary reader (file upload path).
func Read(r io.Reader, sep rune, encodingName string) (*Dataset, error) {
	dec, err := decoderFor(encodingName)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec)
	}

	cr := csv.NewReader(r)
	cr.Comma = sep

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return FromRecords(header, rows)
}

// decoderFor maps an encoding name to a charset decoder. Nil means the input
// is consumed as-is (UTF-8).
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "koi8-r":
		return charmap.KOI8R.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrInvalidInput, name)
	}
}
