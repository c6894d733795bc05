package csv

import (
	"bytes"
	"io"
)

var bom = []byte{0xef, 0xbb, 0xbf}

// Read returns the text of an uploaded file with any UTF-8 byte order mark
// removed.
func Read(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	data = bytes.TrimPrefix(data, bom)
	return string(data), nil
}

// ReadTable reads an upload and parses it.
func ReadTable(r io.Reader) (*Table, error) {
	text, err := Read(r)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}
