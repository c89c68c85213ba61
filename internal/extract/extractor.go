package extract

import (
	"errors"
	"strings"
)

var ErrUnsupportedFileType = errors.New("unsupported resume file type")

// TextExtractor turns an uploaded resume into plain text. Real PDF/DOCX
// extraction lives outside this service; interview start only needs the
// contract.
type TextExtractor interface {
	ExtractText(data []byte, fileType string) (string, error)
}

// PlainText handles already-plain resume uploads and rejects binary formats.
type PlainText struct{}

func (PlainText) ExtractText(data []byte, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "txt", "text", "md":
		return string(data), nil
	default:
		return "", ErrUnsupportedFileType
	}
}
