// Package ingest turns raw uploaded text into uniquely named, deduplicated
// quest units: decode, split into blocks, classify headers, name, persist.
package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// Decode converts uploaded bytes to a string. Valid UTF-8 is taken as-is;
// anything else falls back to EUC-KR, the legacy encoding statute files are
// commonly exported in. Line endings are normalized to "\n".
func Decode(raw []byte) (string, error) {
	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		decoded, err := korean.EUCKR.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("failed to decode upload as UTF-8 or EUC-KR: %w", err)
		}
		text = string(decoded)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}
