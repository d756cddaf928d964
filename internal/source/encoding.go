package source

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// Sentinel errors for unusable input files. All are recoverable: the caller
// may pick another file.
var (
	ErrUnreadable         = errors.New("file could not be decoded")
	ErrMissingColumns     = errors.New("required columns missing")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrBalanceCountMisfit = errors.New("balance list does not match period count")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encoding names reported in ParseResult.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift-jis"
)

// decodeText returns raw as UTF-8. Valid UTF-8 (with or without a BOM) is
// used as-is; anything else is decoded as Shift-JIS.
func decodeText(raw []byte) ([]byte, string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, EncodingUTF8, nil
	}

	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return nil, "", fmt.Errorf("%w: neither utf-8 nor shift-jis", ErrUnreadable)
	}
	return out, EncodingShiftJIS, nil
}
