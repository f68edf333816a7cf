package transcript

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts transcript bytes to UTF-8. With an empty charset the
// encoding is detected: a UTF-16 byte order mark selects UTF-16, valid
// UTF-8 is kept, and anything else is read as Windows-1252, the usual
// encoding of desktop meeting exports. A UTF-8 BOM is always dropped.
func Decode(data []byte, charset string) ([]byte, error) {
	enc, err := encodingFor(data, charset)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("charset decoding failed: %w", err)
		}
		data = out
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

// encodingFor returns nil when data is already UTF-8.
func encodingFor(data []byte, charset string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "":
		switch {
		case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
			return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), nil
		case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
			return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), nil
		case utf8.Valid(data):
			return nil, nil
		default:
			return charmap.Windows1252, nil
		}
	case "utf-8", "utf8":
		return nil, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "iso-8859-1", "latin1", "iso_8859-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, nil
	case "gb2312", "gbk", "gb18030":
		return simplifiedchinese.GBK, nil
	case "big5":
		return traditionalchinese.Big5, nil
	case "shift_jis", "shift-jis", "sjis":
		return japanese.ShiftJIS, nil
	case "euc-jp":
		return japanese.EUCJP, nil
	case "euc-kr":
		return korean.EUCKR, nil
	default:
		return nil, fmt.Errorf("unknown charset: %s", charset)
	}
}
