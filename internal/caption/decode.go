package caption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/dimchansky/utfbom"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

var errNotUTF8 = errors.New("content is not valid UTF-8")

// ReadText loads a whole input file as text. Open and decode failures are
// returned as *InputError.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &InputError{Path: path, Err: err}
	}
	text, err := DecodeText(data)
	if err != nil {
		ie := &InputError{Path: path, Err: err}
		if errors.Is(err, errNotUTF8) {
			ie.Charset = detectCharset(data)
		}
		return "", ie
	}
	return text, nil
}

// DecodeText strips a byte order mark, decodes UTF-16/UTF-32 when the mark
// says so, and otherwise requires valid UTF-8.
func DecodeText(data []byte) (string, error) {
	rd, enc := utfbom.Skip(bytes.NewReader(data))

	var decoder *encoding.Decoder
	switch enc {
	case utfbom.UTF16BigEndian:
		decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case utfbom.UTF16LittleEndian:
		decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case utfbom.UTF32BigEndian:
		decoder = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewDecoder()
	case utfbom.UTF32LittleEndian:
		decoder = utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewDecoder()
	}

	var src io.Reader = rd
	if decoder != nil {
		src = transform.NewReader(rd, decoder)
	}

	out, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s text: %w", enc, err)
	}
	if !utf8.Valid(out) {
		return "", errNotUTF8
	}
	return string(out), nil
}

func detectCharset(data []byte) string {
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil {
		return ""
	}
	return res.Charset
}
