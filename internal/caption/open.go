package caption

import (
	"fmt"
	"path/filepath"
	"strings"
)

// represents supported input formats
type Format string

const (
	FormatSRT  Format = "srt"
	FormatBlob Format = "blob"
	FormatJSON Format = "json"
)

// input format based on file extension, blob dumps are usually .txt or .js
func FormatFromExtension(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT, nil
	case ".json":
		return FormatJSON, nil
	case ".txt", ".js":
		return FormatBlob, nil
	default:
		return "", fmt.Errorf("unsupported input format: %s", ext)
	}
}

// ConvertSRTFile reads and parses one timed-block subtitle file.
func ConvertSRTFile(path string, opts ParseOptions) (Result, error) {
	text, err := ReadText(path)
	if err != nil {
		return Result{}, err
	}
	return ParseTimedBlocks(text, opts), nil
}

// ConvertJSONFile loads a caption JSON file in any shape LoadJSON accepts.
func ConvertJSONFile(path string) (Result, error) {
	text, err := ReadText(path)
	if err != nil {
		return Result{}, err
	}
	res, err := LoadJSON([]byte(text))
	if err != nil {
		return Result{}, &InputError{Path: path, Err: err}
	}
	return res, nil
}
