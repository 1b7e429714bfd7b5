package caption

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// always printed with a fraction: 1.0, 3.6, 3723.0
type seconds float64

func (s seconds) MarshalJSON() ([]byte, error) {
	out := strconv.FormatFloat(float64(s), 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return []byte(out), nil
}

// field order of these structs is the order written to disk
type enViRecord struct {
	Start seconds `json:"start"`
	End   seconds `json:"end"`
	En    string  `json:"en"`
	Vi    string  `json:"vi"`
}

type textTranslationRecord struct {
	Start       seconds `json:"start"`
	End         seconds `json:"end"`
	Text        string  `json:"text"`
	Translation string  `json:"translation"`
}

// writes one JSON file per episode
type Writer struct {
	Dir    string
	Prefix string
	Suffix string
	Schema Schema
}

// file name for an episode: <prefix>_<id><suffix>.json
func (w *Writer) Path(id EpisodeID) string {
	name := id.String() + w.Suffix + ".json"
	if w.Prefix != "" {
		name = w.Prefix + "_" + name
	}
	return filepath.Join(w.Dir, name)
}

// Write serializes the episode and replaces any previous output file.
func (w *Writer) Write(ep Episode) (string, error) {
	path := w.Path(ep.ID)

	data, err := Marshal(ep.Records, w.Schema)
	if err != nil {
		return path, &WriteError{Path: path, Err: err}
	}

	if err := ensureDir(path); err != nil {
		return path, &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".captionprep-*.tmp")
	if err != nil {
		return path, &WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return path, &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return path, &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return path, &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return path, &WriteError{Path: path, Err: err}
	}

	return path, nil
}

// Marshal renders records as indented UTF-8 JSON using the schema's field
// names. Non-ASCII text is written as is.
func Marshal(records []Record, schema Schema) ([]byte, error) {
	var rows interface{}
	switch schema {
	case "", SchemaEnVi:
		out := make([]enViRecord, len(records))
		for i, r := range records {
			out[i] = enViRecord{
				Start: seconds(r.Start),
				End:   seconds(r.End),
				En:    r.Text,
				Vi:    r.Translation,
			}
		}
		rows = out
	case SchemaTextTranslation:
		out := make([]textTranslationRecord, len(records))
		for i, r := range records {
			out[i] = textTranslationRecord{
				Start:       seconds(r.Start),
				End:         seconds(r.End),
				Text:        r.Text,
				Translation: r.Translation,
			}
		}
		rows = out
	default:
		return nil, fmt.Errorf("unsupported schema: %s", schema)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return buf.Bytes(), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
