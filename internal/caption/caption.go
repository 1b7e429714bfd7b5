package caption

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// single timed caption, times are seconds from media start
type Record struct {
	Start       float64
	End         float64
	Text        string
	Translation string
}

// ordered captions for one episode
type Episode struct {
	ID      EpisodeID
	Records []Record
}

// represents output field naming
type Schema string

const (
	SchemaEnVi            Schema = "en-vi"
	SchemaTextTranslation Schema = "text-translation"
)

func ParseSchema(s string) (Schema, error) {
	switch Schema(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemaEnVi:
		return SchemaEnVi, nil
	case SchemaTextTranslation:
		return SchemaTextTranslation, nil
	default:
		return "", fmt.Errorf(
			"unsupported schema %q: use %s or %s",
			s,
			SchemaEnVi,
			SchemaTextTranslation,
		)
	}
}

// block or object that was dropped during parsing
type Skip struct {
	Index  int
	Reason string
}

// output of one extraction pass
type Result struct {
	Records []Record
	Skipped []Skip
}

// Normalize trims both text fields and drops records that are not well
// formed: empty text, negative start, or end before start. Text is
// otherwise kept byte for byte. Applying it twice yields the same slice
// contents.
func Normalize(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		r.Text = strings.TrimSpace(r.Text)
		r.Translation = strings.TrimSpace(r.Translation)
		if !r.valid() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ComposeNFC rewrites both text fields in Unicode NFC, so decomposed
// diacritics become single code points. The input slice is not modified.
func ComposeNFC(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Text = norm.NFC.String(r.Text)
		r.Translation = norm.NFC.String(r.Translation)
		out[i] = r
	}
	return out
}

func (r Record) valid() bool {
	return r.Text != "" && r.Start >= 0 && r.End >= r.Start
}
