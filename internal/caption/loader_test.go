package caption

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        []Record
		wantSkipped int
	}{
		{
			name:  "en-vi array",
			input: `[{"start": 1.0, "end": 2.5, "en": "Hi", "vi": "Chào"}]`,
			want:  []Record{{Start: 1, End: 2.5, Text: "Hi", Translation: "Chào"}},
		},
		{
			name:  "text-translation array",
			input: `[{"start": 3, "end": 4, "text": "Bye", "translation": "Tạm biệt"}]`,
			want:  []Record{{Start: 3, End: 4, Text: "Bye", Translation: "Tạm biệt"}},
		},
		{
			name:  "lines wrapper with time ranges",
			input: `{"title": "ep1", "lines": [{"time": "00:03 -> 00:07", "en": "Wait", "vi": "Đợi"}, {"time": "1:00:01,5-->1:00:03", "en": "Late"}]}`,
			want: []Record{
				{Start: 3, End: 7, Text: "Wait", Translation: "Đợi"},
				{Start: 3601.5, End: 3603, Text: "Late"},
			},
		},
		{
			name:  "clock strings in start and end",
			input: `[{"start": "00:00:05,250", "end": "00:00:06", "en": "Clock"}]`,
			want:  []Record{{Start: 5.25, End: 6, Text: "Clock"}},
		},
		{
			name:  "text preferred over en",
			input: `[{"start": 1, "end": 2, "text": "Primary", "en": "Secondary"}]`,
			want:  []Record{{Start: 1, End: 2, Text: "Primary"}},
		},
		{
			name:        "invalid items are skipped",
			input:       `[{"start": 1, "end": 2, "en": "ok"}, 42, {"en": "no times"}, {"start": true, "end": 1, "en": "bad"}, {"time": "garbage", "en": "x"}]`,
			want:        []Record{{Start: 1, End: 2, Text: "ok"}},
			wantSkipped: 4,
		},
		{
			name:        "normalization drops empty and backwards records",
			input:       `[{"start": 1, "end": 2, "en": "  "}, {"start": 5, "end": 4, "en": "back"}, {"start": 6, "end": 7, "en": " fine "}]`,
			want:        []Record{{Start: 6, End: 7, Text: "fine"}},
			wantSkipped: 1,
		},
		{
			name:  "object without lines",
			input: `{"title": "nothing"}`,
			want:  []Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := LoadJSON([]byte(tt.input))
			if err != nil {
				t.Fatalf("LoadJSON returned error: %v", err)
			}
			if diff := cmp.Diff(tt.want, res.Records); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
			if len(res.Skipped) != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d (%+v)", len(res.Skipped), tt.wantSkipped, res.Skipped)
			}
		})
	}
}

func TestLoadJSONInvalid(t *testing.T) {
	for _, input := range []string{`[{"start": 1,`, `"just a string"`, `12`} {
		if _, err := LoadJSON([]byte(input)); err == nil {
			t.Errorf("LoadJSON(%q): expected error", input)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"7", 7},
		{"7.5", 7.5},
		{"00:07", 7},
		{"01:30", 90},
		{"1:00:00", 3600},
		{"00:00:03,602", 3.602},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if err != nil {
				t.Fatalf("ParseClock(%q) returned error: %v", tt.in, err)
			}
			if d := got - tt.want; d > 1e-9 || d < -1e-9 {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"a:b", "1:2:3:4", "--"} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q): expected error", bad)
		}
	}
}

func TestConvertJSONFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "suite-life_s01e02.json")
	if err := os.WriteFile(good, []byte(`[{"start": 1, "end": 2, "en": "Yo", "vi": "Ê"}]`), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	res, err := ConvertJSONFile(good)
	if err != nil {
		t.Fatalf("ConvertJSONFile failed: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Translation != "Ê" {
		t.Errorf("unexpected records: %+v", res.Records)
	}

	bad := filepath.Join(dir, "broken_s01e03.json")
	if err := os.WriteFile(bad, []byte(`{"lines": [`), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	_, err = ConvertJSONFile(bad)
	if !errors.Is(err, ErrFatalInput) {
		t.Errorf("expected ErrFatalInput for malformed JSON, got %v", err)
	}
}
