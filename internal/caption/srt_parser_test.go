package caption

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		rounded float64
	}{
		{"00:00:00,000", 0, 0},
		{"00:00:03,602", 3.602, 3.6},
		{"00:00:05,437", 5.437, 5.44},
		// exact halves round away from zero
		{"00:00:01,125", 1.125, 1.13},
		{"00:00:02,875", 2.875, 2.88},
		{"00:01:00,500", 60.5, 60.5},
		{"01:02:03,000", 3723, 3723},
		{"10:00:00,010", 36000.01, 36000.01},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) returned error: %v", tt.in, err)
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if r := Round2(got); r != tt.rounded {
				t.Errorf("Round2(%v) = %v, want %v", got, r, tt.rounded)
			}
		})
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, in := range []string{"", "garbage", "00:00", "aa:00:01,000", "00:bb:01,000", "00:00:cc"} {
		if _, err := ParseTimestamp(in); err == nil {
			t.Errorf("ParseTimestamp(%q): expected error", in)
		}
	}
}

func TestParseTimedBlocksRoundTrip(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,500\nHi there\n\n2\n00:00:03,000 --> 00:00:04,000\n<b>Bye</b>\n"

	res := ParseTimedBlocks(content, ParseOptions{})
	if len(res.Skipped) != 0 {
		t.Fatalf("expected no skipped blocks, got %+v", res.Skipped)
	}

	data, err := Marshal(res.Records, SchemaEnVi)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, data)
	}

	want := `[{"start":1.0,"end":2.5,"en":"Hi there","vi":""},{"start":3.0,"end":4.0,"en":"Bye","vi":""}]`
	if compact.String() != want {
		t.Errorf("got  %s\nwant %s", compact.String(), want)
	}
}

func TestParseTimedBlocks(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		opts        ParseOptions
		want        []Record
		wantSkipped int
	}{
		{
			name: "order preserved",
			content: `1
00:00:01,000 --> 00:00:02,000
A

2
00:00:03,000 --> 00:00:04,000
B

3
00:00:05,000 --> 00:00:06,000
C
`,
			want: []Record{
				{Start: 1, End: 2, Text: "A"},
				{Start: 3, End: 4, Text: "B"},
				{Start: 5, End: 6, Text: "C"},
			},
		},
		{
			name: "multiple text lines are joined",
			content: `7
00:00:03,602 --> 00:00:05,437
This is a test.
With multiple lines.
And a third.
`,
			want: []Record{
				{Start: 3.6, End: 5.44, Text: "This is a test. With multiple lines. And a third."},
			},
		},
		{
			name: "block without text is skipped",
			content: `1
00:00:01,000 --> 00:00:02,000

2
00:00:03,000 --> 00:00:04,000
Kept
`,
			want:        []Record{{Start: 3, End: 4, Text: "Kept"}},
			wantSkipped: 1,
		},
		{
			name: "malformed timing line is skipped",
			content: `1
garbage
Never shown

2
00:00:03,000 --> 00:00:04,000
Shown
`,
			want:        []Record{{Start: 3, End: 4, Text: "Shown"}},
			wantSkipped: 1,
		},
		{
			name:        "markup only text is dropped",
			content:     "1\n00:00:01,000 --> 00:00:02,000\n<i></i>\n",
			want:        nil,
			wantSkipped: 1,
		},
		{
			name:    "markup and whitespace cleanup",
			content: "1\n00:00:01,000 --> 00:00:02,000\nHello <i>world</i>  there\n",
			want:    []Record{{Start: 1, End: 2, Text: "Hello world there"}},
		},
		{
			name:    "keep markup",
			content: "1\n00:00:01,000 --> 00:00:02,000\n<i>Hello</i>   world\n",
			opts:    ParseOptions{KeepMarkup: true},
			want:    []Record{{Start: 1, End: 2, Text: "<i>Hello</i> world"}},
		},
		{
			name:    "windows line endings and extra blank lines",
			content: "1\r\n00:00:01,000 --> 00:00:02,000\r\nOne\r\n\r\n\r\n   \r\n2\r\n00:00:02,000 --> 00:00:03,000\r\nTwo\r\n",
			want: []Record{
				{Start: 1, End: 2, Text: "One"},
				{Start: 2, End: 3, Text: "Two"},
			},
		},
		{
			name:    "timing without spaces around arrow",
			content: "1\n00:00:01,000-->00:00:02,000\nTight\n",
			want:    []Record{{Start: 1, End: 2, Text: "Tight"}},
		},
		{
			name:    "unicode space separator line and text runs",
			content: "1\n00:00:01,000 --> 00:00:02,000\nHello\u00a0\u00a0world\u2003 there\n\u00a0\n2\n00:00:03,000 --> 00:00:04,000\nBye\n",
			want: []Record{
				{Start: 1, End: 2, Text: "Hello world there"},
				{Start: 3, End: 4, Text: "Bye"},
			},
		},
		{
			name:    "no-break spaces around arrow",
			content: "1\n00:00:01,000\u00a0-->\u00a000:00:02,000\nSpaced\n",
			want:    []Record{{Start: 1, End: 2, Text: "Spaced"}},
		},
		{
			name:    "empty input",
			content: "  \n\n ",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseTimedBlocks(tt.content, tt.opts)
			if diff := cmp.Diff(tt.want, res.Records); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
			if len(res.Skipped) != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d (%+v)", len(res.Skipped), tt.wantSkipped, res.Skipped)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello <i>world</i>  there", "Hello world there"},
		{"<font color=\"#ffff00\">Yellow</font>", "Yellow"},
		{"  spaced\tout\nlines  ", "spaced out lines"},
		{"<b></b>", ""},
		{"Không có gì", "Không có gì"},
		{"a\u00a0\u00a0b\u2003 c\u3000", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
