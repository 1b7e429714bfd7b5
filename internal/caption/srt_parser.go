package caption

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RE2 \s is ASCII only; [\s\p{Z}] also covers NBSP, em space and friends
var (
	blockSeparatorRegex = regexp.MustCompile(`\n[\s\p{Z}]*\n`)
	timingRegex         = regexp.MustCompile(
		`^(\d{2}:\d{2}:\d{2},\d{3})[\s\p{Z}]*-->[\s\p{Z}]*(\d{2}:\d{2}:\d{2},\d{3})`,
	)
	markupRegex     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRegex = regexp.MustCompile(`[\s\p{Z}]+`)
)

type ParseOptions struct {
	// leave <i>, <font ...> and similar tags in the text
	KeepMarkup bool
}

// ParseTimedBlocks converts sequential subtitle blocks (index, timing line,
// text lines) into records. Malformed blocks are reported in Result.Skipped
// and never abort the parse.
func ParseTimedBlocks(content string, opts ParseOptions) Result {
	content = normalizeNewlines(content)
	content = strings.TrimSpace(content)

	var result Result
	if content == "" {
		return result
	}

	for i, block := range blockSeparatorRegex.Split(content, -1) {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}
		if len(lines) < 3 {
			result.Skipped = append(result.Skipped, Skip{
				Index:  i,
				Reason: fmt.Sprintf("expected at least 3 lines, got %d", len(lines)),
			})
			continue
		}

		// lines[0] is the sequence number and carries nothing we need
		matches := timingRegex.FindStringSubmatch(lines[1])
		if matches == nil {
			result.Skipped = append(result.Skipped, Skip{
				Index:  i,
				Reason: fmt.Sprintf("invalid timing line %q", lines[1]),
			})
			continue
		}

		start, err := ParseTimestamp(matches[1])
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{Index: i, Reason: err.Error()})
			continue
		}
		end, err := ParseTimestamp(matches[2])
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{Index: i, Reason: err.Error()})
			continue
		}

		text := strings.Join(lines[2:], " ")
		if !opts.KeepMarkup {
			text = StripMarkup(text)
		}
		text = CollapseWhitespace(text)
		if text == "" {
			result.Skipped = append(result.Skipped, Skip{Index: i, Reason: "empty text"})
			continue
		}

		result.Records = append(result.Records, Record{
			Start: Round2(start),
			End:   Round2(end),
			Text:  text,
		})
	}

	return result
}

// ParseTimestamp converts HH:MM:SS,mmm to seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.Replace(strings.TrimSpace(value), ",", ".", 1)
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", value, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", value, err)
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", value, err)
	}

	return float64(hours*3600+minutes*60) + secs, nil
}

// rounds to 2 decimal places, half away from zero
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func StripMarkup(text string) string {
	return markupRegex.ReplaceAllString(text, "")
}

func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// CleanText strips markup tags and collapses whitespace.
func CleanText(text string) string {
	return CollapseWhitespace(StripMarkup(text))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func nonEmptyLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
