package caption

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	sectionMarkerRegex = regexp.MustCompile(`"episode_(\d+)"[\s\p{Z}]*:[\s\p{Z}]*\[`)
	// no escape handling: a quote inside en/vi ends the field early.
	// "_" marks optional whitespace, Unicode spaces included.
	captionObjectRegex = regexp.MustCompile(
		strings.ReplaceAll(
			`\{_"start"_:_([\d.]+)_,_"end"_:_([\d.]+)_,_"en"_:_"([^"]*)"_,_"vi"_:_"([^"]*)"_\}`,
			"_", `[\s\p{Z}]*`,
		),
	)
)

// selects which episode sections of a blob are extracted
type SectionPolicy struct {
	// scan the blob for every episode marker instead of using From..To
	Discover bool
	From     int
	To       int
}

func RangePolicy(from, to int) SectionPolicy {
	return SectionPolicy{From: from, To: to}
}

func DiscoverPolicy() SectionPolicy {
	return SectionPolicy{Discover: true}
}

// span of one episode inside the blob
type Section struct {
	Number int
	Found  bool
	Start  int
	End    int
}

type sectionMarker struct {
	number   int
	position int
	bodyFrom int
}

// LocateSections finds the text span of each requested episode. Each span
// ends where the next marker in the blob begins, so captions from one
// episode never leak into another. Episodes without a marker are returned
// with Found set to false.
func LocateSections(blob string, policy SectionPolicy) []Section {
	markers := findSectionMarkers(blob)

	// first occurrence wins when a marker repeats
	first := make(map[int]int, len(markers))
	var discovered []int
	for i, m := range markers {
		if _, ok := first[m.number]; ok {
			continue
		}
		first[m.number] = i
		discovered = append(discovered, m.number)
	}

	numbers := discovered
	if !policy.Discover {
		numbers = nil
		for n := policy.From; n <= policy.To; n++ {
			numbers = append(numbers, n)
		}
	}

	sections := make([]Section, 0, len(numbers))
	for _, n := range numbers {
		idx, ok := first[n]
		if !ok {
			sections = append(sections, Section{Number: n})
			continue
		}
		marker := markers[idx]
		end := len(blob)
		if idx+1 < len(markers) {
			end = markers[idx+1].position
		} else if closeAt := findArrayClose(blob[marker.bodyFrom:]); closeAt >= 0 {
			end = marker.bodyFrom + closeAt
		}
		sections = append(sections, Section{
			Number: n,
			Found:  true,
			Start:  marker.bodyFrom,
			End:    end,
		})
	}
	return sections
}

func findSectionMarkers(blob string) []sectionMarker {
	var markers []sectionMarker
	for _, loc := range sectionMarkerRegex.FindAllStringSubmatchIndex(blob, -1) {
		n, err := strconv.Atoi(blob[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		markers = append(markers, sectionMarker{
			number:   n,
			position: loc[0],
			bodyFrom: loc[1],
		})
	}
	return markers
}

// findArrayClose returns the index of the first ']' outside a quoted string
// that is followed by ',', '}' or the end of input, or -1.
func findArrayClose(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ']':
			if inQuote {
				continue
			}
			rest := strings.TrimLeftFunc(s[i+1:], unicode.IsSpace)
			if rest == "" || rest[0] == ',' || rest[0] == '}' {
				return i
			}
		}
	}
	return -1
}

// ExtractObjects pulls every caption object out of a section span in scan
// order. Objects with unparseable numbers or empty English text are skipped.
func ExtractObjects(span string) Result {
	var result Result
	for i, m := range captionObjectRegex.FindAllStringSubmatch(span, -1) {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{
				Index:  i,
				Reason: fmt.Sprintf("invalid start %q", m[1]),
			})
			continue
		}
		end, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{
				Index:  i,
				Reason: fmt.Sprintf("invalid end %q", m[2]),
			})
			continue
		}

		en := strings.TrimSpace(m[3])
		if en == "" {
			result.Skipped = append(result.Skipped, Skip{Index: i, Reason: "empty text"})
			continue
		}

		result.Records = append(result.Records, Record{
			Start:       start,
			End:         end,
			Text:        en,
			Translation: strings.TrimSpace(m[4]),
		})
	}
	return result
}

// extraction output for one blob section
type SectionResult struct {
	Episode EpisodeID
	Found   bool
	Result
}

// ExtractEpisodes locates the requested sections and extracts their
// captions. Output order follows the policy (range order, or order of
// first appearance when discovering).
func ExtractEpisodes(blob string, policy SectionPolicy, season int) []SectionResult {
	sections := LocateSections(blob, policy)
	out := make([]SectionResult, 0, len(sections))
	for _, s := range sections {
		sr := SectionResult{
			Episode: NewEpisodeID(season, s.Number),
			Found:   s.Found,
		}
		if s.Found {
			sr.Result = ExtractObjects(blob[s.Start:s.End])
		}
		out = append(out, sr)
	}
	return out
}
