package caption

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var timeRangeSplitRegex = regexp.MustCompile(`[\s\p{Z}]*-{1,2}>[\s\p{Z}]*`)

// LoadJSON reads caption JSON produced by this tool or by the older player
// tooling. The top level is either an array or an object holding a "lines"
// array. Items use {start, end, text|en, vi|translation} or
// {time: "00:03 -> 00:07", en, vi}; anything else is dropped.
func LoadJSON(data []byte) (Result, error) {
	if !gjson.ValidBytes(data) {
		return Result{}, errors.New("invalid JSON document")
	}

	root := gjson.ParseBytes(data)
	var items []gjson.Result
	switch {
	case root.IsArray():
		items = root.Array()
	case root.IsObject():
		items = root.Get("lines").Array()
	default:
		return Result{}, fmt.Errorf("unexpected JSON %s at top level", root.Type)
	}

	var result Result
	for i, item := range items {
		rec, err := recordFromJSON(item)
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{Index: i, Reason: err.Error()})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	kept := Normalize(result.Records)
	if dropped := len(result.Records) - len(kept); dropped > 0 {
		result.Skipped = append(result.Skipped, Skip{
			Index:  -1,
			Reason: fmt.Sprintf("%d records without text or with invalid times", dropped),
		})
	}
	result.Records = kept
	return result, nil
}

func recordFromJSON(item gjson.Result) (Record, error) {
	if !item.IsObject() {
		return Record{}, fmt.Errorf("expected object, got %s", item.Type)
	}

	rec := Record{
		Text:        firstString(item, "text", "en"),
		Translation: firstString(item, "vi", "translation"),
	}

	start, end := item.Get("start"), item.Get("end")
	if start.Exists() && end.Exists() {
		var err error
		if rec.Start, err = jsonSeconds(start); err != nil {
			return Record{}, fmt.Errorf("invalid start: %w", err)
		}
		if rec.End, err = jsonSeconds(end); err != nil {
			return Record{}, fmt.Errorf("invalid end: %w", err)
		}
		return rec, nil
	}

	if timeRange := item.Get("time"); timeRange.Exists() {
		parts := timeRangeSplitRegex.Split(timeRange.String(), 2)
		if len(parts) != 2 {
			return Record{}, fmt.Errorf("invalid time range %q", timeRange.String())
		}
		var err error
		if rec.Start, err = ParseClock(parts[0]); err != nil {
			return Record{}, err
		}
		if rec.End, err = ParseClock(parts[1]); err != nil {
			return Record{}, err
		}
		return rec, nil
	}

	return Record{}, errors.New("missing start/end or time")
}

func firstString(item gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := item.Get(key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func jsonSeconds(v gjson.Result) (float64, error) {
	switch v.Type {
	case gjson.Number:
		return v.Num, nil
	case gjson.String:
		return ParseClock(v.Str)
	default:
		return 0, fmt.Errorf("unexpected %s", v.Type)
	}
}

// ParseClock accepts H:M:S, M:S or plain seconds, with either a comma or a
// dot before the fraction.
func ParseClock(value string) (float64, error) {
	s := strings.Replace(strings.TrimSpace(value), ",", ".", 1)
	if s == "" {
		return 0, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", value)
	}

	var total float64
	for _, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		total = total*60 + n
	}
	return total, nil
}
