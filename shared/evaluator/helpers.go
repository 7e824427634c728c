package evaluator

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// env builds the allow-listed helper registry exposed to expressions.
func (e *Evaluator) env() map[string]any {
	now := func() time.Time { return e.clock() }
	today := func() time.Time { return truncateDay(e.clock()) }

	return map[string]any{
		// date/time
		"now":       now,
		"today":     today,
		"yesterday": func() time.Time { return today().AddDate(0, 0, -1) },
		"tomorrow":  func() time.Time { return today().AddDate(0, 0, 1) },
		"days_ago":  func(n int) time.Time { return today().AddDate(0, 0, -n) },
		"add_days":  func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) },
		"add_months": func(t time.Time, n int) time.Time {
			return t.AddDate(0, n, 0)
		},
		"month_start": func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		},
		"month_end": func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
		},
		"format_time": formatTime,
		"date":        parseDate,
		"unix":        func(t time.Time) int64 { return t.Unix() },

		// math
		"pow":  func(x, y any) (float64, error) { return binaryFloat(math.Pow, x, y) },
		"sqrt": func(x any) (float64, error) { return unaryFloat(math.Sqrt, x) },
		"mod": func(x, y int) (int, error) {
			if y == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			return x % y, nil
		},

		// json
		"to_json":   toJSON,
		"from_json": fromJSON,

		// regex
		"re_match":   reMatch,
		"re_find":    reFind,
		"re_replace": reReplace,
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var strftime = strings.NewReplacer(
	"%Y", "2006",
	"%y", "06",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%I", "03",
	"%M", "04",
	"%S", "05",
	"%p", "PM",
	"%b", "Jan",
	"%B", "January",
	"%a", "Mon",
	"%A", "Monday",
	"%z", "-0700",
	"%Z", "MST",
	"%%", "%",
)

// formatTime accepts Go layouts as well as the common strftime directives.
func formatTime(t time.Time, layout string) string {
	if strings.Contains(layout, "%") {
		layout = strftime.Replace(layout)
	}
	return t.Format(layout)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"20060102",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func unaryFloat(f func(float64) float64, x any) (float64, error) {
	a, err := toFloat(x)
	if err != nil {
		return 0, err
	}
	return f(a), nil
}

func binaryFloat(f func(float64, float64) float64, x, y any) (float64, error) {
	a, err := toFloat(x)
	if err != nil {
		return 0, err
	}
	b, err := toFloat(y)
	if err != nil {
		return 0, err
	}
	return f(a, b), nil
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fromJSON(s string) (any, error) {
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func reMatch(pattern, s string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

func reFind(pattern, s string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", err
	}
	return re.FindString(s), nil
}

func reReplace(pattern, s, repl string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(s, repl), nil
}
