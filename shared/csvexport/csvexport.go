// Package csvexport writes serialized result rows as CSV.
package csvexport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// RawColumn is the single column used when data is not valid JSON.
const RawColumn = "raw_data"

// Write renders JSON-encoded rows as CSV. The header is the sorted union
// of all object keys; fields missing from a row are left blank. Non-object
// items are written as a single column.
func Write(w io.Writer, data string) error {
	items := decode(data)

	objects := lo.FilterMap(items, func(item any, _ int) (map[string]any, bool) {
		m, ok := item.(map[string]any)
		return m, ok
	})
	headers := lo.Uniq(lo.FlatMap(objects, func(m map[string]any, _ int) []string {
		return lo.Keys(m)
	}))
	slices.Sort(headers)

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			if err := cw.Write([]string{format(item)}); err != nil {
				return err
			}
			continue
		}
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = format(m[h])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// decode returns the items of a JSON list. A single JSON value is wrapped in
// a list; unparsable input becomes one object with RawColumn.
func decode(data string) []any {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return []any{map[string]any{RawColumn: data}}
	}
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimRight(buf.String(), "\n")
	}
}
