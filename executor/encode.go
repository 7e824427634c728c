package executor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dracory/querybase/shared/constants"
)

// encodeRows serialises result rows to a JSON array. Timestamps use the
// same "YYYY-MM-DD HH:MM:SS" layout everywhere.
func encodeRows(rows []map[string]any) (string, error) {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		clean := make(map[string]any, len(row))
		for k, v := range row {
			clean[k] = encodeValue(v)
		}
		out = append(out, clean)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode rows: %w", err)
	}
	return string(b), nil
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(constants.TimestampLayout)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format(constants.TimestampLayout)
	case []byte:
		return string(t)
	default:
		return v
	}
}
