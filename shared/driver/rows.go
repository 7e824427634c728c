package driver

import "database/sql"

// scanRows reads rows into one map per row. []byte values become strings.
// maxRows <= 0 reads everything.
func scanRows(rows *sql.Rows, maxRows int) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []map[string]any{}
	for rows.Next() {
		if maxRows > 0 && len(results) >= maxRows {
			break
		}

		columns := make([]any, len(cols))
		columnPointers := make([]any, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(cols))
		for i, colName := range cols {
			switch v := columns[i].(type) {
			case []byte:
				row[colName] = string(v)
			default:
				row[colName] = v
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
