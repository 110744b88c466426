package google

import (
	"fmt"
	"strconv"
	"strings"
)

// parseRows converts a values matrix (as returned by the Sheets API) into
// string rows. The first row is taken as the header and dropped; the API
// omits trailing empty cells, so data rows are padded to the header width.
// Rows that are entirely blank are skipped.
func parseRows(values [][]interface{}) [][]string {
	if len(values) == 0 {
		return nil
	}
	width := len(values[0])

	var out [][]string
	for _, raw := range values[1:] {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		for len(row) < width {
			row = append(row, "")
		}
		out = append(out, row)
	}
	return out
}

func toValues(header []string, rows [][]string) [][]interface{} {
	out := make([][]interface{}, 0, len(rows)+1)
	out = append(out, toInterfaces(header))
	for _, row := range rows {
		out = append(out, toInterfaces(row))
	}
	return out
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = strings.TrimSpace(x)
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
