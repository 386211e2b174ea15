// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Normalize renders a column value as a string: NULL becomes "null",
// arrays and blobs become "[a, b, c]", numbers keep their shortest form.
func Normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		parts := make([]string, len(x))
		for i, b := range x {
			parts[i] = strconv.Itoa(int(b))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Normalize(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05")
	case map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

// normalizeRow converts scanned or decoded values into a Row.
func normalizeRow(cols []string, vals []any) Row {
	out := Row{Columns: append([]string(nil), cols...), Values: make([]string, len(vals))}
	for i, v := range vals {
		out.Values[i] = Normalize(v)
	}
	return out
}
