// Package querytrace renders parameterized SQL with its arguments inlined,
// for log output only. The result is not escaped and must never be executed.
package querytrace

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format replaces each $N placeholder in query with the quoted Nth param.
// Indexes are substituted from highest to lowest so $1 never touches $10.
func Format(query string, params ...any) string {
	out := query
	for i := len(params); i >= 1; i-- {
		out = strings.ReplaceAll(out, "$"+strconv.Itoa(i), "'"+render(params[i-1])+"'")
	}
	return out
}

func render(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return strconv.FormatInt(int64(x/time.Second), 10) + " seconds"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
