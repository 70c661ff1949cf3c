// Package test provides helpers for naming table-driven subtests.
package test

import (
	"fmt"
	"strconv"
	"strings"
)

// Name joins field=value pairs into a subtest name, separated by '/'.
// Zero-valued strings, ints and false booleans are left out; true booleans
// are written as the bare field name.
func Name(fields []string, values ...any) string {
	if len(fields) != len(values) {
		panic("fields and values must have the same length")
	}
	var b strings.Builder
	for i, f := range fields {
		var part string
		switch x := values[i].(type) {
		case string:
			if x != "" {
				part = f + "=" + x
			}
		case int:
			if x != 0 {
				part = f + "=" + strconv.Itoa(x)
			}
		case float64:
			part = f + "=" + strconv.FormatFloat(x, 'g', -1, 64)
		case bool:
			if x {
				part = f
			}
		case []string:
			part = f + "=" + strings.Join(x, ",")
		default:
			part = fmt.Sprintf("%s=%v", f, x)
		}
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(part)
	}
	return b.String()
}
