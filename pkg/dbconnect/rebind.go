package dbconnect

import (
	"strconv"
	"strings"
)

// Rebind rewrites '?' placeholders into the '$N' form required by lib/pq.
// SQLite accepts '?' natively, so queries are written once in that form.
func Rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
