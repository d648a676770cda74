// Package flatfile implements the delimited flat-file record protocol shared
// by every catalog and ledger: field escaping, quote-aware record splitting,
// and header-verified whole-file load/save.
package flatfile

import "strings"

// Escape wraps a field in double quotes when it contains a comma, quote, or
// newline, doubling any internal quotes. All other fields pass through as-is.
func Escape(field string) string {
	if strings.ContainsAny(field, ",\"\n\r") {
		return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
	}
	return field
}

// Unescape reverses Escape. A field that is not fully quoted is returned
// unchanged.
func Unescape(field string) string {
	if len(field) >= 2 && strings.HasPrefix(field, "\"") && strings.HasSuffix(field, "\"") {
		inner := field[1 : len(field)-1]
		return strings.ReplaceAll(inner, "\"\"", "\"")
	}
	return field
}

// Split divides a record line into raw fields on commas that are outside
// quoted sections. It never fails: unbalanced quotes degrade to literal text,
// which keeps loading lenient for hand-edited files. Fields come back still
// escaped; pair with Unescape.
func Split(line string) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			b.WriteByte(c)
		case c == ',' && !inQuotes:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	fields = append(fields, b.String())
	return fields
}

// SplitRows divides raw file content into record rows. A newline inside a
// quoted section belongs to its field; only a newline outside quotes ends
// the record. A carriage return before an unquoted newline is dropped, but
// CRLF inside quotes is kept verbatim.
func SplitRows(data string) []string {
	var rows []string
	var b strings.Builder
	inQuotes := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			b.WriteByte(c)
		case c == '\n' && !inQuotes:
			rows = append(rows, strings.TrimSuffix(b.String(), "\r"))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	if b.Len() > 0 {
		rows = append(rows, strings.TrimSuffix(b.String(), "\r"))
	}
	return rows
}

// Decode unescapes every field of a split record in place and returns it.
func Decode(fields []string) []string {
	for i, f := range fields {
		fields[i] = Unescape(f)
	}
	return fields
}

// Encode joins fields into a record line, escaping each one.
func Encode(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = Escape(f)
	}
	return strings.Join(escaped, ",")
}
