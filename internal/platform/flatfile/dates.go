package flatfile

import (
	"fmt"
	"time"
)

// legacyDateLayout matches the textual timestamps older data files carry,
// e.g. "Mon Jan 02 15:04:05 CST 2006".
const legacyDateLayout = "Mon Jan 02 15:04:05 MST 2006"

// FormatInstant renders a timestamp as an RFC 3339 UTC instant for
// persistence.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseInstant parses a persisted timestamp. RFC 3339 instants are the
// canonical format; the legacy textual format is tried before failing.
func ParseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(legacyDateLayout, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("flatfile: unparseable date %q", s)
}
