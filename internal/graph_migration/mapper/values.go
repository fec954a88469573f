package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeTimestamp turns a source timestamp into an RFC 3339 string with an
// explicit offset, which the graph store parses with datetime(). Values with
// no zone information are taken as UTC.
func NormalizeTimestamp(v any) (string, error) {
	switch ts := v.(type) {
	case time.Time:
		if ts.IsZero() {
			return "", fmt.Errorf("%w: zero timestamp", domain.ErrMalformedValue)
		}
		return ts.Format(time.RFC3339Nano), nil
	case *time.Time:
		if ts == nil {
			return "", fmt.Errorf("%w: missing timestamp", domain.ErrMalformedValue)
		}
		return NormalizeTimestamp(*ts)
	case string:
		s := strings.TrimSpace(ts)
		if s == "" {
			return "", fmt.Errorf("%w: empty timestamp", domain.ErrMalformedValue)
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(time.RFC3339Nano), nil
			}
		}
		return "", fmt.Errorf("%w: unparseable timestamp %q", domain.ErrMalformedValue, s)
	case nil:
		return "", fmt.Errorf("%w: missing timestamp", domain.ErrMalformedValue)
	default:
		return "", fmt.Errorf("%w: unsupported timestamp type %T", domain.ErrMalformedValue, v)
	}
}

// NormalizeDate accepts YYYY-MM-DD, optionally followed by a time part, and
// returns the calendar date as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	candidate := s
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		candidate = s[:10]
	}
	t, err := time.Parse(time.DateOnly, candidate)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable date %q", domain.ErrMalformedValue, s)
	}
	return t.Format(time.DateOnly), nil
}
