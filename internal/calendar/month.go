package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Month is a billing month (year + month). The zero value means "no month".
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth reads "YYYY-MM". A full date ("YYYY-MM-DD...") is accepted and
// truncated to its month. Empty input yields the zero month.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Month{}, nil
	}
	if len(s) > 7 {
		s = s[:7]
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// IsZero reports whether m is the zero month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Key returns the zero-padded "YYYY-MM" sort key, or "" for the zero month.
// Keys of non-zero months sort lexically in chronological order.
func (m Month) Key() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) String() string { return m.Key() }

// MarshalJSON encodes m as "YYYY-MM".
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Key())
}

// UnmarshalJSON accepts the formats ParseMonth accepts.
func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("month must be a string: %w", err)
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores m as TEXT, or NULL for the zero month.
func (m Month) Value() (driver.Value, error) {
	if m.IsZero() {
		return nil, nil
	}
	return m.Key(), nil
}

// Scan reads a TEXT or NULL column.
func (m *Month) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Month{}
		return nil
	case string:
		parsed, err := ParseMonth(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		return m.Scan(string(v))
	case time.Time:
		*m = Month{Year: v.Year(), Month: v.Month()}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into calendar.Month", src)
	}
}
