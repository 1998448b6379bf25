package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToBool safely converts various types to boolean
// Handles bool, int, int64, float64, string ("1", "true", "yes", "on")
func ToBool(val interface{}) bool {
	if val == nil {
		return false
	}

	switch v := val.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []byte:
		return parseBoolString(string(v))
	case string:
		return parseBoolString(v)
	default:
		return parseBoolString(fmt.Sprintf("%v", v))
	}
}

func parseBoolString(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "1" || lower == "true" || lower == "yes" || lower == "on" || lower == "t" {
		return true
	}
	if b, err := strconv.ParseBool(lower); err == nil {
		return b
	}
	return false
}

// IsBlank reports whether a JSON-decoded value is empty: nil, "", false,
// zero, or an empty list/object.
func IsBlank(val interface{}) bool {
	switch v := val.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// BoolToInt converts a bool to the 0/1 stored in TINYINT columns
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime accepts RFC3339 and the "YYYY-MM-DD HH:MM:SS" forms the desk UI sends
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}
