package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ToInt64 parses a decimal integer. An empty string yields def.
func ToInt64(val string, def int64) (int64, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", val)
	}
	return i, nil
}

// ToBool handles "1", "true", "yes" and "on" in any case. Anything else is
// false.
func ToBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// FormatBytes renders n with a binary unit, e.g. "1.5 KiB". Negative
// sizes render as 0 B.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
