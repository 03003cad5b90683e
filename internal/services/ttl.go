package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// ParseTTL parses token lifetimes such as "15m", "1h30m", "30d" or "2w".
// A bare integer is read as milliseconds. Zero, negative, and malformed
// values are configuration errors.
func ParseTTL(ttl string) (time.Duration, error) {
	s := strings.TrimSpace(ttl)
	if s == "" {
		return 0, fmt.Errorf("%w: empty ttl", ErrConfiguration)
	}

	var d time.Duration
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms > math.MaxInt64/int64(time.Millisecond) {
			return 0, fmt.Errorf("%w: ttl %q is too large", ErrConfiguration, ttl)
		}
		d = time.Duration(ms) * time.Millisecond
	} else {
		d, err = str2duration.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid ttl %q", ErrConfiguration, ttl)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: ttl %q must be positive", ErrConfiguration, ttl)
	}
	return d, nil
}
