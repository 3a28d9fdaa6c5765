package telephony

import (
	"fmt"
	"strings"
	"time"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// FormatPhone renders an 11-digit North American number as (AAA) BBB-CCCC.
// Anything else comes back unchanged; an empty input becomes "Unknown".
func FormatPhone(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return notify.Unknown
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 11 || d[0] != '1' {
		return raw
	}
	return fmt.Sprintf("(%s) %s-%s", d[1:4], d[4:7], d[7:11])
}

// Duration renders the time between answeredAt and completedAt as "2m 5s"
// or "42s". Missing or unparsable timestamps give "Unknown"; a completion
// before the answer (clock skew) is clamped to "0s".
func Duration(answeredAt, completedAt string) string {
	start, ok := parseTime(answeredAt)
	if !ok {
		return notify.Unknown
	}
	end, ok := parseTime(completedAt)
	if !ok {
		return notify.Unknown
	}

	secs := int64(end.Sub(start) / time.Second)
	if secs < 0 {
		secs = 0
	}
	if m := secs / 60; m > 0 {
		return fmt.Sprintf("%dm %ds", m, secs%60)
	}
	return fmt.Sprintf("%ds", secs)
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
