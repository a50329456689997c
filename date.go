package syncstatus

import (
	"regexp"
	"strings"
	"time"
)

const stampLayout = "2006-01-02T15:04:05"

var offsetRx = regexp.MustCompile(`^[+-][0-9]{2}:[0-9]{2}$`)

// ParseStamp parses the timestamp strings calendar providers put on events:
// a YYYY-MM-DDTHH:MM:SS base, optionally with fractional seconds, and either
// no zone at all, a trailing Z for UTC, or a trailing ±HH:MM offset. A stamp
// without a zone is taken as local time.
func ParseStamp(s string) (time.Time, error) {
	layout := stampLayout
	if len(s) >= 20 && s[19] == '.' {
		layout += ".999999"
	}
	switch {
	case len(s) > 0 && s[len(s)-1] == 'Z':
		return time.Parse(layout, strings.TrimSuffix(s, "Z"))
	case len(s) >= 6 && offsetRx.MatchString(s[len(s)-6:]):
		return time.Parse(layout+"-07:00", s)
	default:
		return time.ParseInLocation(layout, s, time.Local)
	}
}
