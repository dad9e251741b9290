package hal

import (
	"errors"
	"time"
)

// ParsePosixTZ extracts the standard-time zone name and UTC offset from
// a POSIX TZ rule such as "GMT+0BST-1,M3.5.0/01:00:00,M10.5.0/02:00:00".
//
// The returned offset is in seconds east of UTC (Go's convention; POSIX
// stores it west-positive, so the sign is flipped). Daylight-saving
// transition rules are not evaluated: callers get a fixed-offset zone
// pinned to standard time.
func ParsePosixTZ(rule string) (name string, offsetSeconds int, err error) {
	i := 0
	if i < len(rule) && rule[i] == '<' {
		// Quoted form: <+04>-4
		j := i + 1
		for j < len(rule) && rule[j] != '>' {
			j++
		}
		if j >= len(rule) {
			return "", 0, errors.New("hal: unterminated quoted zone name")
		}
		name = rule[i+1 : j]
		i = j + 1
	} else {
		for i < len(rule) && isAlpha(rule[i]) {
			i++
		}
		name = rule[:i]
	}
	if name == "" {
		return "", 0, errors.New("hal: missing zone name")
	}

	west, _, ok := parseTZOffset(rule[i:])
	if !ok {
		// A bare name without an offset does not identify a zone.
		return "", 0, errors.New("hal: missing zone offset")
	}
	return name, -west, nil
}

// FixedZoneFromRule resolves a POSIX TZ rule to a fixed-offset
// time.Location.
func FixedZoneFromRule(rule string) (*time.Location, error) {
	name, offset, err := ParsePosixTZ(rule)
	if err != nil {
		return nil, err
	}
	return time.FixedZone(name, offset), nil
}

// parseTZOffset parses [+|-]h[h][:mm[:ss]] and returns seconds
// west of UTC plus the number of bytes consumed.
func parseTZOffset(s string) (seconds, n int, ok bool) {
	i := 0
	sign := 1
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	h, nh, okH := parseDigits(s[i:], 2)
	if !okH {
		return 0, 0, false
	}
	i += nh
	seconds = h * 3600
	for _, unit := range [...]int{60, 1} {
		if i >= len(s) || s[i] != ':' {
			break
		}
		v, nv, okV := parseDigits(s[i+1:], 2)
		if !okV {
			return 0, 0, false
		}
		i += 1 + nv
		seconds += v * unit
	}
	return sign * seconds, i, true
}

func parseDigits(s string, max int) (v, n int, ok bool) {
	for n < len(s) && n < max && s[n] >= '0' && s[n] <= '9' {
		v = v*10 + int(s[n]-'0')
		n++
	}
	return v, n, n > 0
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// NewDateTime converts t into the RTC's structured form.
func NewDateTime(t time.Time) DateTime {
	return DateTime{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		Weekday: int(t.Weekday()) + 1, // time.Sunday is 0; the RTC counts from 1.
		YearDay: t.YearDay(),
	}
}
