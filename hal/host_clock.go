//go:build !tinygo

package hal

import "time"

// hostClock simulates the badge RTC on top of the host clock. A fixed
// offset stands in for the RTC's battery-backed register, so a
// simulated "unset" clock (StartEpoch near zero) stays unset until
// SyncTime would have adjusted it.
type hostClock struct {
	offset time.Duration
	loc    *time.Location
}

func newHostClock(startEpoch int64) *hostClock {
	c := &hostClock{loc: time.UTC}
	if startEpoch > 0 {
		c.offset = time.Unix(startEpoch, 0).Sub(time.Now())
	}
	return c
}

func (c *hostClock) EpochSeconds() int64 {
	return time.Now().Add(c.offset).Unix()
}

// SetTimezone accepts either an IANA zone name ("Europe/London") or a
// POSIX TZ rule. IANA names are tried first so the host simulator gets
// real DST handling when the zone database is available.
func (c *hostClock) SetTimezone(rule string) error {
	if loc, err := time.LoadLocation(rule); err == nil {
		c.loc = loc
		return nil
	}
	loc, err := FixedZoneFromRule(rule)
	if err != nil {
		return err
	}
	c.loc = loc
	return nil
}

func (c *hostClock) Now() DateTime {
	return NewDateTime(time.Now().Add(c.offset).In(c.loc))
}
