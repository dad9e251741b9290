//go:build tinygo

package hal

import "time"

// badgeClock reads the runtime clock, which the network backend adjusts
// when a time sync succeeds. Timezone rules collapse to their
// standard-time offset (ParsePosixTZ).
type badgeClock struct {
	loc *time.Location
}

func newBadgeClock() *badgeClock {
	return &badgeClock{loc: time.UTC}
}

func (c *badgeClock) EpochSeconds() int64 {
	return time.Now().Unix()
}

func (c *badgeClock) SetTimezone(rule string) error {
	loc, err := FixedZoneFromRule(rule)
	if err != nil {
		return err
	}
	c.loc = loc
	return nil
}

func (c *badgeClock) Now() DateTime {
	return NewDateTime(time.Now().In(c.loc))
}
