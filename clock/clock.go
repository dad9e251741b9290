// Package clock manages the real-time clock and its one-time setup:
// a network time sync when the RTC is obviously unset, and the timezone
// rule from persisted configuration or a compiled-in default.
package clock

import (
	"fmt"

	"github.com/ethulhu/sha2017-desk-clock/hal"
	"github.com/ethulhu/sha2017-desk-clock/internal/buildinfo"
)

// fallbackValidEpoch is used when the build carries no date: an RTC
// reading earlier than this is treated as unset (2020-03-26, the first
// firmware's date).
const fallbackValidEpoch = 1585235437

// Source reads structured wall-clock time from the RTC.
type Source struct {
	rtc hal.RTC
}

// New prepares the RTC and returns a Source.
//
// If the RTC reads an implausibly old time it triggers one best-effort
// network time sync, which may block; a failed sync is not an error and
// the clock proceeds with whatever time it has. The timezone comes from
// the persisted "system/timezone" key, falling back to defaultTZ. A
// timezone the RTC rejects is fatal.
func New(rtc hal.RTC, net hal.Net, store hal.Store, defaultTZ string) (*Source, error) {
	if rtc.EpochSeconds() < validEpoch() {
		// RTC is unset.
		if linkUp(net) {
			_ = net.SyncTime()
		}
	}

	tz := defaultTZ
	if v, ok := store.Get("system", "timezone"); ok && v != "" {
		tz = v
	}
	if err := rtc.SetTimezone(tz); err != nil {
		return nil, fmt.Errorf("set timezone %q: %w", tz, err)
	}
	return &Source{rtc: rtc}, nil
}

// Now returns the current local time.
func (s *Source) Now() hal.DateTime {
	return s.rtc.Now()
}

func validEpoch() int64 {
	if e := buildinfo.UnixDate(); e > 0 {
		return e
	}
	return fallbackValidEpoch
}

func linkUp(net hal.Net) bool {
	if net.IsConnected() {
		return true
	}
	net.Connect()
	return net.WaitReady()
}
