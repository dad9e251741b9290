//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Hz is how many 1-second ticks elapse per real second, so
	// simulated time can run faster than real time.
	Hz int
	// Ticks stops the run after N ticks (0 = run forever).
	Ticks uint64
}

// RunHeadless runs the clock without opening a window.
func RunHeadless(ctx context.Context, cfg HostConfig, newApp func(HAL) func() error, hc HeadlessConfig) error {
	if hc.Hz <= 0 {
		hc.Hz = 1
	}

	h := NewWithConfig(cfg).(*hostHAL)
	step := newApp(h)

	d := time.Second / time.Duration(hc.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", hc.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.stepN(1)
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if hc.Ticks > 0 && tick >= hc.Ticks {
				return nil
			}
		}
	}
}
