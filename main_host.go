//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ethulhu/sha2017-desk-clock/app"
	"github.com/ethulhu/sha2017-desk-clock/hal"
)

func main() {
	acfg := app.DefaultConfig()
	var hcfg hal.HostConfig
	var hl hal.HeadlessConfig
	flag.BoolVar(&hl.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hl.Hz, "hz", 1, "Simulated ticks per real second in headless mode.")
	flag.Uint64Var(&hl.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&acfg.ServerAddr, "server", acfg.ServerAddr, "Broker host:port.")
	flag.StringVar(&acfg.Topic, "topic", acfg.Topic, "Alert topic.")
	flag.StringVar(&acfg.ClientID, "client-id", acfg.ClientID, "Broker client identifier.")
	flag.StringVar(&hcfg.Timezone, "tz", "", "IANA zone name or POSIX TZ rule for the simulated RTC.")
	flag.Int64Var(&hcfg.StartEpoch, "start-epoch", 0, "Simulated RTC start, epoch seconds (0 = wall clock).")
	flag.Parse()

	acfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	newApp := func(h hal.HAL) func() error {
		sys, err := app.New(h, acfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return sys.Step
	}

	if hl.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, hcfg, newApp, hl); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(hcfg, newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
