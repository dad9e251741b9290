//go:build tinygo

package main

import (
	"log/slog"
	"machine"

	"github.com/ethulhu/sha2017-desk-clock/app"
	"github.com/ethulhu/sha2017-desk-clock/hal"
)

func main() {
	cfg := app.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(machine.Serial, nil))
	app.Run(hal.New(), cfg)
}
