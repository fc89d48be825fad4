//go:build rp2040

package main

import "quasar/core"

// profileName selects the driver preset at build time:
//
//	tinygo flash -target pico -ldflags "-X main.profileName=a17ddl" ./targets/rp2040
var profileName = "nanjg105d"

// traceEnabled turns on the framed event stream on the trace UART. Set
// with -ldflags "-X main.traceEnabled=false" to free the UART.
var traceEnabled = "true"

// debugText prints debug lines on the trace UART when the event stream
// is off.
var debugText = "false"

// GetProfile returns the preset to run. An unknown name falls back to the
// first preset so the light always works.
func GetProfile() core.Config {
	cfg, ok := core.Preset(profileName)
	if !ok {
		cfg, _ = core.Preset(core.PresetNames()[0])
	}
	if cfg.Strategy == core.StrategyCapacitor {
		cfg.ChargePin = core.GPIOPin(pinCapacitor)
	}
	return cfg
}
