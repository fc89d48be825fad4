//go:build rp2040

package main

import (
	"machine"

	"quasar/core"
)

func main() {
	// Clear any watchdog state left from before the power interruption.
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	cfg := GetProfile()

	// The trace UART either streams framed events or, with the stream
	// off and debugText set, plain debug lines.
	uart := newTraceUART()
	trace := core.NewTrace(nil)
	switch {
	case traceEnabled == "true":
		trace.SetSink(uart.Sink())
		uart.Hello(&cfg)
	case debugText == "true":
		core.SetDebugWriter(uart.DebugLine)
		core.SetDebugEnabled(true)
	}

	// A missing EEPROM only costs memory: reads fail as erased and saves
	// are absorbed by the controller.
	store, err := newEEPROMStore(machine.I2C0)
	if err != nil {
		core.DebugPrintln("[BOOT] eeprom: " + err.Error())
	}

	board := core.Board{
		Store: store,
		ADC:   NewRPAdcDriver(),
		PWM:   NewRP2040PWMDriver(),
		GPIO:  NewRPGPIODriver(),
		Clock: &tickClock{},
		Trace: trace,
	}
	ctrl, err := core.NewController(&cfg, board)
	if err != nil {
		core.DebugPrintln("[BOOT] profile " + cfg.Name + ": " + err.Error())
		cfg = core.Nanjg105D()
		ctrl, _ = core.NewController(&cfg, board)
	}

	// Boot returns only when the clock reports power loss, which the
	// hardware clock never does.
	for {
		_ = ctrl.Boot()
	}
}
