//go:build rp2040

package main

import "machine"

// Board wiring.
const (
	pinFET = machine.GPIO16 // PWM slice 0 channel A
	pinAMC = machine.GPIO17 // PIO side-set

	pinTraceTX = machine.GPIO0
	pinTraceRX = machine.GPIO1

	pinEEPROMSDA = machine.GPIO4
	pinEEPROMSCL = machine.GPIO5

	// ADC0-ADC3 are GPIO26-GPIO29. GPIO29 is the Pico's VSYS/3 sense
	// and cannot see external parts.
	pinBattery   = machine.GPIO27 // ADC1, cell divider
	pinCapacitor = machine.GPIO28 // ADC2, off-time capacitor: charged and sampled here
)

const (
	traceBaud = 115200
	eepromHz  = 400_000
	pwmPeriod = 255
	pioClkDiv = 16
	fetPWMHz  = 15_000
)
