//go:build rp2040

package main

import (
	"machine"

	"quasar/core"
)

// RPGPIODriver implements core.GPIODriver
type RPGPIODriver struct{}

func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{}
}

func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

// ConfigureInput leaves the pin floating so an external capacitor keeps
// its charge.
func (d *RPGPIODriver) ConfigureInput(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInput})
	return nil
}

func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machine.Pin(pin).Set(value)
	return nil
}
