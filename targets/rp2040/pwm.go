//go:build rp2040

package main

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"quasar/core"
	"quasar/targets/pio"
)

// pwmPeripheral abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RP2040PWMDriver implements core.PWMDriver: the FET channel on a
// hardware slice, the AMC channel on a PIO state machine.
type RP2040PWMDriver struct {
	fet     pwmPeripheral
	fetChan uint8
	fetOK   bool

	amc *pio.PWM
}

// NewRP2040PWMDriver creates an unconfigured driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{}
}

// GetMaxValue returns the top of the duty range.
func (d *RP2040PWMDriver) GetMaxValue() uint32 {
	return pwmPeriod
}

func (d *RP2040PWMDriver) ConfigureChannel(ch core.PWMChannel) error {
	switch ch {
	case core.ChannelFET:
		if d.fetOK {
			return nil
		}
		// GPIO16 maps to slice (16>>1)&7 = 0.
		d.fet = machine.PWM0
		if err := d.fet.Configure(machine.PWMConfig{Period: 1_000_000_000 / fetPWMHz}); err != nil {
			return err
		}
		c, err := d.fet.Channel(pinFET)
		if err != nil {
			return err
		}
		d.fetChan = c
		d.fetOK = true
		return nil
	case core.ChannelAMC:
		if d.amc != nil {
			return nil
		}
		p, err := pio.NewPWM(rp2pio.PIO0, pinAMC, pwmPeriod, pioClkDiv)
		if err != nil {
			return err
		}
		d.amc = p
		return nil
	}
	return errors.New("unsupported PWM channel")
}

// SetDutyCycle sets a channel; value is 0..GetMaxValue.
func (d *RP2040PWMDriver) SetDutyCycle(ch core.PWMChannel, value core.PWMValue) error {
	switch ch {
	case core.ChannelFET:
		if !d.fetOK {
			return errors.New("FET channel not configured")
		}
		top := d.fet.Top()
		d.fet.Set(d.fetChan, uint32(value)*top/pwmPeriod)
		return nil
	case core.ChannelAMC:
		if d.amc == nil {
			return errors.New("AMC channel not configured")
		}
		d.amc.Set(uint32(value))
		return nil
	}
	return errors.New("unsupported PWM channel")
}
