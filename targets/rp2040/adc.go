//go:build rp2040

package main

import (
	"errors"
	"machine"

	"quasar/core"
)

// RpAdcDriver implements core.ADCDriver on the RP2040 ADC inputs.
type RpAdcDriver struct {
	channels [4]*machine.ADC
}

// NewRPAdcDriver initialises the ADC block.
func NewRPAdcDriver() *RpAdcDriver {
	machine.InitADC()
	return &RpAdcDriver{}
}

// ConfigureChannel sets up an input; ADC0-ADC3 are GPIO26-GPIO29.
func (d *RpAdcDriver) ConfigureChannel(ch core.ADCChannelID) error {
	if int(ch) >= len(d.channels) {
		return errors.New("unsupported ADC channel")
	}
	if d.channels[ch] != nil {
		return nil
	}

	var adc machine.ADC
	switch ch {
	case 0:
		adc = machine.ADC{Pin: machine.ADC0}
	case core.BatteryChannel:
		adc = machine.ADC{Pin: pinBattery}
	case core.CapacitorChannel:
		adc = machine.ADC{Pin: pinCapacitor}
	case 3:
		adc = machine.ADC{Pin: machine.ADC3}
	}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return err
	}
	d.channels[ch] = &adc
	return nil
}

// ReadRaw returns the top 8 bits of a conversion. machine.ADC.Get scales
// the 12-bit result to 16 bits.
func (d *RpAdcDriver) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	if int(ch) >= len(d.channels) {
		return 0, errors.New("unsupported ADC channel")
	}
	adc := d.channels[ch]
	if adc == nil {
		if err := d.ConfigureChannel(ch); err != nil {
			return 0, err
		}
		adc = d.channels[ch]
	}
	return core.ADCValue(adc.Get() >> 8), nil
}
