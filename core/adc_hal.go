package core

// ADCChannelID identifies a logical ADC channel.
type ADCChannelID uint8

// ADCValue is the reading as seen by the rest of the firmware: an 8-bit
// left-adjusted sample, whatever the converter's native resolution.
type ADCValue uint8

// Channels used by the firmware. The capacitor is sampled on the same
// pin that charges it, so its channel must map onto Config.ChargePin.
const (
	BatteryChannel   ADCChannelID = 1
	CapacitorChannel ADCChannelID = 2
)

// ADCDriver is the abstract ADC interface that core code uses.
type ADCDriver interface {
	// ConfigureChannel prepares a channel for analog input.
	// For pin-muxed channels, this should set pin to analog mode.
	ConfigureChannel(ch ADCChannelID) error

	// ReadRaw performs a one-shot sample from the given channel.
	// Returns the 8-bit scaled value (e.g. 12-bit HW value shifted right).
	ReadRaw(ch ADCChannelID) (ADCValue, error)
}
