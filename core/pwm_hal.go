package core

// PWMChannel identifies one output stage.
type PWMChannel uint8

const (
	// ChannelFET drives the direct FET stage. Single channel boards only
	// use this one.
	ChannelFET PWMChannel = 0
	// ChannelAMC drives the regulated 7135 bank on dual channel boards.
	ChannelAMC PWMChannel = 1
)

// PWMValue is the duty cycle value (0 to GetMaxValue()).
type PWMValue uint32

// PWMDriver is the abstract PWM interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type PWMDriver interface {
	// ConfigureChannel prepares a channel for output, starting at 0 duty.
	ConfigureChannel(ch PWMChannel) error

	// SetDutyCycle sets the PWM duty cycle for a channel
	// value: 0 (fully off) to GetMaxValue() (fully on)
	SetDutyCycle(ch PWMChannel, value PWMValue) error

	// GetMaxValue returns the maximum PWM value (e.g., 255 for 8-bit)
	GetMaxValue() uint32
}
