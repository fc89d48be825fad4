package serial

import (
	"io"
)

// Port is a byte stream to the trace UART. The native implementation
// uses github.com/tarm/serial; tests use any io.ReadWriteCloser.
type Port interface {
	io.ReadWriteCloser

	// Flush discards anything buffered by the driver
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultBaud matches the firmware's trace UART.
const DefaultBaud = 115200

// DefaultConfig returns the trace link settings for device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}
