// Package protocol implements the framed trace link: VLQ encoded payloads
// in length, sequence, CRC16 and sync delimited frames.
package protocol

// Version of the link format, sent in the hello message.
const Version = "quasar-trace/1"

// Protocol constants
const (
	MessageMax = 64 // Scratch buffer size, one frame

	// Message sequence masks
	MessageSeqMask = 0x0F
)

// Frame is one decoded frame.
type Frame struct {
	Length   uint8
	Sequence uint8
	Payload  []byte
	CRC      uint16
}
