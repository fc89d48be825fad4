package protocol

const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = MessageMax
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
)

// Encoder frames payloads for a one-way link. There are no ACKs: the
// receiver detects loss from gaps in the 4-bit sequence.
type Encoder struct {
	output OutputBuffer
	seq    uint8
}

// NewEncoder returns an Encoder appending frames to output.
func NewEncoder(output OutputBuffer) *Encoder {
	return &Encoder{output: output, seq: MessageDest}
}

// Sequence returns the sequence byte the next frame will carry.
func (e *Encoder) Sequence() uint8 { return e.seq }

// EncodeFrame writes one frame whose payload is produced by frameData.
// It reports false, leaving output unchanged, when the payload does not
// fit in a frame.
func (e *Encoder) EncodeFrame(frameData func(output OutputBuffer)) bool {
	cursor := e.output.CurPosition()

	// Header: length placeholder and sequence
	e.output.Output([]byte{0, e.seq})
	frameData(e.output)

	length := len(e.output.DataSince(cursor)) + MessageTrailerSize
	if length > MessageLengthMax {
		e.output.Truncate(cursor)
		return false
	}
	e.output.Update(cursor, uint8(length))

	crc := CRC16(e.output.DataSince(cursor))
	e.output.Output([]byte{
		uint8(crc >> 8),
		uint8(crc),
		MessageValueSync,
	})
	e.seq = ((e.seq + 1) & MessageSeqMask) | MessageDest
	return true
}

// FrameHandler receives each valid frame. The payload is only valid for
// the duration of the call.
type FrameHandler func(f Frame)

// DecoderStats counts link health.
type DecoderStats struct {
	Frames  uint32 // Valid frames delivered
	Dropped uint32 // Frames missing according to the sequence
	Errors  uint32 // Length, sync or CRC failures
}

// Decoder parses frames from a byte stream, resynchronising on the sync
// byte after any error.
type Decoder struct {
	handler      FrameHandler
	synchronized bool
	expected     uint8
	primed       bool
	stats        DecoderStats
}

// NewDecoder returns a Decoder delivering frames to handler.
func NewDecoder(handler FrameHandler) *Decoder {
	return &Decoder{handler: handler, synchronized: true}
}

// Stats returns the counters so far.
func (d *Decoder) Stats() DecoderStats { return d.stats }

// Reset forgets sequence history, e.g. after the device rebooted.
func (d *Decoder) Reset() {
	d.synchronized = true
	d.primed = false
}

// Receive consumes every complete frame in input. A trailing partial
// frame is left in input for the next call.
func (d *Decoder) Receive(input InputBuffer) {
	data := input.Data()

	for len(data) > 0 {
		if !d.synchronized {
			// Skip garbage up to and including the next sync byte
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		seq := data[MessagePositionSeq]
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax || seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		frame := Frame{
			Length:   uint8(msgLen),
			Sequence: seq,
			Payload:  data[MessageHeaderSize : msgLen-MessageTrailerSize],
			CRC:      frameCRC,
		}
		data = data[msgLen:]
		d.track(seq)
		d.stats.Frames++
		if d.handler != nil {
			d.handler(frame)
		}
	}

	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (d *Decoder) desync() {
	d.synchronized = false
	d.stats.Errors++
}

func (d *Decoder) track(seq uint8) {
	if d.primed {
		gap := (seq - d.expected) & MessageSeqMask
		d.stats.Dropped += uint32(gap)
	}
	d.expected = ((seq + 1) & MessageSeqMask) | MessageDest
	d.primed = true
}
