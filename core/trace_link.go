package core

import (
	"errors"

	"quasar/protocol"
)

// Trace link message ids.
const (
	MsgEvent = 1
	MsgHello = 2
)

var ErrUnknownMessage = errors.New("trace link: unknown message")

// Hello identifies the firmware at the start of a capture.
type Hello struct {
	Version string
	Preset  string
	Slots   uint8
}

// TraceLink frames trace events for a byte sink such as a UART.
type TraceLink struct {
	out   *protocol.ScratchOutput
	enc   *protocol.Encoder
	write func([]byte)
}

// NewTraceLink returns a link writing each frame with write.
func NewTraceLink(write func([]byte)) *TraceLink {
	out := protocol.NewScratchOutput()
	return &TraceLink{out: out, enc: protocol.NewEncoder(out), write: write}
}

// Hello announces the firmware and preset.
func (l *TraceLink) Hello(cfg *Config) {
	l.send(func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, MsgHello)
		protocol.EncodeVLQString(o, protocol.Version)
		protocol.EncodeVLQString(o, cfg.Name)
		protocol.EncodeVLQUint(o, uint32(cfg.Ledger.Slots))
	})
}

// Send frames one event. It has the signature of a Trace sink.
func (l *TraceLink) Send(e Event) {
	l.send(func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, MsgEvent)
		protocol.EncodeVLQUint(o, uint32(e.Kind))
		protocol.EncodeVLQUint(o, e.Tick)
		protocol.EncodeVLQInt(o, e.A)
		protocol.EncodeVLQInt(o, e.B)
	})
}

func (l *TraceLink) send(payload func(protocol.OutputBuffer)) {
	l.out.Reset()
	if l.enc.EncodeFrame(payload) {
		l.write(l.out.Result())
	}
}

// DecodeMessage parses a frame payload into an *Event or a *Hello.
func DecodeMessage(payload []byte) (any, error) {
	data := payload
	id, err := protocol.DecodeVLQUint(&data)
	if err != nil {
		return nil, err
	}
	switch id {
	case MsgEvent:
		return decodeEvent(&data)
	case MsgHello:
		return decodeHello(&data)
	}
	return nil, ErrUnknownMessage
}

func decodeEvent(data *[]byte) (*Event, error) {
	var vals [4]int32
	for i := range vals {
		v, err := protocol.DecodeVLQInt(data)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &Event{
		Kind: EventKind(vals[0]),
		Tick: uint32(vals[1]),
		A:    vals[2],
		B:    vals[3],
	}, nil
}

func decodeHello(data *[]byte) (*Hello, error) {
	version, err := protocol.DecodeVLQString(data)
	if err != nil {
		return nil, err
	}
	preset, err := protocol.DecodeVLQString(data)
	if err != nil {
		return nil, err
	}
	slots, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return nil, err
	}
	return &Hello{Version: version, Preset: preset, Slots: uint8(slots)}, nil
}
