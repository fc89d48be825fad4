package core

import (
	"testing"

	"quasar/protocol"
)

func TestTraceLinkRoundTrip(t *testing.T) {
	var wire []byte
	link := NewTraceLink(func(b []byte) { wire = append(wire, b...) })
	cfg := A17DDL()
	link.Hello(&cfg)
	sent := []Event{
		{Kind: EvtBoot, Tick: 0, A: int32(StrategyCapacitor)},
		{Kind: EvtDerate, Tick: 3000, A: -127, B: -66},
		{Kind: EvtSave, Tick: 70000, A: 15, B: 0x13},
	}
	for _, e := range sent {
		link.Send(e)
	}

	var got []any
	dec := protocol.NewDecoder(func(f protocol.Frame) {
		msg, err := DecodeMessage(f.Payload)
		if err != nil {
			t.Errorf("DecodeMessage() failed: %v", err)
			return
		}
		got = append(got, msg)
	})
	dec.Receive(protocol.NewSliceInputBuffer(wire))

	if len(got) != len(sent)+1 {
		t.Fatalf("decoded %d messages", len(got))
	}
	hello, ok := got[0].(*Hello)
	if !ok || hello.Preset != "a17ddl" || hello.Slots != 16 || hello.Version != protocol.Version {
		t.Errorf("hello = %+v", got[0])
	}
	for i, want := range sent {
		e, ok := got[i+1].(*Event)
		if !ok || *e != want {
			t.Errorf("event %d = %+v, expected %+v", i, got[i+1], want)
		}
	}
}

func TestTraceLinkAsSink(t *testing.T) {
	frames := 0
	link := NewTraceLink(func([]byte) { frames++ })
	tr := NewTrace(link.Send)
	tr.Record(EvtLockIn, 50, 1, 0)
	if frames != 1 {
		t.Errorf("sink wrote %d frames", frames)
	}
}

func TestDecodeMessageUnknown(t *testing.T) {
	if _, err := DecodeMessage([]byte{0x09}); err != ErrUnknownMessage {
		t.Errorf("DecodeMessage() error = %v", err)
	}
}
