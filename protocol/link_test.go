package protocol

import (
	"bytes"
	"testing"
)

func encodeFrames(t *testing.T, payloads ...[]byte) []byte {
	t.Helper()
	var stream []byte
	out := NewScratchOutput()
	enc := NewEncoder(out)
	for _, p := range payloads {
		out.Reset()
		if !enc.EncodeFrame(func(o OutputBuffer) { o.Output(p) }) {
			t.Fatalf("EncodeFrame(%v) failed", p)
		}
		stream = append(stream, out.Result()...)
	}
	return stream
}

func collect(d **Decoder) *[][]byte {
	var got [][]byte
	*d = NewDecoder(func(f Frame) {
		got = append(got, append([]byte(nil), f.Payload...))
	})
	return &got
}

func TestEncodeFrameLayout(t *testing.T) {
	out := NewScratchOutput()
	enc := NewEncoder(out)
	enc.EncodeFrame(func(o OutputBuffer) { o.Output([]byte{0x01, 0x02}) })

	frame := out.Result()
	if len(frame) != 7 {
		t.Fatalf("Expected 7 byte frame, got %d: %v", len(frame), frame)
	}
	if frame[0] != 7 || frame[1] != MessageDest {
		t.Errorf("Header = %02x %02x", frame[0], frame[1])
	}
	crc := CRC16(frame[:4])
	if frame[4] != byte(crc>>8) || frame[5] != byte(crc) || frame[6] != MessageValueSync {
		t.Errorf("Trailer = %v", frame[4:])
	}
	if enc.Sequence() != MessageDest+1 {
		t.Errorf("Sequence after one frame = %02x", enc.Sequence())
	}
}

func TestEncodeFrameSequenceWraps(t *testing.T) {
	out := NewScratchOutput()
	enc := NewEncoder(out)
	for i := 0; i < 16; i++ {
		out.Reset()
		enc.EncodeFrame(func(o OutputBuffer) {})
	}
	if enc.Sequence() != MessageDest {
		t.Errorf("Sequence after 16 frames = %02x", enc.Sequence())
	}
}

func TestEncodeFrameTooLong(t *testing.T) {
	out := NewScratchOutput()
	enc := NewEncoder(out)
	ok := enc.EncodeFrame(func(o OutputBuffer) { o.Output(make([]byte, MessageMax)) })
	if ok {
		t.Error("Oversized frame accepted")
	}
	if out.CurPosition() != 0 {
		t.Errorf("Oversized frame left %d bytes", out.CurPosition())
	}
	if enc.Sequence() != MessageDest {
		t.Error("Oversized frame consumed a sequence number")
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	payloads := [][]byte{{1}, {2, 3}, {}, {4, 5, 6}}
	stream := encodeFrames(t, payloads...)

	var d *Decoder
	got := collect(&d)
	input := NewSliceInputBuffer(stream)
	d.Receive(input)

	if len(*got) != len(payloads) {
		t.Fatalf("Decoded %d frames, expected %d", len(*got), len(payloads))
	}
	for i := range payloads {
		if !bytes.Equal((*got)[i], payloads[i]) {
			t.Errorf("Frame %d = %v, expected %v", i, (*got)[i], payloads[i])
		}
	}
	if input.Available() != 0 {
		t.Errorf("%d bytes left unconsumed", input.Available())
	}
	if s := d.Stats(); s.Frames != 4 || s.Dropped != 0 || s.Errors != 0 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestDecoderPartialFrames(t *testing.T) {
	stream := encodeFrames(t, []byte{9, 9, 9}, []byte{8})

	var d *Decoder
	got := collect(&d)
	in := NewStreamBuffer(128)
	for _, b := range stream {
		in.Write([]byte{b})
		d.Receive(in)
	}
	if len(*got) != 2 {
		t.Errorf("Byte-wise delivery decoded %d frames", len(*got))
	}
}

func TestDecoderResync(t *testing.T) {
	good := encodeFrames(t, []byte{1}, []byte{2})
	corrupt := append([]byte(nil), good...)
	corrupt[2] ^= 0xFF // payload of the first frame

	stream := append([]byte{0x33, 0x44}, corrupt...)
	var d *Decoder
	got := collect(&d)
	d.Receive(NewSliceInputBuffer(stream))

	if len(*got) != 1 || (*got)[0][0] != 2 {
		t.Fatalf("After corruption decoded %v, expected only the second frame", *got)
	}
	if d.Stats().Errors == 0 {
		t.Error("Corruption not counted")
	}
}

func TestDecoderCountsDroppedFrames(t *testing.T) {
	out := NewScratchOutput()
	enc := NewEncoder(out)
	var stream []byte
	for i := 0; i < 6; i++ {
		out.Reset()
		enc.EncodeFrame(func(o OutputBuffer) { o.Output([]byte{byte(i)}) })
		if i == 2 || i == 3 {
			continue // lost on the wire
		}
		stream = append(stream, out.Result()...)
	}

	d := NewDecoder(nil)
	d.Receive(NewSliceInputBuffer(stream))
	if s := d.Stats(); s.Frames != 4 || s.Dropped != 2 {
		t.Errorf("Stats = %+v, expected 4 frames and 2 dropped", s)
	}

	d.Reset()
	d.Receive(NewSliceInputBuffer(encodeFrames(t, []byte{0})))
	if s := d.Stats(); s.Dropped != 2 {
		t.Errorf("Reset still counted a gap: %+v", s)
	}
}
