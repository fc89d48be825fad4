package protocol

import (
	"bytes"
	"testing"
)

func TestSliceInputBuffer(t *testing.T) {
	buf := NewSliceInputBuffer([]byte{1, 2, 3, 4, 5})
	if buf.Available() != 5 {
		t.Errorf("Available = %d, want 5", buf.Available())
	}
	buf.Pop(2)
	if got := buf.Data(); !bytes.Equal(got, []byte{3, 4, 5}) {
		t.Errorf("after Pop(2) Data = %v", got)
	}
	buf.Pop(10)
	if buf.Available() != 0 {
		t.Errorf("Pop past the end left %d bytes", buf.Available())
	}
}

func TestScratchOutput(t *testing.T) {
	scratch := NewScratchOutput()
	scratch.Output([]byte{1, 2, 3})
	scratch.Output([]byte{4, 5})
	if scratch.CurPosition() != 5 {
		t.Errorf("CurPosition = %d, want 5", scratch.CurPosition())
	}

	scratch.Update(0, 99)
	scratch.Update(7, 42)
	if got := scratch.Result(); !bytes.Equal(got, []byte{99, 2, 3, 4, 5}) {
		t.Errorf("Result = %v", got)
	}
	if got := scratch.DataSince(2); !bytes.Equal(got, []byte{3, 4, 5}) {
		t.Errorf("DataSince(2) = %v", got)
	}
	if scratch.DataSince(6) != nil {
		t.Error("DataSince past the end should be nil")
	}

	scratch.Reset()
	if scratch.CurPosition() != 0 {
		t.Errorf("after Reset CurPosition = %d", scratch.CurPosition())
	}
}

func TestScratchOutputDropsOverflow(t *testing.T) {
	scratch := NewScratchOutput()
	scratch.Output(make([]byte, MessageMax+10))
	if scratch.CurPosition() != MessageMax {
		t.Errorf("CurPosition = %d, want %d", scratch.CurPosition(), MessageMax)
	}
}

func TestScratchOutputTruncate(t *testing.T) {
	scratch := NewScratchOutput()
	scratch.Output([]byte{1, 2, 3, 4})
	scratch.Truncate(1)
	if got := scratch.Result(); !bytes.Equal(got, []byte{1}) {
		t.Errorf("after Truncate(1) Result = %v", got)
	}
	scratch.Truncate(10)
	if scratch.CurPosition() != 1 {
		t.Errorf("Truncate past the end moved position to %d", scratch.CurPosition())
	}
}

func TestStreamBuffer(t *testing.T) {
	in := NewStreamBuffer(8)
	if in.Available() != 0 || in.Free() != 8 {
		t.Fatalf("new buffer: Available %d Free %d", in.Available(), in.Free())
	}

	if n := in.Write([]byte{1, 2, 3, 4, 5}); n != 5 {
		t.Errorf("Write = %d, want 5", n)
	}
	in.Pop(3)
	if got := in.Data(); !bytes.Equal(got, []byte{4, 5}) {
		t.Errorf("after Pop(3) Data = %v", got)
	}

	// Popped bytes are reclaimed, so six more fit.
	if n := in.Write([]byte{6, 7, 8, 9, 10, 11, 12}); n != 6 {
		t.Errorf("Write after Pop = %d, want 6", n)
	}
	if got := in.Data(); !bytes.Equal(got, []byte{4, 5, 6, 7, 8, 9, 10, 11}) {
		t.Errorf("Data = %v", got)
	}
	if in.Free() != 0 {
		t.Errorf("Free = %d, want 0", in.Free())
	}
	if n := in.Write([]byte{1}); n != 0 {
		t.Errorf("Write to a full buffer = %d", n)
	}

	in.Reset()
	if in.Available() != 0 || in.Free() != 8 {
		t.Errorf("after Reset: Available %d Free %d", in.Available(), in.Free())
	}
}
