package protocol

// InputBuffer is what a Decoder consumes frames from.
type InputBuffer interface {
	Data() []byte
	Available() int
	Pop(n int)
}

// OutputBuffer is what an Encoder appends frames to. Update patches the
// length byte once the payload is known; Truncate drops a frame that did
// not fit.
type OutputBuffer interface {
	Output(data []byte)
	CurPosition() int
	Update(pos int, val byte)
	DataSince(pos int) []byte
	Truncate(pos int)
}

// SliceInputBuffer reads from a byte slice it does not copy.
type SliceInputBuffer struct {
	data []byte
}

func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte   { return s.data }
func (s *SliceInputBuffer) Available() int { return len(s.data) }

func (s *SliceInputBuffer) Pop(n int) {
	s.data = s.data[min(n, len(s.data)):]
}

// ScratchOutput holds exactly one frame. It never allocates, so the
// firmware can encode from the tick path.
type ScratchOutput struct {
	buf [MessageMax]byte
	pos int
}

func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

// Output appends data, silently dropping what does not fit. The encoder
// notices through the frame length.
func (s *ScratchOutput) Output(data []byte) {
	s.pos += copy(s.buf[s.pos:], data)
}

func (s *ScratchOutput) CurPosition() int { return s.pos }

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

func (s *ScratchOutput) Truncate(pos int) {
	if pos < s.pos {
		s.pos = pos
	}
}

// Result returns the encoded bytes. They are overwritten by the next
// Reset and Output.
func (s *ScratchOutput) Result() []byte { return s.buf[:s.pos] }

func (s *ScratchOutput) Reset() { s.pos = 0 }

// StreamBuffer accumulates bytes read from a serial port until the
// Decoder has seen whole frames. Consumed bytes are reclaimed on the next
// Write, so Data is always one contiguous slice.
type StreamBuffer struct {
	buf  []byte
	head int
}

// NewStreamBuffer returns a buffer holding at most capacity bytes.
func NewStreamBuffer(capacity int) *StreamBuffer {
	return &StreamBuffer{buf: make([]byte, 0, capacity)}
}

// Write appends as much of data as fits and returns how much that was.
func (s *StreamBuffer) Write(data []byte) int {
	if s.head > 0 {
		n := copy(s.buf, s.buf[s.head:])
		s.buf = s.buf[:n]
		s.head = 0
	}
	n := min(len(data), cap(s.buf)-len(s.buf))
	s.buf = append(s.buf, data[:n]...)
	return n
}

func (s *StreamBuffer) Data() []byte   { return s.buf[s.head:] }
func (s *StreamBuffer) Available() int { return len(s.buf) - s.head }

// Free returns how many bytes the next Write can take.
func (s *StreamBuffer) Free() int { return cap(s.buf) - s.Available() }

func (s *StreamBuffer) Pop(n int) {
	s.head += min(n, s.Available())
}

func (s *StreamBuffer) Reset() {
	s.buf = s.buf[:0]
	s.head = 0
}
