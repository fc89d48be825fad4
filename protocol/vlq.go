package protocol

import "errors"

var (
	ErrInvalidVLQ     = errors.New("invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("buffer too small for VLQ")
)

// vlqShifts are the bit offsets of the optional leading groups.
var vlqShifts = [...]uint{28, 21, 14, 7}

// EncodeVLQInt writes v as 7-bit groups, most significant first, with
// the high bit marking continuation. A group is only emitted when v is
// outside the range the remaining groups can carry, so small negative
// values stay short: -32..95 fits in one byte.
func EncodeVLQInt(output OutputBuffer, v int32) {
	var buf [5]byte
	n := 0
	for _, shift := range vlqShifts {
		span := int32(1) << (shift - 2)
		if v < -span || v >= 3*span {
			buf[n] = byte(v>>shift)&0x7F | 0x80
			n++
		}
	}
	buf[n] = byte(v) & 0x7F
	output.Output(buf[:n+1])
}

func EncodeVLQUint(output OutputBuffer, v uint32) {
	EncodeVLQInt(output, int32(v))
}

// DecodeVLQInt reads one value and advances data past it.
func DecodeVLQInt(data *[]byte) (int32, error) {
	in := *data
	if len(in) == 0 {
		return 0, ErrBufferTooSmall
	}
	c := uint32(in[0])
	v := c & 0x7F
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	i := 1
	for ; c&0x80 != 0; i++ {
		if i > len(vlqShifts) {
			return 0, ErrInvalidVLQ
		}
		if i >= len(in) {
			return 0, ErrBufferTooSmall
		}
		c = uint32(in[i])
		v = v<<7 | c&0x7F
	}
	*data = in[i:]
	return int32(v), nil
}

func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQInt(data)
	return uint32(v), err
}

// EncodeVLQString writes a length prefixed string.
func EncodeVLQString(output OutputBuffer, s string) {
	EncodeVLQUint(output, uint32(len(s)))
	output.Output([]byte(s))
}

// DecodeVLQString reads a length prefixed string. The result is a copy.
func DecodeVLQString(data *[]byte) (string, error) {
	n, err := DecodeVLQUint(data)
	if err != nil {
		return "", err
	}
	if uint32(len(*data)) < n {
		return "", ErrBufferTooSmall
	}
	s := string((*data)[:n])
	*data = (*data)[n:]
	return s, nil
}
