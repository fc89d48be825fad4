package core

// Decimal formatting for trace and debug lines; fmt is too large for the
// MCU image.

func itoa(n int) string {
	if n < 0 {
		// Negating through int64 keeps the magnitude of the most
		// negative value once reinterpreted as unsigned.
		return formatDecimal(uint64(-int64(n)), true)
	}
	return formatDecimal(uint64(n), false)
}

func utoa(n uint32) string {
	return formatDecimal(uint64(n), false)
}

func formatDecimal(u uint64, negative bool) string {
	var buf [21]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	if negative {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
