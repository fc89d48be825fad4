package core

// Pattern is a blink generator selected by a reserved mode code.
type Pattern uint8

const (
	PatternNone Pattern = iota
	PatternStrobe
	PatternPolice
	PatternSOS
)

func (p Pattern) String() string {
	switch p {
	case PatternStrobe:
		return "strobe"
	case PatternPolice:
		return "police"
	case PatternSOS:
		return "sos"
	}
	return "none"
}

// Pulse is one step of a pattern: On ticks at full FET duty followed by
// Off ticks dark. On == 0 is a pause.
type Pulse struct {
	On  uint16
	Off uint16
}

func repeat(n int, p Pulse) []Pulse {
	out := make([]Pulse, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func join(parts ...[]Pulse) []Pulse {
	var out []Pulse
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var (
	strobePulses = []Pulse{{On: 1, Off: 2}}
	policePulses = join(repeat(5, Pulse{1, 2}), []Pulse{{Off: 50}})
	sosPulses    = join(
		repeat(3, Pulse{5, 12}), []Pulse{{Off: 25}},
		repeat(3, Pulse{25, 25}), []Pulse{{Off: 12}},
		repeat(3, Pulse{5, 12}), []Pulse{{Off: 100}},
	)
)

// Pulses returns one period of the pattern. The caller must not modify
// the slice.
func (p Pattern) Pulses() []Pulse {
	switch p {
	case PatternStrobe:
		return strobePulses
	case PatternPolice:
		return policePulses
	case PatternSOS:
		return sosPulses
	}
	return nil
}

// Period returns the length of one period in ticks.
func (p Pattern) Period() uint32 {
	var n uint32
	for _, s := range p.Pulses() {
		n += uint32(s.On) + uint32(s.Off)
	}
	return n
}

// Specials are the reserved codes that select patterns. Zero disables
// a pattern.
type Specials struct {
	Strobe Code
	Police Code
	SOS    Code
}

// Pattern returns the pattern selected by c, or PatternNone for a direct
// level.
func (s Specials) Pattern(c Code) Pattern {
	if c == 0 {
		return PatternNone
	}
	switch c {
	case s.Strobe:
		return PatternStrobe
	case s.Police:
		return PatternPolice
	case s.SOS:
		return PatternSOS
	}
	return PatternNone
}
