package core

import "errors"

// Code is one mode table entry. Single channel tables use 0..255 as a
// duty value, dual channel tables use -127..127 where the sign selects
// the output channel. Zero terminates a group; a few reserved values
// select blink patterns instead of a steady level.
type Code int16

// Table limits. Group and mode indices are stored as nibbles.
const (
	MaxGroups = 16
	MaxModes  = 16
)

var (
	ErrEmptyTable    = errors.New("mode table has no groups")
	ErrTableTooLarge = errors.New("mode table exceeds 16 groups x 16 modes")
	ErrEmptyGroup    = errors.New("mode table group starts with the zero sentinel")
)

// ModeTable is the read-only groups x modes matrix. Rows shorter than the
// widest row are padded with the zero sentinel. It doubles as the mode
// group selector: every advance and pack rule lives here.
type ModeTable struct {
	codes  [MaxGroups][MaxModes]Code
	groups uint8
	modes  uint8
}

// NewModeTable copies rows into a table and validates it.
func NewModeTable(rows [][]Code) (*ModeTable, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	if len(rows) > MaxGroups {
		return nil, ErrTableTooLarge
	}

	t := &ModeTable{groups: uint8(len(rows))}
	for g, row := range rows {
		if len(row) > MaxModes {
			return nil, ErrTableTooLarge
		}
		if len(row) == 0 || row[0] == 0 {
			return nil, ErrEmptyGroup
		}
		if uint8(len(row)) > t.modes {
			t.modes = uint8(len(row))
		}
		copy(t.codes[g][:], row)
	}
	return t, nil
}

// MustModeTable is NewModeTable for build-time tables; it panics on error.
func MustModeTable(rows [][]Code) *ModeTable {
	t, err := NewModeTable(rows)
	if err != nil {
		panic("mode table: " + err.Error())
	}
	return t
}

// Groups returns GROUPS_COUNT.
func (t *ModeTable) Groups() uint8 { return t.groups }

// Modes returns MODES_COUNT, the padded row width.
func (t *ModeTable) Modes() uint8 { return t.modes }

// Level returns the code at (group, mode). Out of range indices are
// folded into the table first.
func (t *ModeTable) Level(group, mode uint8) Code {
	return t.codes[foldMod(group, t.groups)][foldMod(mode, t.modes)]
}

// NextMode advances within a group, wrapping to mode 0 at the end of the
// row or at the first zero sentinel.
func (t *ModeTable) NextMode(group, mode uint8) uint8 {
	next := wrapNext(foldMod(mode, t.modes), t.modes)
	if t.Level(group, next) == 0 {
		return 0
	}
	return next
}

// NextGroup advances to the following group, wrapping at GROUPS_COUNT.
func (t *ModeTable) NextGroup(group uint8) uint8 {
	return wrapNext(foldMod(group, t.groups), t.groups)
}

// Cycle returns the effective length of a group: the index of its first
// zero sentinel, or the row width when there is none.
func (t *ModeTable) Cycle(group uint8) uint8 {
	row := &t.codes[foldMod(group, t.groups)]
	for m := uint8(1); m < t.modes; m++ {
		if row[m] == 0 {
			return m
		}
	}
	return t.modes
}

// Encode packs (group, mode) as a nibble pair 0bGGGGMMMM.
func (t *ModeTable) Encode(group, mode uint8) byte {
	return foldMod(group, t.groups)<<4 | foldMod(mode, t.modes)&0x0f
}

// Decode unpacks a nibble pair. Any value, including the erased 0xFF
// byte, decodes to a valid index pair.
func (t *ModeTable) Decode(b byte) (group, mode uint8) {
	return foldMod(b>>4, t.groups), foldMod(b&0x0f, t.modes)
}

// Clamp folds a raw (group, mode) pair into the table.
func (t *ModeTable) Clamp(group, mode uint8) (uint8, uint8) {
	return foldMod(group, t.groups), foldMod(mode, t.modes)
}

// each calls fn for every non-sentinel entry.
func (t *ModeTable) each(fn func(group, mode uint8, c Code) error) error {
	for g := uint8(0); g < t.groups; g++ {
		for m := uint8(0); m < t.modes; m++ {
			c := t.codes[g][m]
			if c == 0 {
				continue
			}
			if err := fn(g, m, c); err != nil {
				return err
			}
		}
	}
	return nil
}
