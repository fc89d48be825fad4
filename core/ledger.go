package core

// PersistedRecord is the only durable state: the click marker, the short
// click counter and the (group, mode) pair.
type PersistedRecord struct {
	// Clicks counts short clicks since the last confirmed activation.
	Clicks uint8
	// Speculative is the tick strategy's click marker: the record was
	// written at boot and has not been confirmed by a lock-in yet.
	Speculative bool
	Group       uint8
	Mode        uint8
}

// MaxClicks is the click counter ceiling. Keeping it below 0x7F means the
// commit byte of a word cell can never read back as ErasedByte.
const MaxClicks = 0x7E

const maxCellSize = 2

// RecordCodec maps a record onto one ledger cell. Byte 0 of every cell is
// the commit byte: a cell is occupied iff its commit byte is not erased.
type RecordCodec interface {
	CellSize() uint16
	// HasClicks reports whether the layout stores the click counter.
	HasClicks() bool
	Encode(rec PersistedRecord, t *ModeTable, cell []byte)
	Decode(cell []byte, t *ModeTable) PersistedRecord
}

// WordCodec is the two byte layout:
//
//	byte 0: 0bSCCCCCCC  S = speculative marker, C = clicks
//	byte 1: 0bGGGGMMMM
type WordCodec struct{}

func (WordCodec) CellSize() uint16 { return 2 }
func (WordCodec) HasClicks() bool  { return true }

func (WordCodec) Encode(rec PersistedRecord, t *ModeTable, cell []byte) {
	c := rec.Clicks
	if c > MaxClicks {
		c = MaxClicks
	}
	if rec.Speculative {
		c |= 0x80
	}
	cell[0] = c
	cell[1] = t.Encode(rec.Group, rec.Mode)
}

func (WordCodec) Decode(cell []byte, t *ModeTable) PersistedRecord {
	rec := PersistedRecord{
		Clicks:      cell[0] & 0x7f,
		Speculative: cell[0]&0x80 != 0,
	}
	if rec.Clicks > MaxClicks {
		rec.Clicks = MaxClicks
	}
	rec.Group, rec.Mode = t.Decode(cell[1])
	return rec
}

// PackedCodec is the one byte layout 0bSGGGGMMM. It has no click counter
// and holds at most 8 modes per group. Group 15 is unusable: with the
// marker and mode 7 it would encode as ErasedByte.
type PackedCodec struct{}

func (PackedCodec) CellSize() uint16 { return 1 }
func (PackedCodec) HasClicks() bool  { return false }

func (PackedCodec) Encode(rec PersistedRecord, t *ModeTable, cell []byte) {
	g, m := t.Clamp(rec.Group, rec.Mode)
	b := (g&0x0f)<<3 | m&0x07
	if rec.Speculative {
		b |= 0x80
	}
	cell[0] = b
}

func (PackedCodec) Decode(cell []byte, t *ModeTable) PersistedRecord {
	rec := PersistedRecord{Speculative: cell[0]&0x80 != 0}
	rec.Group, rec.Mode = t.Clamp((cell[0]>>3)&0x0f, cell[0]&0x07)
	return rec
}

// LedgerConfig places the rotating region in the store.
type LedgerConfig struct {
	Base  uint16
	Slots uint8
	Codec RecordCodec
}

// Size returns the number of store bytes the region spans.
func (c LedgerConfig) Size() uint16 {
	if c.Codec == nil {
		return uint16(c.Slots) * WordCodec{}.CellSize()
	}
	return uint16(c.Slots) * c.Codec.CellSize()
}

// Ledger keeps one record in a ring of cells. Saves write the next cell
// before erasing the current one, so every cell sees at most one write
// per Slots saves.
//
// With old and new cells briefly both occupied, the authoritative cell is
// the occupied one whose cyclic successor is erased. The new cell always
// follows the old one in write order, including across the wrap from the
// last slot to slot 0, so it wins.
type Ledger struct {
	store  NVStore
	codec  RecordCodec
	table  *ModeTable
	base   uint16
	slots  uint8
	cursor uint8
	loaded bool
	cell   [maxCellSize]byte

	// corrupt is set when Load found no erased slot at all.
	corrupt bool
}

// NewLedger binds a region of store to the table used to clamp records.
func NewLedger(store NVStore, cfg LedgerConfig, table *ModeTable) *Ledger {
	if cfg.Codec == nil {
		cfg.Codec = WordCodec{}
	}
	if cfg.Slots == 0 {
		cfg.Slots = 1
	}
	return &Ledger{
		store:  store,
		codec:  cfg.Codec,
		table:  table,
		base:   cfg.Base,
		slots:  cfg.Slots,
		cursor: cfg.Slots - 1,
	}
}

// Slots returns the ring size.
func (l *Ledger) Slots() uint8 { return l.slots }

// Cursor returns the slot holding the current record.
func (l *Ledger) Cursor() uint8 { return l.cursor }

func (l *Ledger) addr(slot uint8) uint16 {
	return l.base + uint16(slot)*l.codec.CellSize()
}

// occupied reports whether the commit byte of slot is programmed. Read
// failures count as erased.
func (l *Ledger) occupied(slot uint8) bool {
	b, err := l.store.Read(l.addr(slot))
	return err == nil && b != ErasedByte
}

// Load finds the current record. found is false when every cell is erased,
// in which case the default record (group 0, mode 0) is returned. The scan
// visits each slot at most twice.
func (l *Ledger) Load() (rec PersistedRecord, found bool) {
	l.loaded = true
	l.corrupt = false

	head, first := -1, -1
	for i := uint8(0); i < l.slots; i++ {
		if !l.occupied(i) {
			continue
		}
		if first < 0 {
			first = int(i)
		}
		if !l.occupied(wrapNext(i, l.slots)) {
			head = int(i)
			break
		}
	}
	if head < 0 && first >= 0 {
		head = first
		l.corrupt = true
	}
	if head < 0 {
		l.cursor = l.slots - 1
		return PersistedRecord{}, false
	}

	l.cursor = uint8(head)
	cell := l.cell[:l.codec.CellSize()]
	base := l.addr(l.cursor)
	for i := range cell {
		b, err := l.store.Read(base + uint16(i))
		if err != nil {
			b = ErasedByte
		}
		cell[i] = b
	}
	return l.codec.Decode(cell, l.table), true
}

// Save writes rec to the slot after the cursor, then erases the previous
// slot. Payload bytes are programmed before the commit byte and the commit
// byte is erased first, so a torn sequence never exposes a half record.
// Interrupts stay masked for the whole sequence.
func (l *Ledger) Save(rec PersistedRecord) error {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if !l.loaded {
		l.Load()
	}

	size := l.codec.CellSize()
	cell := l.cell[:size]
	l.codec.Encode(rec, l.table, cell)

	old := l.cursor
	next := wrapNext(old, l.slots)
	base := l.addr(next)
	if next != old && l.occupied(next) {
		// Only after corruption: the target must be blank before it is
		// programmed.
		if err := l.erase(next); err != nil {
			return err
		}
	}
	for i := size - 1; i > 0; i-- {
		if err := l.store.Write(base+i, cell[i]); err != nil {
			return err
		}
	}
	if err := l.store.Write(base, cell[0]); err != nil {
		return err
	}
	l.cursor = next
	if next == old {
		return nil
	}
	if err := l.erase(old); err != nil {
		return err
	}
	if l.corrupt {
		// Clear the rest of the ring so the new slot is the only one.
		for s := uint8(0); s < l.slots; s++ {
			if s != next && l.occupied(s) {
				if err := l.erase(s); err != nil {
					return err
				}
			}
		}
		l.corrupt = false
	}
	return nil
}

// erase clears a slot, commit byte first.
func (l *Ledger) erase(slot uint8) error {
	base := l.addr(slot)
	for i := uint16(0); i < l.codec.CellSize(); i++ {
		if err := l.store.Erase(base + i); err != nil {
			return err
		}
	}
	return nil
}
