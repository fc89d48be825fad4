package core

import "errors"

// StrategyKind selects the click detector.
type StrategyKind uint8

const (
	// StrategyTick locks in after LockTime powered ticks.
	StrategyTick StrategyKind = iota
	// StrategyCapacitor samples the off-time capacitor at boot.
	StrategyCapacitor
)

func (k StrategyKind) String() string {
	if k == StrategyCapacitor {
		return "capacitor"
	}
	return "tick"
}

// Config is the build-time description of one driver. It is constructed
// once, validated at startup and never mutated afterwards.
type Config struct {
	Name     string
	Table    *ModeTable
	Drive    Drive
	Policy   MemoryPolicy
	Strategy StrategyKind
	Specials Specials
	Ledger   LedgerConfig

	// LockTime in ticks. Also paces the group change blink.
	LockTime uint8
	// GroupChangeMode is the mode index that triggers the group change
	// blink.
	GroupChangeMode uint8

	// BattCheckClicks short clicks trigger the battery readout; 0
	// disables it.
	BattCheckClicks uint8
	BattLevels      BattLevels
	// BattMonThreshold is the low battery sample level; 0 disables
	// derating.
	BattMonThreshold ADCValue
	// LowBattSamples consecutive low samples are tolerated before a
	// derating step.
	LowBattSamples uint8
	// MonitorPeriod is the run loop period in ticks.
	MonitorPeriod uint16
	// TurboTimeout in ticks after which the top level is halved; 0
	// disables it.
	TurboTimeout uint32

	// CapThreshold for StrategyCapacitor.
	CapThreshold ADCValue
	ChargePin    GPIOPin
}

var (
	ErrNoTable            = errors.New("config: no mode table")
	ErrLockTime           = errors.New("config: lock time must be at least 10 ticks")
	ErrMonitorPeriod      = errors.New("config: monitor period must be non-zero")
	ErrGroupChangeMode    = errors.New("config: group change mode must be a direct level in every group")
	ErrCodeRange          = errors.New("config: mode code out of range for drive")
	ErrSpecials           = errors.New("config: special codes must be distinct")
	ErrLedgerSlots        = errors.New("config: ledger needs at least 2 slots")
	ErrBattCheckNoClicks  = errors.New("config: battery check needs a ledger layout with a click counter")
	ErrBattCheckTooHigh   = errors.New("config: battery check threshold exceeds the click counter")
	ErrPackedLayoutModes  = errors.New("config: one byte ledger cells hold at most 15 groups of 8 modes")
	ErrLedgerAddressRange = errors.New("config: ledger region overflows the address space")
)

// Validate checks the invariants the controller relies on.
func (c *Config) Validate() error {
	if c.Table == nil {
		return ErrNoTable
	}
	if c.LockTime < 10 {
		return ErrLockTime
	}
	if c.MonitorPeriod == 0 {
		return ErrMonitorPeriod
	}
	if err := c.validateSpecials(); err != nil {
		return err
	}
	err := c.Table.each(func(g, m uint8, code Code) error {
		if c.Specials.Pattern(code) != PatternNone {
			return nil
		}
		if code < c.Drive.MinLevel() || code > c.Drive.MaxLevel() {
			return ErrCodeRange
		}
		return nil
	})
	if err != nil {
		return err
	}
	for g := uint8(0); g < c.Table.Groups(); g++ {
		if c.GroupChangeMode >= c.Table.Cycle(g) {
			return ErrGroupChangeMode
		}
		code := c.Table.Level(g, c.GroupChangeMode)
		if code == 0 || c.Specials.Pattern(code) != PatternNone {
			return ErrGroupChangeMode
		}
	}
	return c.validateLedger()
}

func (c *Config) validateSpecials() error {
	s := c.Specials
	codes := []Code{s.Strobe, s.Police, s.SOS}
	for i, a := range codes {
		for _, b := range codes[i+1:] {
			if a != 0 && a == b {
				return ErrSpecials
			}
		}
	}
	return nil
}

func (c *Config) validateLedger() error {
	l := c.Ledger
	if l.Slots < 2 {
		return ErrLedgerSlots
	}
	codec := l.Codec
	if codec == nil {
		codec = WordCodec{}
	}
	if uint32(l.Base)+uint32(l.Slots)*uint32(codec.CellSize()) > 0x10000 {
		return ErrLedgerAddressRange
	}
	if !codec.HasClicks() {
		if c.BattCheckClicks > 0 {
			return ErrBattCheckNoClicks
		}
		if c.Table.Modes() > 8 || c.Table.Groups() > 15 {
			return ErrPackedLayoutModes
		}
	}
	if c.BattCheckClicks > MaxClicks {
		return ErrBattCheckTooHigh
	}
	return nil
}

// Pattern returns the blink pattern selected by code, if any.
func (c *Config) Pattern(code Code) Pattern {
	return c.Specials.Pattern(code)
}

// NewDetector builds the click detector the config selects. The
// capacitor strategy samples and charges through the given drivers.
func (c *Config) NewDetector(adc ADCDriver, gpio GPIODriver) ClickDetector {
	if c.Strategy == StrategyCapacitor {
		return &CapacitorCharge{
			ADC:       adc,
			GPIO:      gpio,
			Channel:   CapacitorChannel,
			ChargePin: c.ChargePin,
			Threshold: c.CapThreshold,
			Policy:    c.Policy,
		}
	}
	return &TickLock{LockTime: c.LockTime, Policy: c.Policy}
}
