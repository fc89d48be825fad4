package core

import "time"

// Reserved codes for the blink patterns.
const (
	CodeStrobe Code = 254
	CodePolice Code = 253
	CodeSOS    Code = 252

	// Dual channel tables stay inside -127..127.
	CodeDualStrobe Code = 126
	CodeDualPolice Code = 125
	CodeDualSOS    Code = 124
)

// DefaultLedger is 16 two byte cells from address 0.
var DefaultLedger = LedgerConfig{Base: 0, Slots: 16, Codec: WordCodec{}}

// Nanjg105D is the single channel on-time driver.
func Nanjg105D() Config {
	return Config{
		Name: "nanjg105d",
		Table: MustModeTable([][]Code{
			{6, 32, 128, 255, 0, 0, 0, 0},
			{6, 32, 128, 255, CodeStrobe, CodePolice, CodeSOS, 0},
		}),
		Drive:            DriveSingle,
		Policy:           MemLast,
		Strategy:         StrategyTick,
		Specials:         Specials{Strobe: CodeStrobe, Police: CodePolice, SOS: CodeSOS},
		Ledger:           DefaultLedger,
		LockTime:         50,
		GroupChangeMode:  0,
		BattCheckClicks:  16,
		BattLevels:       DefaultBattLevels,
		BattMonThreshold: 125,
		LowBattSamples:   8,
		MonitorPeriod:    10,
	}
}

// Nanjg105DCompact is Nanjg105D on the one byte ledger layout: 32 slots,
// no click counter and therefore no battery readout.
func Nanjg105DCompact() Config {
	c := Nanjg105D()
	c.Name = "nanjg105d-compact"
	c.Ledger = LedgerConfig{Base: 0, Slots: 32, Codec: PackedCodec{}}
	c.BattCheckClicks = 0
	return c
}

// A17DDL is the dual channel off-time driver with turbo step-down.
func A17DDL() Config {
	return Config{
		Name: "a17ddl",
		Table: MustModeTable([][]Code{
			{-3, -127, 64, 127, 0, 0, 0, 0},
			{-3, -127, 64, 127, CodeDualStrobe, CodeDualPolice, CodeDualSOS, 0},
		}),
		Drive:            DriveDual,
		Policy:           MemLast,
		Strategy:         StrategyCapacitor,
		Specials:         Specials{Strobe: CodeDualStrobe, Police: CodeDualPolice, SOS: CodeDualSOS},
		Ledger:           DefaultLedger,
		LockTime:         50,
		GroupChangeMode:  0,
		BattCheckClicks:  16,
		BattLevels:       DefaultBattLevels,
		BattMonThreshold: 125,
		LowBattSamples:   8,
		MonitorPeriod:    50,
		TurboTimeout:     TicksFor(60 * time.Second),
		CapThreshold:     190,
		ChargePin:        28, // ADC2 on the RP2040
	}
}

// Preset returns the named preset.
func Preset(name string) (Config, bool) {
	switch name {
	case "nanjg105d":
		return Nanjg105D(), true
	case "nanjg105d-compact":
		return Nanjg105DCompact(), true
	case "a17ddl":
		return A17DDL(), true
	}
	return Config{}, false
}

// PresetNames lists the names Preset accepts.
func PresetNames() []string {
	return []string{"nanjg105d", "nanjg105d-compact", "a17ddl"}
}
