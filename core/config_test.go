package core

import "testing"

func TestPresetsValidate(t *testing.T) {
	for _, name := range PresetNames() {
		cfg, ok := Preset(name)
		if !ok {
			t.Errorf("Preset(%q) missing", name)
			continue
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: Validate() = %v", name, err)
		}
		if cfg.Name != name {
			t.Errorf("preset %q is named %q", name, cfg.Name)
		}
	}
	if _, ok := Preset("nope"); ok {
		t.Error("Preset accepted an unknown name")
	}
}

func TestA17DDLTurboTimeout(t *testing.T) {
	if got := A17DDL().TurboTimeout; got != 3000 {
		t.Errorf("TurboTimeout = %d ticks, expected 3000", got)
	}
}

func TestA17DDLSamplesChargePin(t *testing.T) {
	// RP2040 ADCn is GPIO26+n. The capacitor must be read on the pin
	// that charges it, and ADC3 (GPIO29) is taken by the VSYS sense.
	cfg := A17DDL()
	if got := GPIOPin(26 + uint32(CapacitorChannel)); got != cfg.ChargePin {
		t.Errorf("capacitor sampled on GPIO%d, charged on GPIO%d", got, cfg.ChargePin)
	}
	if CapacitorChannel == 3 || CapacitorChannel == BatteryChannel {
		t.Errorf("capacitor channel %d collides with a board input", CapacitorChannel)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"no table", func(c *Config) { c.Table = nil }, ErrNoTable},
		{"short lock", func(c *Config) { c.LockTime = 5 }, ErrLockTime},
		{"no period", func(c *Config) { c.MonitorPeriod = 0 }, ErrMonitorPeriod},
		{"duplicate specials", func(c *Config) { c.Specials.SOS = c.Specials.Strobe }, ErrSpecials},
		{"negative single", func(c *Config) {
			c.Table = MustModeTable([][]Code{{6, -3}})
		}, ErrCodeRange},
		{"dual out of range", func(c *Config) {
			c.Drive = DriveDual
			c.Specials = Specials{}
			c.Table = MustModeTable([][]Code{{6, 200}})
		}, ErrCodeRange},
		{"group change on pattern", func(c *Config) {
			c.Table = MustModeTable([][]Code{{CodeStrobe, 6}})
		}, ErrGroupChangeMode},
		{"group change past cycle", func(c *Config) { c.GroupChangeMode = 5 }, ErrGroupChangeMode},
		{"one slot", func(c *Config) { c.Ledger.Slots = 1 }, ErrLedgerSlots},
		{"packed battcheck", func(c *Config) {
			c.Ledger = LedgerConfig{Slots: 32, Codec: PackedCodec{}}
		}, ErrBattCheckNoClicks},
		{"packed wide", func(c *Config) {
			c.BattCheckClicks = 0
			c.Ledger = LedgerConfig{Slots: 32, Codec: PackedCodec{}}
			c.Table = MustModeTable([][]Code{{1, 2, 3, 4, 5, 6, 7, 8, 9}})
		}, ErrPackedLayoutModes},
		{"battcheck too high", func(c *Config) { c.BattCheckClicks = 127 }, ErrBattCheckTooHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Nanjg105D()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err != tt.err {
				t.Errorf("Validate() = %v, expected %v", err, tt.err)
			}
		})
	}
}

func TestConfigNewDetector(t *testing.T) {
	tick := Nanjg105D()
	if _, ok := tick.NewDetector(nil, nil).(*TickLock); !ok {
		t.Error("tick preset did not build a TickLock")
	}
	capCfg := A17DDL()
	d, ok := capCfg.NewDetector(NewSimADC(), NewSimPin()).(*CapacitorCharge)
	if !ok {
		t.Fatal("capacitor preset did not build a CapacitorCharge")
	}
	if d.Threshold != 190 || d.Channel != CapacitorChannel {
		t.Errorf("detector = %+v", d)
	}
}

func TestTicksFor(t *testing.T) {
	if TicksPerSecond != 50 {
		t.Errorf("TicksPerSecond = %d", TicksPerSecond)
	}
	if got := TicksToDuration(TicksFor(TickPeriod * 7)); got != 7*TickPeriod {
		t.Errorf("round trip = %v", got)
	}
}
