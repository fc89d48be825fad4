package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"quasar/core"
	"quasar/host/sim"
)

// notable are the events a transcript lists per cycle.
var notable = map[core.EventKind]bool{
	core.EvtShortClick:  true,
	core.EvtLongBoot:    true,
	core.EvtLockIn:      true,
	core.EvtBattCheck:   true,
	core.EvtGroupChange: true,
	core.EvtDerate:      true,
	core.EvtTurboStep:   true,
	core.EvtPattern:     true,
	core.EvtSaveFailed:  true,
	core.EvtOutputFault: true,
}

// CycleResult is one power cycle of a run.
type CycleResult struct {
	*sim.Cycle
	Off int
}

// Transcript is the outcome of a run.
type Transcript struct {
	Name   string
	Preset string
	Cycles []CycleResult
	Stored core.PersistedRecord
	Found  bool
}

// Final returns the context of the last cycle.
func (t *Transcript) Final() core.Context {
	if len(t.Cycles) == 0 {
		return core.Context{}
	}
	return t.Cycles[len(t.Cycles)-1].Context
}

// Level returns the code driven when power was last cut.
func (t *Transcript) Level() core.Code {
	if len(t.Cycles) == 0 {
		return 0
	}
	return t.Cycles[len(t.Cycles)-1].Level
}

// Count returns how many events of kind were recorded over the run.
func (t *Transcript) Count(kind core.EventKind) int {
	n := 0
	for _, c := range t.Cycles {
		for _, e := range c.Events {
			if e.Kind == kind {
				n++
			}
		}
	}
	return n
}

// Render formats the transcript deterministically.
func (t *Transcript) Render() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "scenario: %s\n", t.Name)
	fmt.Fprintf(&b, "preset: %s\n", t.Preset)
	for _, c := range t.Cycles {
		ctx := c.Context
		fmt.Fprintf(&b, "cycle %d: on=%d off=%d state=%s group=%d mode=%d clicks=%d locked=%t level=%d\n",
			c.Index, c.On, c.Off, c.State, ctx.Group, ctx.Mode, ctx.Clicks, ctx.Locked, c.Level)
		for _, e := range c.Events {
			if notable[e.Kind] {
				fmt.Fprintf(&b, "  %s\n", e)
			}
		}
	}
	if t.Found {
		fmt.Fprintf(&b, "stored: group=%d mode=%d clicks=%d speculative=%t\n",
			t.Stored.Group, t.Stored.Mode, t.Stored.Clicks, t.Stored.Speculative)
	} else {
		b.WriteString("stored: none\n")
	}
	return b.Bytes()
}

// Run executes the scenario on a fresh device.
func Run(s *Scenario) (*Transcript, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	dev, err := sim.NewDevice(cfg)
	if err != nil {
		return nil, err
	}
	if s.Battery != nil {
		dev.SetBattery(core.ADCValue(*s.Battery))
	}

	tr := &Transcript{Name: s.Name, Preset: cfg.Name}
	for i, st := range s.Steps {
		if st.Battery != nil {
			dev.SetBattery(core.ADCValue(*st.Battery))
		}
		repeat := st.Repeat
		if repeat == 0 {
			repeat = 1
		}
		for n := 0; n < repeat; n++ {
			if n == 0 && st.CutAfterWrites != nil {
				dev.CutPowerAfterWrites(*st.CutAfterWrites)
			}
			cy, err := dev.PowerOn(st.On)
			if err != nil {
				return tr, fmt.Errorf("step %d: %w", i+1, err)
			}
			dev.PowerOff(st.Off)
			slog.Debug("cycle", "scenario", s.Name, "cycle", cy.Index,
				"group", cy.Context.Group, "mode", cy.Context.Mode, "state", cy.State.String())
			tr.Cycles = append(tr.Cycles, CycleResult{Cycle: cy, Off: st.Off})
		}
	}
	tr.Stored, tr.Found = dev.Stored()
	return tr, nil
}

// Check compares the transcript with the scenario's expectations.
func (s *Scenario) Check(t *Transcript) error {
	var errs []error
	final := t.Final()
	e := s.Expect
	if e.Group != nil && final.Group != *e.Group {
		errs = append(errs, fmt.Errorf("group = %d, expected %d", final.Group, *e.Group))
	}
	if e.Mode != nil && final.Mode != *e.Mode {
		errs = append(errs, fmt.Errorf("mode = %d, expected %d", final.Mode, *e.Mode))
	}
	if e.Clicks != nil && final.Clicks != *e.Clicks {
		errs = append(errs, fmt.Errorf("clicks = %d, expected %d", final.Clicks, *e.Clicks))
	}
	if e.Level != nil && int(t.Level()) != *e.Level {
		errs = append(errs, fmt.Errorf("level = %d, expected %d", t.Level(), *e.Level))
	}
	if e.BattChecks != nil {
		if n := t.Count(core.EvtBattCheck); n != *e.BattChecks {
			errs = append(errs, fmt.Errorf("battchecks = %d, expected %d", n, *e.BattChecks))
		}
	}
	if e.LockIns != nil {
		if n := t.Count(core.EvtLockIn); n != *e.LockIns {
			errs = append(errs, fmt.Errorf("lock-ins = %d, expected %d", n, *e.LockIns))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario %q: %w", s.Name, errors.Join(errs...))
	}
	return nil
}
