package core

import "errors"

// ErrPowerLost is returned when the supply disappears mid-operation. On
// hardware nothing ever observes it; simulated backends return it.
var ErrPowerLost = errors.New("power lost")

// SessionState is the controller's position in the boot sequence.
type SessionState uint8

const (
	StateBoot SessionState = iota
	StateLoaded
	StateBattCheck
	StateGroupChange
	StateRun
)

func (s SessionState) String() string {
	switch s {
	case StateBoot:
		return "boot"
	case StateLoaded:
		return "loaded"
	case StateBattCheck:
		return "battcheck"
	case StateGroupChange:
		return "group_change"
	case StateRun:
		return "run"
	}
	return "unknown"
}

// Group change steps reported in EvtGroupChange.
const (
	groupChangeStart   = 1
	groupChangeAdvance = 2
	groupChangeKeep    = 3
)

// Board bundles the collaborators a controller drives.
type Board struct {
	Store NVStore
	ADC   ADCDriver
	PWM   PWMDriver
	GPIO  GPIODriver
	Clock Clock
	Trace *Trace
}

// Controller runs one powered session: load, classify, the battery and
// group change rituals, then the run loop.
type Controller struct {
	cfg      *Config
	table    *ModeTable
	ledger   *Ledger
	detector ClickDetector
	out      *Output
	batt     *BatteryMonitor
	clock    Clock
	trace    *Trace

	ctx     Context
	state   SessionState
	level   Code
	runTime uint32
	err     error
}

// NewController validates cfg and wires it to board.
func NewController(cfg *Config, board Board) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:      cfg,
		table:    cfg.Table,
		ledger:   NewLedger(board.Store, cfg.Ledger, cfg.Table),
		detector: cfg.NewDetector(board.ADC, board.GPIO),
		out:      NewOutput(board.PWM, cfg.Drive),
		batt:     NewBatteryMonitor(board.ADC, BatteryChannel, cfg.BattMonThreshold, cfg.LowBattSamples),
		clock:    board.Clock,
		trace:    board.Trace,
	}
	return c, nil
}

// Context returns a snapshot of the session context.
func (c *Controller) Context() Context { return c.ctx.Snapshot() }

// State returns the current state.
func (c *Controller) State() SessionState { return c.state }

// Level returns the code currently being driven.
func (c *Controller) Level() Code { return c.level }

// Ledger exposes the ledger for inspection.
func (c *Controller) Ledger() *Ledger { return c.ledger }

// Boot runs a session until the clock reports power loss, which is the
// only way it returns. On hardware it never returns.
func (c *Controller) Boot() error {
	c.ctx = Context{}
	c.state = StateBoot
	c.level = 0
	c.runTime = 0
	c.err = nil
	c.batt.low = 0

	c.detector.Prime()
	if err := c.out.Configure(); err != nil {
		c.record(EvtOutputFault, 0, 0)
	}
	c.record(EvtBoot, int32(c.cfg.Strategy), 0)

	if err := c.load(); err != nil {
		return c.lost(err)
	}
	if err := c.battCheck(); err != nil {
		return c.lost(err)
	}
	if err := c.groupChange(); err != nil {
		return c.lost(err)
	}
	return c.lost(c.run())
}

func (c *Controller) lost(err error) error {
	if errors.Is(err, ErrPowerLost) {
		c.record(EvtPowerLost, 0, 0)
	}
	return err
}

// load reads the ledger, classifies the boot and writes the optimistic
// record for the next one.
func (c *Controller) load() error {
	rec, found := c.ledger.Load()
	g, m := rec.Group, rec.Mode
	clicks := rec.Clicks
	c.record(EvtLoad, int32(c.table.Encode(g, m)), boolArg(found))
	if c.table.Level(g, m) == 0 {
		// Decode only folds into the padded row; a corrupt cell can
		// still point past the group's terminator.
		m = 0
		rec.Mode = 0
	}

	if c.detector.IsShortClick(rec, found) {
		m = c.table.NextMode(g, m)
		clicks = satInc(clicks, MaxClicks)
		c.record(EvtShortClick, int32(m), int32(clicks))
	} else {
		if found {
			m = c.detector.LongBootMode(c.table, g, m)
		}
		clicks = 0
		c.record(EvtLongBoot, int32(m), 0)
	}

	Critical(func() {
		c.ctx.Group = g
		c.ctx.Mode = m
		c.ctx.Clicks = clicks
	})
	c.state = StateLoaded

	if err := c.persist(g, m, clicks); err != nil {
		return err
	}
	c.detector.Rearm()
	return nil
}

// battCheck blinks the battery level after enough short clicks.
func (c *Controller) battCheck() error {
	ctx := c.ctx.Snapshot()
	if c.cfg.BattCheckClicks == 0 || ctx.Clicks < c.cfg.BattCheckClicks {
		return nil
	}
	c.state = StateBattCheck

	c.off()
	if err := c.sleep(50); err != nil {
		return err
	}
	v, _ := c.batt.Sample()
	blinks := c.cfg.BattLevels.BlinkCount(v)
	c.record(EvtBattCheck, int32(v), int32(blinks))
	for i := uint8(0); i < blinks; i++ {
		if err := c.pulse(Pulse{On: 10, Off: 20}); err != nil {
			return err
		}
	}
	if err := c.sleep(50); err != nil {
		return err
	}

	var locked bool
	Critical(func() {
		c.ctx.Clicks = 0
		locked = c.ctx.Locked
	})
	if locked {
		return nil
	}
	return c.persist(ctx.Group, ctx.Mode, 0)
}

// groupChange runs the hold-to-change blink. Power lost after the
// intermediate save leaves the next group at mode 0; holding through
// the second light keeps the current group.
func (c *Controller) groupChange() error {
	ctx := c.ctx.Snapshot()
	if ctx.Mode != c.cfg.GroupChangeMode {
		return nil
	}
	c.state = StateGroupChange
	lock := uint16(c.cfg.LockTime)
	code := c.table.Level(ctx.Group, ctx.Mode)
	c.record(EvtGroupChange, groupChangeStart, int32(ctx.Group))

	c.light(code)
	if err := c.sleep(2 * lock); err != nil {
		return err
	}

	next := c.table.NextGroup(ctx.Group)
	if err := c.save(PersistedRecord{Group: next}); err != nil {
		return err
	}
	c.record(EvtGroupChange, groupChangeAdvance, int32(next))

	c.off()
	if err := c.sleep(lock / 10); err != nil {
		return err
	}
	c.light(code)
	if err := c.sleep(lock); err != nil {
		return err
	}

	mode := c.detector.ConfirmedMode(c.table, ctx.Group, ctx.Mode)
	if err := c.save(PersistedRecord{Group: ctx.Group, Mode: mode}); err != nil {
		return err
	}
	c.record(EvtGroupChange, groupChangeKeep, int32(ctx.Group))
	return nil
}

// run drives the resolved code until power is lost.
func (c *Controller) run() error {
	c.state = StateRun
	ctx := c.ctx.Snapshot()
	code := c.table.Level(ctx.Group, ctx.Mode)

	if p := c.cfg.Pattern(code); p != PatternNone {
		c.record(EvtPattern, int32(p), 0)
		return c.play(p)
	}

	c.record(EvtRun, int32(code), 0)
	level := code
	for {
		if c.batt.Check() {
			next := Derate(level)
			c.record(EvtDerate, int32(level), int32(next))
			level = next
		}
		if c.cfg.TurboTimeout > 0 && c.runTime >= c.cfg.TurboTimeout && level == c.cfg.Drive.MaxLevel() {
			next := level >> 1
			c.record(EvtTurboStep, int32(level), int32(next))
			level = next
		}
		c.light(level)
		if err := c.sleep(c.cfg.MonitorPeriod); err != nil {
			return err
		}
		c.runTime += uint32(c.cfg.MonitorPeriod)
	}
}

// play repeats a blink pattern forever. Patterns are not derated.
func (c *Controller) play(p Pattern) error {
	pulses := p.Pulses()
	for {
		for _, s := range pulses {
			if err := c.pulse(s); err != nil {
				return err
			}
		}
	}
}

func (c *Controller) pulse(s Pulse) error {
	if s.On > 0 {
		c.impulse(true)
		if err := c.sleep(s.On); err != nil {
			return err
		}
	}
	c.impulse(false)
	return c.sleep(s.Off)
}

// Tick is the periodic handler: it advances the tick counters and fires
// the lock-in. The lock-in save masks interrupts like every other save.
func (c *Controller) Tick() {
	var lock bool
	Critical(func() {
		c.ctx.Elapsed++
		c.ctx.Ticks = satInc(c.ctx.Ticks, 255)
		lock = c.detector.OnTick(c.ctx.Ticks)
	})
	if lock {
		c.lockIn()
	}
}

func (c *Controller) lockIn() {
	var g, m uint8
	Critical(func() {
		c.ctx.Locked = true
		c.ctx.Clicks = 0
		g, m = c.ctx.Group, c.ctx.Mode
	})
	mode := c.detector.ConfirmedMode(c.table, g, m)
	c.record(EvtLockIn, int32(c.table.Encode(g, mode)), 0)
	if err := c.save(PersistedRecord{Group: g, Mode: mode}); err != nil && c.err == nil {
		c.err = err
	}
}

// sleep waits n tick periods, running the tick handler after each.
func (c *Controller) sleep(n uint16) error {
	for ; n > 0; n-- {
		if !c.clock.Wait() {
			return ErrPowerLost
		}
		c.Tick()
		if c.err != nil {
			return c.err
		}
	}
	return nil
}

// persist writes the current selection, carrying the click marker unless
// the activation is already confirmed.
func (c *Controller) persist(g, m, clicks uint8) error {
	spec := c.detector.Speculative() && !c.ctx.Snapshot().Locked
	return c.save(PersistedRecord{Clicks: clicks, Speculative: spec, Group: g, Mode: m})
}

// save writes rec. Store faults are absorbed except power loss.
func (c *Controller) save(rec PersistedRecord) error {
	err := c.ledger.Save(rec)
	if err != nil {
		c.record(EvtSaveFailed, int32(c.ledger.Cursor()), 0)
		if errors.Is(err, ErrPowerLost) {
			return err
		}
		return nil
	}
	c.record(EvtSave, int32(c.ledger.Cursor()), int32(c.table.Encode(rec.Group, rec.Mode)))
	return nil
}

func (c *Controller) light(code Code) {
	c.level = code
	if err := c.out.Set(code); err != nil {
		c.record(EvtOutputFault, int32(code), 0)
	}
}

func (c *Controller) off() { c.light(0) }

func (c *Controller) impulse(on bool) {
	if on {
		c.level = c.cfg.Drive.MaxLevel()
	} else {
		c.level = 0
	}
	if err := c.out.Impulse(on); err != nil {
		c.record(EvtOutputFault, 0, 0)
	}
}

func (c *Controller) record(kind EventKind, a, b int32) {
	c.trace.Record(kind, c.ctx.Elapsed, a, b)
}

func boolArg(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
