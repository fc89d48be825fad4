// Package scenario replays scripted power cycles against the simulated
// flashlight and checks where it ends up.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"quasar/core"
)

// Scenario is one scripted sequence of switch presses.
type Scenario struct {
	// Name identifies the scenario and its golden transcript.
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Preset names a core preset; see core.PresetNames.
	Preset    string    `yaml:"preset"`
	Overrides Overrides `yaml:"overrides,omitempty"`

	// Battery is the initial battery reading; the simulator default when
	// unset.
	Battery *uint8 `yaml:"battery,omitempty"`

	Steps  []Step `yaml:"steps"`
	Expect Expect `yaml:"expect,omitempty"`
}

// Overrides adjust the preset before the run.
type Overrides struct {
	Policy          string `yaml:"policy,omitempty"`
	LockTime        *uint8 `yaml:"lock_time,omitempty"`
	BattCheckClicks *uint8 `yaml:"battcheck_clicks,omitempty"`
	Slots           *uint8 `yaml:"slots,omitempty"`
	CapThreshold    *uint8 `yaml:"cap_threshold,omitempty"`
}

// Step powers the light for On ticks and then leaves it off for Off
// ticks, Repeat times.
type Step struct {
	On     int `yaml:"on"`
	Off    int `yaml:"off"`
	Repeat int `yaml:"repeat,omitempty"`

	// Battery changes the battery reading before the step.
	Battery *uint8 `yaml:"battery,omitempty"`
	// CutAfterWrites drops power after that many store operations of
	// the step's first cycle.
	CutAfterWrites *int `yaml:"cut_after_writes,omitempty"`
}

// Expect is checked against the state after the last step. Unset fields
// are not checked.
type Expect struct {
	Group      *uint8 `yaml:"group,omitempty"`
	Mode       *uint8 `yaml:"mode,omitempty"`
	Clicks     *uint8 `yaml:"clicks,omitempty"`
	Level      *int   `yaml:"level,omitempty"`
	BattChecks *int   `yaml:"battchecks,omitempty"`
	LockIns    *int   `yaml:"lock_ins,omitempty"`
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadDir reads every *.yaml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Validate checks the fields Run depends on.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if _, ok := core.Preset(s.Preset); !ok {
		return fmt.Errorf("scenario %q: unknown preset %q (have %v)", s.Name, s.Preset, core.PresetNames())
	}
	if s.Overrides.Policy != "" {
		if _, ok := core.ParseMemoryPolicy(s.Overrides.Policy); !ok {
			return fmt.Errorf("scenario %q: unknown memory policy %q", s.Name, s.Overrides.Policy)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q: no steps", s.Name)
	}
	for i, st := range s.Steps {
		if st.On < 0 || st.Off < 0 || st.Repeat < 0 {
			return fmt.Errorf("scenario %q: step %d: negative duration", s.Name, i+1)
		}
	}
	return nil
}

// Config builds the firmware config: the preset with overrides applied.
func (s *Scenario) Config() (core.Config, error) {
	cfg, ok := core.Preset(s.Preset)
	if !ok {
		return core.Config{}, fmt.Errorf("unknown preset %q", s.Preset)
	}
	o := s.Overrides
	if o.Policy != "" {
		cfg.Policy, _ = core.ParseMemoryPolicy(o.Policy)
	}
	if o.LockTime != nil {
		cfg.LockTime = *o.LockTime
	}
	if o.BattCheckClicks != nil {
		cfg.BattCheckClicks = *o.BattCheckClicks
	}
	if o.Slots != nil {
		cfg.Ledger.Slots = *o.Slots
	}
	if o.CapThreshold != nil {
		cfg.CapThreshold = core.ADCValue(*o.CapThreshold)
	}
	if err := cfg.Validate(); err != nil {
		return core.Config{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return cfg, nil
}
