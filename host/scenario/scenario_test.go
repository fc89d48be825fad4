package scenario

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quasar/core"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// To regenerate the transcripts:
//
//	go test ./host/scenario -update
func TestScenarioTranscripts(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			tr, err := Run(s)
			require.NoError(t, err)
			assert.NoError(t, s.Check(tr))
			newGoldie(t).Assert(t, s.Name, tr.Render())
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no name", "preset: nanjg105d\nsteps: [{on: 5}]\n"},
		{"unknown preset", "name: x\npreset: zebra\nsteps: [{on: 5}]\n"},
		{"unknown policy", "name: x\npreset: nanjg105d\noverrides: {policy: random}\nsteps: [{on: 5}]\n"},
		{"no steps", "name: x\npreset: nanjg105d\n"},
		{"negative", "name: x\npreset: nanjg105d\nsteps: [{on: -1}]\n"},
		{"unknown field", "name: x\npreset: nanjg105d\nsteps: [{on: 5, of: 3}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestConfigOverrides(t *testing.T) {
	s, err := Parse([]byte(`
name: overrides
preset: a17ddl
overrides:
  policy: next
  lock_time: 40
  battcheck_clicks: 4
  slots: 8
  cap_threshold: 200
steps:
  - on: 5
`))
	require.NoError(t, err)

	cfg, err := s.Config()
	require.NoError(t, err)
	assert.Equal(t, core.MemNext, cfg.Policy)
	assert.Equal(t, uint8(40), cfg.LockTime)
	assert.Equal(t, uint8(4), cfg.BattCheckClicks)
	assert.Equal(t, uint8(8), cfg.Ledger.Slots)
	assert.Equal(t, core.ADCValue(200), cfg.CapThreshold)
}

func TestConfigOverrideInvalid(t *testing.T) {
	s, err := Parse([]byte("name: x\npreset: nanjg105d\noverrides: {slots: 1}\nsteps: [{on: 5}]\n"))
	require.NoError(t, err)
	_, err = s.Config()
	assert.ErrorIs(t, err, core.ErrLedgerSlots)
}

func TestCheckReportsMismatches(t *testing.T) {
	s, err := Parse([]byte(`
name: mismatch
preset: nanjg105d
steps:
  - on: 5
    off: 5
    repeat: 2
expect:
  mode: 2
  clicks: 1
  battchecks: 1
`))
	require.NoError(t, err)

	tr, err := Run(s)
	require.NoError(t, err)
	err = s.Check(tr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode = 1, expected 2")
	assert.Contains(t, err.Error(), "battchecks = 0, expected 1")
	assert.NotContains(t, err.Error(), "clicks")
}

func TestRunCutPower(t *testing.T) {
	s, err := Parse([]byte(`
name: cut
preset: nanjg105d
steps:
  - on: 5
    off: 5
  - on: 5
    off: 5
    cut_after_writes: 0
`))
	require.NoError(t, err)

	tr, err := Run(s)
	require.NoError(t, err)
	require.Len(t, tr.Cycles, 2)
	assert.Equal(t, uint8(1), tr.Final().Mode)
	assert.Equal(t, 1, tr.Count(core.EvtSaveFailed))

	// The click never reached the store, so it is lost.
	require.True(t, tr.Found)
	assert.Equal(t, uint8(0), tr.Stored.Mode)
	assert.True(t, tr.Stored.Speculative)
}
