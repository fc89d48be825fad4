package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const scenarios = "../scenario/testdata/scenarios"

func TestSimRunsScenarioDir(t *testing.T) {
	out, err := execute(t, "sim", scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   quick-clicks")
	assert.Contains(t, out, "ok   group-change")
	assert.Contains(t, out, "scenario: battcheck")
}

func TestSimQuiet(t *testing.T) {
	out, err := execute(t, "sim", "-q", filepath.Join(scenarios, "02-group-change.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ok   group-change\n", out)
}

func TestSimReportsFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := "name: wrong\npreset: nanjg105d\nsteps: [{on: 5, off: 5}]\nexpect: {mode: 3}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, "sim", "-q", path)
	require.Error(t, err)
	assert.Contains(t, out, "FAIL wrong")
	assert.Contains(t, err.Error(), "1 of 1 scenarios failed")
}

func TestSimArchivesAndSessionsList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")
	_, err := execute(t, "sim", "-q", "--db", db, filepath.Join(scenarios, "01-quick-clicks.yaml"))
	require.NoError(t, err)

	out, err := execute(t, "sessions", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "sim:quick-clicks")
	assert.Contains(t, lines[1], "nanjg105d")

	id := strings.Fields(lines[1])[0]
	out, err = execute(t, "sessions", "--db", db, id)
	require.NoError(t, err)
	assert.Contains(t, out, "LOCK_IN tick=50 a=3 b=0")
}

func TestSessionsRequiresDB(t *testing.T) {
	_, err := execute(t, "sessions")
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "nanjg105d: strategy=")
	assert.Contains(t, out, "a17ddl: strategy=")
	assert.Contains(t, out, "strobe")
}
