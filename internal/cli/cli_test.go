package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekonora/xcodebuild/internal/store"
)

// execute runs the root command with args and an isolated HOME.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	outputJSON = false
	configPath = ""
	logLevel = ""

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommandPrintsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_output_lines: 75\n"), 0o644))

	out, err := execute(t, "", "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "max_output_lines: 75")
	assert.Contains(t, out, "build: 60m")
}

func TestHistoryDisabled(t *testing.T) {
	_, err := execute(t, "", "history")
	assert.ErrorIs(t, err, errHistoryDisabled)
}

func TestHistoryTable(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	for i, ok := range []bool{true, false, true} {
		exit := 0
		if !ok {
			exit = 65
		}
		require.NoError(t, st.AddBuild(store.RunRecord{
			ID:        string(rune('a' + i)),
			Project:   "App.xcodeproj",
			Scheme:    "App",
			Timestamp: time.Date(2026, 1, 2, 3, 4, i, 0, time.UTC),
			Success:   ok,
			ExitCode:  exit,
			Duration:  "12s",
		}))
	}

	var out bytes.Buffer
	outputJSON = false
	require.NoError(t, runHistory(&out, st, false, 2))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "TIME"))
	assert.Contains(t, lines[1], "failed (65)")
	assert.Contains(t, lines[2], "ok")

	out.Reset()
	require.NoError(t, runHistory(&out, st, true, 0))
	assert.Equal(t, "No runs recorded\n", out.String())
}

func TestServeAnswersPing(t *testing.T) {
	out, err := execute(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n")
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{}}`, strings.TrimSpace(out))
}

func TestBuildRejectsUnknownFilter(t *testing.T) {
	_, err := execute(t, "", "build", t.TempDir(), "--filter", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output filter")
}

func TestSchemesProjectNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "schemes", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No Xcode project found in the specified folder")
}
