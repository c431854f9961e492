package xcode

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func TestExecRunnerCapturesStreamsAndExitCode(t *testing.T) {
	skipWithoutShell(t)
	r := NewExecRunner("")

	res, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo out1; echo out2; echo err1 >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Succeeded())
	assert.Equal(t, []string{"out1", "out2", "err1"}, res.Lines())
}

func TestExecRunnerRunsInDir(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	r := NewExecRunner("")

	res, err := r.Run(context.Background(), dir, "pwd")
	require.NoError(t, err)

	want, err := os.Stat(dir)
	require.NoError(t, err)
	got, err := os.Stat(strings.TrimSpace(res.Stdout))
	require.NoError(t, err)
	assert.True(t, os.SameFile(want, got))
}

func TestExecRunnerDeveloperDir(t *testing.T) {
	skipWithoutShell(t)
	r := NewExecRunner("/Applications/Xcode-beta.app/Contents/Developer")

	res, err := r.Run(context.Background(), "", "sh", "-c", "echo $DEVELOPER_DIR")
	require.NoError(t, err)
	assert.Equal(t, "/Applications/Xcode-beta.app/Contents/Developer\n", res.Stdout)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner("")

	res, err := r.Run(context.Background(), "", "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecRunnerTimeout(t *testing.T) {
	skipWithoutShell(t)
	r := NewExecRunner("")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, "", "sleep", "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestResultLines(t *testing.T) {
	assert.Empty(t, Result{}.Lines())
	assert.Equal(t, []string{"a", "b"}, Result{Stdout: "a\r\nb\n"}.Lines())
	assert.Equal(t, []string{"x", "", "y"}, Result{Stdout: "x\n\n", Stderr: "y"}.Lines())
}

func TestBuildEnvWithReplacesExisting(t *testing.T) {
	t.Setenv("DEVELOPER_DIR", "/old")

	env := buildEnvWith("DEVELOPER_DIR", "/new")
	count := 0
	for _, e := range env {
		if strings.HasPrefix(e, "DEVELOPER_DIR=") {
			count++
			assert.Equal(t, "DEVELOPER_DIR=/new", e)
		}
	}
	assert.Equal(t, 1, count)
}
