package service

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/nekonora/xcodebuild/internal/xcode"
)

const listOutput = `Information about project "App":
    Targets:
        App
        AppTests

    Build Configurations:
        Debug
        Release

    Schemes:
        App
        AppTests
`

const inventoryJSON = `{
  "devices": {
    "com.apple.CoreSimulator.SimRuntime.iOS-18-3-1": [
      {"name": "iPhone 16", "udid": "A", "state": "Shutdown", "isAvailable": true}
    ],
    "com.apple.CoreSimulator.SimRuntime.iOS-17-5": [
      {"name": "iPhone 15", "udid": "B", "state": "Shutdown", "isAvailable": true}
    ]
  }
}`

type runCall struct {
	dir  string
	name string
	args []string
}

// fakeXcode answers scheme listings, simulator inventory queries and builds.
type fakeXcode struct {
	mu        sync.Mutex
	list      string
	inventory string
	build     xcode.Result
	buildErr  error
	calls     []runCall
}

func newFakeXcode() *fakeXcode {
	return &fakeXcode{
		list:      listOutput,
		inventory: inventoryJSON,
		build:     xcode.Result{Stdout: "** BUILD SUCCEEDED **\n"},
	}
}

func (f *fakeXcode) Run(ctx context.Context, dir string, name string, args ...string) (xcode.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, runCall{dir: dir, name: name, args: append([]string(nil), args...)})

	switch {
	case name == "xcrun":
		return xcode.Result{Stdout: f.inventory}, nil
	case slices.Contains(args, "-list"):
		return xcode.Result{Stdout: f.list}, nil
	default:
		return f.build, f.buildErr
	}
}

func (f *fakeXcode) builds() []runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []runCall
	for _, c := range f.calls {
		if c.name == "xcodebuild" && !slices.Contains(c.args, "-list") {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeXcode) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

// projectDir creates a folder holding the named container directories.
func projectDir(t *testing.T, containers ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, c := range containers {
		if err := os.MkdirAll(filepath.Join(dir, c), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
