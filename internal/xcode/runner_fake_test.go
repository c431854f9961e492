package xcode

import "context"

type runCall struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	runFunc func(name string, args []string) (Result, error)
	calls   []runCall
}

func (f *fakeRunner) Run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	copied := append([]string(nil), args...)
	f.calls = append(f.calls, runCall{dir: dir, name: name, args: copied})
	if f.runFunc != nil {
		return f.runFunc(name, copied)
	}
	return Result{}, nil
}

func stdoutRunner(stdout string) *fakeRunner {
	return &fakeRunner{runFunc: func(string, []string) (Result, error) {
		return Result{Stdout: stdout}, nil
	}}
}
