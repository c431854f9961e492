package xcode

import (
	"context"
	"fmt"
)

// Action selects what an xcodebuild run does.
type Action int

const (
	ActionBuild Action = iota
	ActionTest
)

func (a Action) String() string {
	if a == ActionTest {
		return "test"
	}
	return "build"
}

// Invocation is a fully resolved xcodebuild command.
type Invocation struct {
	Project     *Project
	Scheme      string
	Destination string
	Action      Action
}

// Args returns the xcodebuild arguments for the invocation. Builds rely on
// xcodebuild's default action; tests append "test".
func (inv Invocation) Args() []string {
	args := append(inv.Project.Args(),
		"-scheme", inv.Scheme,
		"-destination", inv.Destination,
	)
	if inv.Action == ActionTest {
		args = append(args, "test")
	}
	return args
}

// CommandLine renders the invocation as echoed back to callers.
func (inv Invocation) CommandLine() string {
	return CommandLine(xcodebuildBin, inv.Args())
}

// Run executes the invocation in the project folder. A failing build is not
// an error; inspect Result.ExitCode.
func (c *Client) Run(ctx context.Context, inv Invocation) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.buildTimeout)
	defer cancel()

	res, err := c.run(ctx, inv.Project.Root, xcodebuildBin, inv.Args()...)
	if err != nil {
		return res, fmt.Errorf("running xcodebuild %s: %w", inv.Action, err)
	}
	return res, nil
}
