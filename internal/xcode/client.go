// Package xcode wraps the xcodebuild and simctl command-line tools: locating
// projects, listing schemes, resolving simulator destinations and running
// builds and tests.
package xcode

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	xcodebuildBin = "xcodebuild"
	xcrunBin      = "xcrun"

	DefaultQueryTimeout = 2 * time.Minute
	DefaultBuildTimeout = 60 * time.Minute
)

// Client issues xcodebuild and simctl commands through a Runner.
type Client struct {
	runner       Runner
	logger       *zap.Logger
	queryTimeout time.Duration
	buildTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for command tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeouts bounds listing/inventory queries and build/test runs.
// Zero values keep the defaults.
func WithTimeouts(query, build time.Duration) Option {
	return func(c *Client) {
		if query > 0 {
			c.queryTimeout = query
		}
		if build > 0 {
			c.buildTimeout = build
		}
	}
}

// NewClient creates a Client around runner.
func NewClient(runner Runner, opts ...Option) *Client {
	c := &Client{
		runner:       runner,
		logger:       zap.NewNop(),
		queryTimeout: DefaultQueryTimeout,
		buildTimeout: DefaultBuildTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) query(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()
	return c.run(ctx, dir, name, args...)
}

func (c *Client) run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	c.logger.Debug("running command",
		zap.String("dir", dir),
		zap.String("command", CommandLine(name, args)),
	)
	res, err := c.runner.Run(ctx, dir, name, args...)
	if err != nil {
		c.logger.Warn("command failed to complete",
			zap.String("command", name),
			zap.Error(err),
		)
		return res, err
	}
	c.logger.Debug("command finished",
		zap.String("command", name),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
