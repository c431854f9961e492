// Package service runs the build, test and scheme operations end to end:
// locating the project, resolving scheme and destination, invoking
// xcodebuild and reducing its transcript.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/nekonora/xcodebuild/internal/output"
	"github.com/nekonora/xcodebuild/internal/store"
	"github.com/nekonora/xcodebuild/internal/xcode"
)

// ErrProjectNotFound is returned when no workspace or project exists under
// the requested folder. Callers report it as an ordinary outcome using
// ProjectNotFoundText.
var ErrProjectNotFound = errors.New("no Xcode project found")

// ProjectNotFoundText is the message shown for ErrProjectNotFound.
const ProjectNotFoundText = "No Xcode project found in the specified folder"

// ParamsError marks a request that was rejected before any external command
// ran: malformed arguments or an unresolvable scheme or destination.
type ParamsError struct {
	Err error
}

func (e *ParamsError) Error() string { return e.Err.Error() }
func (e *ParamsError) Unwrap() error { return e.Err }

// RPCCode maps the error to JSON-RPC "invalid params".
func (e *ParamsError) RPCCode() int { return -32602 }

func paramsErrorf(format string, args ...any) error {
	return &ParamsError{Err: fmt.Errorf(format, args...)}
}

// Request describes one build or test run.
type Request struct {
	Folder   string
	Scheme   string
	Criteria xcode.Criteria
	Filter   output.Spec
}

// Report is the outcome of a build or test run that reached xcodebuild.
type Report struct {
	Command  string
	ExitCode int
	Output   string
	Duration time.Duration
}

// Succeeded reports whether xcodebuild exited with status 0.
func (r *Report) Succeeded() bool {
	return r.ExitCode == 0
}

// Status renders the status line.
func (r *Report) Status() string {
	if r.Succeeded() {
		return fmt.Sprintf("Build succeeded (exit code: %d)", r.ExitCode)
	}
	return fmt.Sprintf("Build failed (exit code: %d)", r.ExitCode)
}

// Segments returns the command line, status line and filtered output.
func (r *Report) Segments() []string {
	return []string{"Command: " + r.Command, r.Status(), r.Output}
}

// Service owns the process-wide default scheme and serializes every
// operation pipeline.
type Service struct {
	client   *xcode.Client
	defaults *store.SchemeDefault
	history  *store.Store
	logger   *zap.Logger
	maxLines int
	sem      *semaphore.Weighted
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistory records every build and test outcome in h.
func WithHistory(h *store.Store) Option {
	return func(s *Service) { s.history = h }
}

// WithMaxLines overrides the line limit of the "all" output filter.
func WithMaxLines(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLines = n
		}
	}
}

// New creates a Service around client.
func New(client *xcode.Client, opts ...Option) *Service {
	s := &Service{
		client:   client,
		defaults: &store.SchemeDefault{},
		logger:   zap.NewNop(),
		maxLines: output.DefaultMaxLines,
		sem:      semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns the history store, or nil when history is disabled.
func (s *Service) History() *store.Store {
	return s.history
}

func (s *Service) acquire(ctx context.Context) (func(), error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { s.sem.Release(1) }, nil
}

func checkFolder(folder string) error {
	if folder == "" {
		return paramsErrorf("folder is required")
	}
	info, err := os.Stat(folder)
	if err != nil {
		return paramsErrorf("folder %q: %w", folder, err)
	}
	if !info.IsDir() {
		return paramsErrorf("folder %q is not a directory", folder)
	}
	return nil
}

// locate finds the project under folder. Callers must hold the pipeline lock.
func (s *Service) locate(folder string) (*xcode.Project, error) {
	p := xcode.DetectProject(folder)
	if p == nil {
		s.logger.Info("no Xcode project found", zap.String("folder", folder))
		return nil, ErrProjectNotFound
	}
	s.logger.Debug("located project",
		zap.String("folder", p.Root),
		zap.String("project", p.Path),
	)
	return p, nil
}

// Build builds the project in req.Folder.
func (s *Service) Build(ctx context.Context, req Request) (*Report, error) {
	return s.Run(ctx, xcode.ActionBuild, req)
}

// Test runs the tests of the project in req.Folder.
func (s *Service) Test(ctx context.Context, req Request) (*Report, error) {
	return s.Run(ctx, xcode.ActionTest, req)
}

// Run resolves and executes one xcodebuild action. Invalid arguments,
// unknown schemes and unmatched simulator criteria are *ParamsError and are
// detected before xcodebuild is started. A failing build is a Report with a
// non-zero exit code, not an error.
func (s *Service) Run(ctx context.Context, action xcode.Action, req Request) (*Report, error) {
	if err := req.Filter.Validate(); err != nil {
		return nil, &ParamsError{Err: err}
	}
	if err := checkFolder(req.Folder); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := s.locate(req.Folder)
	if err != nil {
		return nil, err
	}

	available, err := s.client.ListSchemes(ctx, p)
	if err != nil {
		return nil, err
	}
	fallback, _ := s.defaults.Get()
	scheme, err := xcode.ResolveScheme(available, req.Scheme, fallback)
	if err != nil {
		return nil, &ParamsError{Err: err}
	}

	dest, err := s.client.ResolveDestination(ctx, req.Criteria)
	if err != nil {
		var nm *xcode.NoMatchingSimulatorError
		if errors.As(err, &nm) {
			return nil, &ParamsError{Err: err}
		}
		return nil, err
	}

	inv := xcode.Invocation{Project: p, Scheme: scheme, Destination: dest, Action: action}
	s.logger.Info("running xcodebuild",
		zap.Stringer("action", action),
		zap.String("project", p.Path),
		zap.String("scheme", scheme),
		zap.String("destination", dest),
	)
	res, err := s.client.Run(ctx, inv)
	if err != nil {
		return nil, err
	}

	spec := req.Filter
	if spec.MaxLines == 0 {
		spec.MaxLines = s.maxLines
	}
	report := &Report{
		Command:  inv.CommandLine(),
		ExitCode: res.ExitCode,
		Output:   output.Filter(res.Lines(), spec),
		Duration: res.Duration,
	}
	s.logger.Info("xcodebuild finished",
		zap.Stringer("action", action),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
	)
	s.record(action, inv, report)
	return report, nil
}

func (s *Service) record(action xcode.Action, inv xcode.Invocation, r *Report) {
	if s.history == nil {
		return
	}
	rec := store.RunRecord{
		ID:          uuid.NewString(),
		Folder:      inv.Project.Root,
		Project:     inv.Project.Path,
		Scheme:      inv.Scheme,
		Destination: inv.Destination,
		Timestamp:   time.Now(),
		Success:     r.Succeeded(),
		ExitCode:    r.ExitCode,
		Duration:    r.Duration.Round(time.Millisecond).String(),
	}

	var err error
	if action == xcode.ActionTest {
		err = s.history.AddTest(rec)
	} else {
		err = s.history.AddBuild(rec)
	}
	if err != nil {
		s.logger.Warn("failed to record history", zap.Error(err))
	}
}

// Schemes lists the schemes of the project in folder, in xcodebuild's order.
func (s *Service) Schemes(ctx context.Context, folder string) ([]string, error) {
	if err := checkFolder(folder); err != nil {
		return nil, err
	}
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := s.locate(folder)
	if err != nil {
		return nil, err
	}
	return s.client.ListSchemes(ctx, p)
}

// SetDefaultScheme validates scheme against the project in folder and makes
// it the default for later runs. On *xcode.SchemeNotFoundError the previous
// default is kept.
func (s *Service) SetDefaultScheme(ctx context.Context, folder, scheme string) error {
	if scheme == "" {
		return paramsErrorf("scheme is required")
	}
	if err := checkFolder(folder); err != nil {
		return err
	}
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	p, err := s.locate(folder)
	if err != nil {
		return err
	}
	available, err := s.client.ListSchemes(ctx, p)
	if err != nil {
		return err
	}
	if _, err := xcode.ResolveScheme(available, scheme, ""); err != nil {
		return err
	}

	s.defaults.Set(scheme)
	s.logger.Info("default scheme set", zap.String("scheme", scheme))
	return nil
}

// DefaultScheme returns the current default scheme, if any.
func (s *Service) DefaultScheme() (string, bool) {
	return s.defaults.Get()
}

// FormatSchemes renders a scheme listing for display.
func FormatSchemes(schemes []string) string {
	if len(schemes) == 0 {
		return "No schemes found"
	}
	var b strings.Builder
	b.WriteString("Available schemes:")
	for _, name := range schemes {
		b.WriteString("\n- ")
		b.WriteString(name)
	}
	return b.String()
}

// FormatDefaultSet renders the confirmation for a new default scheme.
func FormatDefaultSet(scheme string) string {
	return fmt.Sprintf("Default scheme set to '%s'. Future builds and tests will use this scheme unless explicitly overridden.", scheme)
}

// FormatDefaultScheme renders the current default scheme.
func FormatDefaultScheme(scheme string, ok bool) string {
	if !ok {
		return "No default scheme configured. Builds will use the first available scheme."
	}
	return fmt.Sprintf("Current default scheme: '%s'", scheme)
}
