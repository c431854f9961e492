package xcode

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

const schemesHeader = "Schemes:"

// SchemeNotFoundError is returned when a requested or default scheme is not
// among the schemes the project currently reports.
type SchemeNotFoundError struct {
	Scheme    string
	Available []string
}

func (e *SchemeNotFoundError) Error() string {
	return fmt.Sprintf("Scheme '%s' not found. Available schemes: %s", e.Scheme, strings.Join(e.Available, ", "))
}

// ListSchemes runs `xcodebuild -list` for the project and returns the schemes
// in listing order. A non-zero exit still yields whatever could be parsed.
func (c *Client) ListSchemes(ctx context.Context, p *Project) ([]string, error) {
	args := append([]string{"-list"}, p.Args()...)
	res, err := c.query(ctx, p.Root, xcodebuildBin, args...)
	if err != nil {
		return nil, fmt.Errorf("listing schemes: %w", err)
	}
	if !res.Succeeded() {
		c.logger.Warn("xcodebuild -list exited non-zero",
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", strings.TrimSpace(res.Stderr)),
		)
	}
	return ParseSchemes(res.Stdout), nil
}

// ParseSchemes collects every non-blank line following the "Schemes:" header.
// There is no section terminator, so anything listed after the schemes is
// taken as a scheme too.
func ParseSchemes(output string) []string {
	var schemes []string
	inSchemes := false
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, schemesHeader) {
			inSchemes = true
			continue
		}
		if !inSchemes {
			continue
		}
		if scheme := strings.TrimSpace(line); scheme != "" {
			schemes = append(schemes, scheme)
		}
	}
	return schemes
}

// ResolveScheme picks the scheme to build: requested, then fallback (the
// configured default), then the first available scheme. A named candidate
// that is not available is an error; with no candidate and no schemes the
// result is the empty string.
func ResolveScheme(available []string, requested, fallback string) (string, error) {
	candidate := requested
	if candidate == "" {
		candidate = fallback
	}

	if candidate != "" {
		if !slices.Contains(available, candidate) {
			return "", &SchemeNotFoundError{Scheme: candidate, Available: available}
		}
		return candidate, nil
	}

	if len(available) > 0 {
		return available[0], nil
	}
	return "", nil
}
