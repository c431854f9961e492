// Package output reduces xcodebuild transcripts to what a caller asked for.
package output

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects which transcript lines are kept.
type Mode string

const (
	ModeAll               Mode = "all"
	ModeErrorsOnly        Mode = "errors_only"
	ModeWarningsOnly      Mode = "warnings_only"
	ModeErrorsAndWarnings Mode = "errors_and_warnings"
	ModeStringMatch       Mode = "string_match"
)

// DefaultMaxLines caps ModeAll output.
const DefaultMaxLines = 200

const (
	errorToken   = "error:"
	warningToken = "warning:"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeAll, ModeErrorsOnly, ModeWarningsOnly, ModeErrorsAndWarnings, ModeStringMatch}

// ErrMatchRequired is returned when string_match is selected without a string.
var ErrMatchRequired = errors.New("filter_string is required when output_filter is 'string_match'")

// ParseMode converts a mode name. The empty string selects ModeAll.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAll, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown output filter %q (want one of %s)", s, joinModes())
}

func joinModes() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// Spec describes how to filter a transcript.
type Spec struct {
	Mode     Mode
	Match    string
	MaxLines int // ModeAll limit; zero means DefaultMaxLines
}

// Validate checks the preconditions Filter relies on.
func (s Spec) Validate() error {
	if s.Mode == ModeStringMatch && s.Match == "" {
		return ErrMatchRequired
	}
	return nil
}

// Filter reduces lines according to spec. The result is never empty: when
// nothing is left a mode-specific placeholder is returned instead. Unknown
// modes behave like ModeErrorsAndWarnings.
func Filter(lines []string, spec Spec) string {
	var kept []string

	switch spec.Mode {
	case ModeAll:
		kept = tail(lines, spec.maxLines())
	case ModeErrorsOnly:
		kept = keep(lines, errorToken)
	case ModeWarningsOnly:
		kept = keep(lines, warningToken)
	case ModeStringMatch:
		kept = keep(lines, strings.ToLower(spec.Match))
	default:
		kept = keep(lines, errorToken, warningToken)
	}

	if len(kept) == 0 {
		return placeholder(spec)
	}
	return strings.Join(kept, "\n")
}

func (s Spec) maxLines() int {
	if s.MaxLines > 0 {
		return s.MaxLines
	}
	return DefaultMaxLines
}

func tail(lines []string, max int) []string {
	if len(lines) <= max {
		return lines
	}
	out := make([]string, 0, max+2)
	out = append(out,
		fmt.Sprintf("[Output truncated - showing last %d lines of %d total lines]", max, len(lines)),
		"",
	)
	return append(out, lines[len(lines)-max:]...)
}

// keep returns the lines containing any of the lower-cased needles,
// compared case-insensitively.
func keep(lines []string, needles ...string) []string {
	var out []string
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

func placeholder(spec Spec) string {
	switch spec.Mode {
	case ModeErrorsOnly:
		return "No errors found"
	case ModeWarningsOnly:
		return "No warnings found"
	case ModeErrorsAndWarnings:
		return "No errors or warnings found"
	case ModeStringMatch:
		return fmt.Sprintf("No lines matching '%s' found", spec.Match)
	default:
		return "No output"
	}
}
