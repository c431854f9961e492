package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestPanelWidth(t *testing.T) {
	out := Panel("Output", "hello", 40, 0, false)
	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d", len(lines))
	}
	if w := lipgloss.Width(lines[0]); w != 40 {
		t.Errorf("expected top border width 40, got %d", w)
	}
	body := lipgloss.Width(lines[1])
	for i, line := range lines[1:] {
		if w := lipgloss.Width(line); w != body {
			t.Errorf("line %d: expected width %d, got %d", i+1, body, w)
		}
	}
	if !strings.Contains(lines[0], "Output") {
		t.Errorf("expected title in top border, got %q", lines[0])
	}
}

func TestPanelFixedHeight(t *testing.T) {
	out := Panel("Output", "a", 30, 8, true)
	if got := len(strings.Split(out, "\n")); got != 8 {
		t.Fatalf("expected 8 lines, got %d", got)
	}
}

func TestLabelPadsToWidth(t *testing.T) {
	if w := lipgloss.Width(Label("Scheme", 10, false)); w != 10 {
		t.Fatalf("expected label width 10, got %d", w)
	}
}

func TestOutcomeBadge(t *testing.T) {
	if !strings.Contains(OutcomeBadge(0), "PASS") {
		t.Error("expected PASS for exit code 0")
	}
	if !strings.Contains(OutcomeBadge(65), "FAIL 65") {
		t.Error("expected FAIL 65 for exit code 65")
	}
}
