package main

import (
	"strings"
	"testing"

	"packhub/internal/trainingpack"
)

func TestRenderTablePadsAndTrimsRows(t *testing.T) {
	out := renderTable(violationColumns, [][]string{
		{"name"},
		{"tags", "too many tags", "extra"},
	})
	requireContains(t, out, "Field")
	requireContains(t, out, "Problem")
	requireContains(t, out, "too many tags")
	if strings.Contains(out, "extra") {
		t.Fatalf("expected cells past the last column to be dropped:\n%s", out)
	}
	if renderTable(nil, [][]string{{"x"}}) != "" {
		t.Fatal("expected empty output without columns")
	}
}

func TestRenderShotsFormatsCells(t *testing.T) {
	shots := []trainingpack.Shot{
		{BoostAmount: 50, StartingVelocity: -200, FreezeCar: true},
		{
			ExtendedVelocity: trainingpack.Vector3{X: 1.5, Y: -2, Z: 0.25},
			GoalBlocker:      trainingpack.GoalBlocker{FirstX: -10, FirstZ: 5, SecondX: 10, SecondZ: 15},
			HasStartingJump:  true,
		},
	}
	out := renderShots(shots)
	for _, want := range []string{"Velocity", "-200", "(1.50, -2.00, 0.25)", "(-10, 5) to (10, 15)", "yes"} {
		requireContains(t, out, want)
	}
	lines := strings.Split(out, "\n")
	// header border, header, separator, two rows, bottom border
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
}
