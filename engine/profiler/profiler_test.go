package profiler

import (
	"testing"
	"time"

	"github.com/forge3d/forge/engine/renderer/pass"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	current := time.Unix(0, 0)
	p := NewProfiler(
		WithInterval(time.Second),
		WithClock(func() time.Time { return current }),
	)

	stats := pass.Stats{DrawCalls: 10, Triangles: 1200}
	for i := 0; i < 9; i++ {
		current = current.Add(100 * time.Millisecond)
		if p.Tick(stats) {
			t.Fatalf("tick %d reported before the interval elapsed", i)
		}
	}

	current = current.Add(100 * time.Millisecond)
	if !p.Tick(stats) {
		t.Fatal("tick at the interval boundary did not report")
	}

	// The accumulator resets after a report.
	current = current.Add(100 * time.Millisecond)
	if p.Tick(stats) {
		t.Fatal("tick immediately after a report must not report again")
	}
}

func TestTickWithZeroStats(t *testing.T) {
	current := time.Unix(0, 0)
	p := NewProfiler(
		WithInterval(time.Millisecond),
		WithClock(func() time.Time { return current }),
	)
	current = current.Add(time.Millisecond)
	if !p.Tick(pass.Stats{}) {
		t.Fatal("empty frames still report")
	}
}
