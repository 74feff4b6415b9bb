// Package profiler tracks frame rate, memory, and renderer workload
// statistics, reporting them through slog at a configurable interval.
package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/forge3d/forge/engine/renderer/pass"
)

// Profiler accumulates per-frame samples and emits one structured log line
// per interval: FPS, heap usage, allocation rate, GC pauses, and the averaged
// renderer workload (draw calls, triangles, state changes).
type Profiler struct {
	now func() time.Time

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration

	frameStats pass.Stats

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// ProfilerOption configures a Profiler during construction.
type ProfilerOption func(*Profiler)

// WithInterval sets the reporting interval, replacing the one-second default.
//
// Parameters:
//   - interval: time between reports
//
// Returns:
//   - ProfilerOption: a function that applies the interval option
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// WithClock replaces the wall clock, for tests.
//
// Parameters:
//   - now: the clock function
//
// Returns:
//   - ProfilerOption: a function that applies the clock option
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a profiler reporting once per second by default.
//
// Parameters:
//   - options: a variadic list of options to configure the profiler
//
// Returns:
//   - *Profiler: the new profiler
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one frame and its renderer statistics. When the reporting
// interval has elapsed the accumulated stats are logged and reset.
//
// Parameters:
//   - stats: the renderer stats for the frame just finished
//
// Returns:
//   - bool: true if a report was logged this tick
func (p *Profiler) Tick(stats pass.Stats) bool {
	p.frameCount++
	p.frameStats.Add(stats)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	frames := p.frameCount
	slog.Info("frame profile",
		"fps", fps,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", sysMB,
		"draws_per_frame", p.frameStats.DrawCalls/frames,
		"tris_per_frame", p.frameStats.Triangles/frames,
		"state_changes_per_frame", p.frameStats.StateChanges/frames,
	)

	p.frameCount = 0
	p.frameStats = pass.Stats{}
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
