package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-map/common"
)

// Profiler tracks editor frame rate, draw counts and memory statistics.
// Outputs stats to the common logger at a configurable interval.
type Profiler struct {
	frameCount     int
	drawCount      int
	lastFrame      time.Duration
	maxFrame       time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// SetUpdateInterval changes how often statistics are logged.
func (p *Profiler) SetUpdateInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// RecordFrame records the time spent rendering one frame and the draws it issued.
//
// Parameters:
//   - frameTime: the duration of the frame's render
//   - draws: the number of draw calls of the frame
func (p *Profiler) RecordFrame(frameTime time.Duration, draws int) {
	p.lastFrame = frameTime
	if frameTime > p.maxFrame {
		p.maxFrame = frameTime
	}
	p.drawCount += draws
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, draws per frame, slowest frame, heap usage, allocation rate,
// GC count/pause times and total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		common.Logger().Info("profiler",
			"fps", fps,
			"draws_per_frame", float64(p.drawCount)/float64(p.frameCount),
			"max_frame_ms", float64(p.maxFrame.Microseconds())/1000,
			"heap_mb", allocMB,
			"alloc_rate_mb_s", allocRateMB,
			"gc", gcCount,
			"gc_last_pause_us", lastPauseUs,
			"gc_max_pause_us", maxPauseUs,
			"sys_mb", sysMB)

		p.frameCount = 0
		p.drawCount = 0
		p.maxFrame = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}

// LastFrame returns the render duration of the most recent frame.
func (p *Profiler) LastFrame() time.Duration {
	return p.lastFrame
}
