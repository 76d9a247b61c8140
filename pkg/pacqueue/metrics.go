package pacqueue

import "time"

// Metrics is a point-in-time snapshot of queue health. Saturation shows up
// as depth approaching capacity and climbing average wait.
type Metrics struct {
	// Processed counts operations that resolved successfully.
	Processed uint64 `json:"processed"`
	// Failed counts operations that resolved with a terminal error,
	// including exhausted retry budgets.
	Failed uint64 `json:"failed"`
	// Retried counts re-enqueues after transient failures.
	Retried uint64 `json:"retried"`
	// Depth is the current number of pending operations.
	Depth int `json:"depth"`
	// PeakDepth is the highest depth observed since start.
	PeakDepth int `json:"peak_depth"`
	// InFlight is the number of operations currently executing.
	InFlight int `json:"in_flight"`
	// AvgWait is the rolling average time from enqueue to dispatch.
	AvgWait time.Duration `json:"avg_wait_ns"`
}

// metricsState is the mutable backing store, guarded by the queue mutex.
type metricsState struct {
	processed uint64
	failed    uint64
	retried   uint64
	peakDepth int
	waitEWMA  float64
	waitSeen  bool
}

// waitSmoothing is the EWMA weight of each new observation. At 0.1 the last
// ~20 dispatches dominate the average, so saturation shows up within a few
// ticks instead of being diluted by the queue's entire history.
const waitSmoothing = 0.1

func (m *metricsState) recordWait(d time.Duration) {
	if !m.waitSeen {
		m.waitEWMA = float64(d)
		m.waitSeen = true
		return
	}
	m.waitEWMA += waitSmoothing * (float64(d) - m.waitEWMA)
}

func (m *metricsState) avgWait() time.Duration {
	return time.Duration(m.waitEWMA)
}
