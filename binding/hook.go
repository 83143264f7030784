package binding

import "time"

// Hook observes model runs. Implement it to add metrics, logging, or tracing.
// Hooks run on the run goroutine and must not block for long.
//
// Example:
//
//	type latencyHook struct{ h prometheus.Histogram }
//
//	func (l *latencyHook) BeforeRun(*RunInfo) {}
//	func (l *latencyHook) AfterRun(info *RunInfo) {
//	    l.h.Observe(info.Duration.Seconds())
//	}
type Hook interface {
	// BeforeRun is called once the run has been accepted, before the engine
	// call.
	BeforeRun(info *RunInfo)

	// AfterRun is called after the engine call returns, before the run's
	// future resolves. Duration and Error are populated.
	AfterRun(info *RunInfo)
}

// RunInfo describes one model run. ModelID, Inputs and Outputs are set before
// BeforeRun; Duration and Error are set before AfterRun.
type RunInfo struct {
	ModelID  string
	Inputs   []string
	Outputs  []string
	Duration time.Duration
	Error    error
}

type hookFunc struct {
	fn func(*RunInfo)
}

func (h *hookFunc) BeforeRun(*RunInfo)     {}
func (h *hookFunc) AfterRun(info *RunInfo) { h.fn(info) }

// AfterRunHook returns a Hook that calls fn after every run.
func AfterRunHook(fn func(*RunInfo)) Hook {
	return &hookFunc{fn: fn}
}
