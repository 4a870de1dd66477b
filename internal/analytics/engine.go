// Package analytics turns a stream of scored answers into running session
// metrics, trend classifications, skill breakdowns, learning paths and
// period-over-period comparisons. Everything here is a pure function of the
// session and feedback data passed in.
package analytics

import (
	"sync/atomic"
	"time"
)

const (
	// DefaultTrendThreshold is the absolute point difference between the
	// second-half and first-half means needed to leave "stable".
	DefaultTrendThreshold = 10.0

	// DefaultInsightListCap bounds every list in ProgressInsights.
	DefaultInsightListCap = 5

	// focusAreaCap bounds skill and learning path focus areas.
	focusAreaCap = 3

	// recommendationCap bounds Recommend output.
	recommendationCap = 5
)

// Tunables are the knobs that may change at runtime via config reload.
type Tunables struct {
	TrendThreshold float64
	InsightListCap int
}

func DefaultTunables() Tunables {
	return Tunables{
		TrendThreshold: DefaultTrendThreshold,
		InsightListCap: DefaultInsightListCap,
	}
}

func (t Tunables) normalized() Tunables {
	if t.TrendThreshold < 0 {
		t.TrendThreshold = DefaultTrendThreshold
	}
	if t.InsightListCap <= 0 {
		t.InsightListCap = DefaultInsightListCap
	}
	return t
}

// Engine carries the tunables. The zero value is not usable; use NewEngine.
type Engine struct {
	tunables atomic.Pointer[Tunables]
	now      func() time.Time
}

func NewEngine(t Tunables) *Engine {
	e := &Engine{now: time.Now}
	e.SetTunables(t)
	return e
}

// SetTunables swaps the tunables atomically; in-flight computations keep
// the values they started with.
func (e *Engine) SetTunables(t Tunables) {
	t = t.normalized()
	e.tunables.Store(&t)
}

func (e *Engine) Tunables() Tunables {
	return *e.tunables.Load()
}

// Now returns the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// WithClock replaces the clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

var defaultEngine = NewEngine(DefaultTunables())

// Default returns the engine built with DefaultTunables.
func Default() *Engine {
	return defaultEngine
}
