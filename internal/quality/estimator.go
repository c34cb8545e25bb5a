// Package quality implements the Sender-only link quality estimator:
// an exponentially-weighted moving average of unicast ack outcomes
// that triggers a channel hop when the link degrades.
package quality

// Threshold is the quality value below which a hop is triggered.
const Threshold = 0.75

// decayWeight / sampleWeight are the EWMA coefficients:
// quality ← 0.99·quality + 0.01·s.
const (
	decayWeight  = 0.99
	sampleWeight = 0.01
)

// Estimator tracks link quality in [0, 1], initialised to 1.0.
type Estimator struct {
	value float64
}

// New returns an Estimator at the initial quality of 1.0.
func New() *Estimator {
	return &Estimator{value: 1.0}
}

// Value returns the current quality estimate.
func (e *Estimator) Value() float64 {
	return e.value
}

// Update folds in one ack outcome. The convex combination algebraically
// preserves quality ∈ [0, 1] for any sequence of boolean samples.
func (e *Estimator) Update(acked bool) {
	s := 0.0
	if acked {
		s = 1.0
	}
	e.value = decayWeight*e.value + sampleWeight*s
}

// BelowThreshold reports whether quality has dropped enough to trigger
// a hop.
func (e *Estimator) BelowThreshold() bool {
	return e.value < Threshold
}

// Reset restores quality to 1.0. Called only after a HOP_REQUEST is
// successfully handed to the radio — never unconditionally — so a hop
// in flight doesn't trigger a burst of further HOP_REQUEST frames.
func (e *Estimator) Reset() {
	e.value = 1.0
}
