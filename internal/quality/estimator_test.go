package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimatorStartsAtOne(t *testing.T) {
	e := New()
	assert.Equal(t, 1.0, e.Value())
	assert.False(t, e.BelowThreshold())
}

func TestEstimatorDecaysBelowThresholdAfterSustainedLoss(t *testing.T) {
	e := New()
	crossed := -1
	for i := 0; i < 100; i++ {
		e.Update(false)
		if e.BelowThreshold() && crossed == -1 {
			crossed = i
		}
	}
	assert.NotEqual(t, -1, crossed, "quality never dropped below threshold under sustained loss")
	assert.Less(t, e.Value(), Threshold)
}

func TestEstimatorRecoversUnderPerfectAcks(t *testing.T) {
	e := New()
	for i := 0; i < 40; i++ {
		e.Update(false)
	}
	assert.True(t, e.BelowThreshold())

	// The gap to 1.0 shrinks by a factor of 0.99 per ack: from 0.99^40
	// it takes about 1,270 acks to close within 1e-6 (500 leave ≈ 0.998).
	for i := 0; i < 2000; i++ {
		e.Update(true)
	}
	assert.InDelta(t, 1.0, e.Value(), 1e-6)
	assert.False(t, e.BelowThreshold())
}

func TestEstimatorStaysInUnitInterval(t *testing.T) {
	e := New()
	pattern := []bool{true, false, false, true, true, false}
	for i := 0; i < 1000; i++ {
		e.Update(pattern[i%len(pattern)])
		assert.GreaterOrEqual(t, e.Value(), 0.0)
		assert.LessOrEqual(t, e.Value(), 1.0)
	}
}

func TestResetRestoresFullQuality(t *testing.T) {
	e := New()
	for i := 0; i < 40; i++ {
		e.Update(false)
	}
	assert.True(t, e.BelowThreshold())
	e.Reset()
	assert.Equal(t, 1.0, e.Value())
}
