package hedge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"alphatrawler/internal/config"
	"alphatrawler/internal/model"
)

func kalmanParams() config.Params {
	p := config.DefaultParams()
	p.HedgeMethod = config.HedgeKalman
	p.UseIntercept = true
	p.KalmanProcessNoise = 1e-5
	p.KalmanObservationNoise = 1e-3
	p.KalmanInitVariance = 10
	return p
}

func TestKalmanEstimate_DefinedFromFirstSample(t *testing.T) {
	points := syntheticPair(10, 2, 0, 0.1, 3)
	out := KalmanEstimate(points, kalmanParams(), zap.NewNop())

	assert.Len(t, out, 10)
	for i, hp := range out {
		assert.True(t, hp.Valid, "index %d", i)
	}
}

func TestKalmanEstimate_ScenarioPath(t *testing.T) {
	// target is exactly 2x the reference, so the filter pulls beta from its
	// prior of 1 toward 2 within the very first update (the gain is near 1/x
	// with a diffuse prior). Values below follow the §predict/update recursion
	// applied by hand from the stated priors.
	points := []model.PricePoint{
		{Target: 100, Reference: 50},
		{Target: 101, Reference: 50.5},
		{Target: 99, Reference: 49.5},
		{Target: 102, Reference: 51},
		{Target: 98, Reference: 49},
	}

	out := KalmanEstimate(points, kalmanParams(), zap.NewNop())

	wantBeta := []float64{
		1.999600119968048,
		1.9996179865993509,
		1.9996578901935416,
		1.9997368032559542,
		1.9998016797608875,
	}
	wantAlpha := []float64{
		0.019992002399360963,
		0.019284599141022554,
		0.01694689757216452,
		0.013408905971121012,
		0.009732041366179238,
	}
	for i := range out {
		assert.True(t, out[i].Valid)
		assert.InDelta(t, wantBeta[i], out[i].Beta, 1e-12, "beta at %d", i)
		assert.InDelta(t, wantAlpha[i], out[i].Alpha, 1e-12, "alpha at %d", i)
	}
}

func TestKalmanStep_ConvergesToTwoPointFitOnReplay(t *testing.T) {
	// Replaying the same two observations with negligible noise must converge
	// to the exact least-squares line through the two points: beta = 3,
	// alpha = -50 for (50,100) and (52,106).
	p := kalmanParams()
	p.KalmanProcessNoise = 1e-18
	p.KalmanObservationNoise = 1e-9

	state := NewKalmanState(p)
	for i := 0; i < 500; i++ {
		state, _ = state.Step(50, 100)
		state, _ = state.Step(52, 106)
	}

	assert.InDelta(t, 3.0, state.Beta, 1e-4)
	assert.InDelta(t, -50.0, state.Alpha, 1e-2)
}

func TestKalmanStep_RecoversKnownBeta(t *testing.T) {
	points := syntheticPair(600, 1.8, 0, 0.05, 21)
	p := kalmanParams()
	p.UseIntercept = false

	out := KalmanEstimate(points, p, zap.NewNop())
	last := out[len(out)-1]
	assert.True(t, last.Valid)
	assert.InDelta(t, 1.8, last.Beta, 0.05)
}

func TestKalmanStep_SkipsDegenerateInnovation(t *testing.T) {
	p := kalmanParams()
	p.UseIntercept = false
	p.KalmanObservationNoise = 1e-15 // below the degeneracy floor

	state := NewKalmanState(p)
	// With x=0 and no intercept, H·P·Hᵗ vanishes and the innovation variance
	// is just the (collapsed) observation noise.
	next, skipped := state.Step(0, 123)
	assert.True(t, skipped)
	assert.Equal(t, state.Beta, next.Beta, "skipped update must hold the prior state")
	assert.Equal(t, state.Alpha, next.Alpha)
	// covariance still grows by Q during the predict step
	assert.Greater(t, next.P[0][0], state.P[0][0])
}

func TestKalmanState_InterceptDisabledLocksAlpha(t *testing.T) {
	p := kalmanParams()
	p.UseIntercept = false

	state := NewKalmanState(p)
	for i := 0; i < 50; i++ {
		state, _ = state.Step(50+float64(i%3), 100+2*float64(i%3))
	}
	assert.Zero(t, state.Alpha)
	assert.Zero(t, state.P[1][1])
}
