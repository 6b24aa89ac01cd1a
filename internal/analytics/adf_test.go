package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alphatrawler/internal/config"
)

// lcgNoise is a fixed-sequence noise source in (-0.5, 0.5). A hand-rolled
// generator keeps the test series byte-stable across Go releases, which
// rand.Source does not guarantee.
type lcgNoise uint64

func (s *lcgNoise) next() float64 {
	*s = *s*6364136223846793005 + 1442695040888963407
	return float64(*s>>11)/(1<<53) - 0.5
}

func arSeries(seed lcgNoise, n int, phi float64) []float64 {
	y := make([]float64, n)
	for i := 1; i < n; i++ {
		y[i] = phi*y[i-1] + seed.next()
	}
	return y
}

func TestADF_StationarySeriesIsMeanReverting(t *testing.T) {
	y := arSeries(12345, 200, 0.2)

	res := ADF(y, config.DefaultParams())
	assert.True(t, res.MeanReverting)
	assert.Less(t, res.PValue, 0.05)
	assert.Less(t, res.Statistic, -5.0, "strong rejection of the unit root")
	assert.Greater(t, res.NObs, 150)
}

func TestADF_DriftingSeriesIsNot(t *testing.T) {
	noise := lcgNoise(999)
	y := make([]float64, 200)
	for i := 1; i < len(y); i++ {
		y[i] = y[i-1] + 1.0 + 0.3*noise.next()
	}

	res := ADF(y, config.DefaultParams())
	assert.False(t, res.MeanReverting)
	assert.Greater(t, res.PValue, 0.9)
}

func TestADF_RandomWalkIsNot(t *testing.T) {
	noise := lcgNoise(7)
	y := make([]float64, 300)
	for i := 1; i < len(y); i++ {
		y[i] = y[i-1] + noise.next()
	}

	res := ADF(y, config.DefaultParams())
	assert.False(t, res.MeanReverting)
	assert.Greater(t, res.PValue, 0.1)
}

func TestADF_TooFewObservations(t *testing.T) {
	y := arSeries(1, 29, 0.2)

	res := ADF(y, config.DefaultParams())
	assert.False(t, res.MeanReverting)
	assert.Equal(t, 1.0, res.PValue)
	assert.Zero(t, res.Statistic)
}

func TestADF_FixedLagIsHonored(t *testing.T) {
	y := arSeries(42, 100, 0.5)
	p := config.DefaultParams()
	p.ADFLag = 2

	res := ADF(y, p)
	assert.Equal(t, 2, res.Lag)
	assert.True(t, res.MeanReverting)
}

func TestMackinnonP_Interpolation(t *testing.T) {
	assert.InDelta(t, 0.05, mackinnonP(-2.86), 1e-12, "exact anchor")
	assert.InDelta(t, 0.075, mackinnonP(-2.715), 1e-9, "midpoint between anchors")
	assert.Equal(t, 0.001, mackinnonP(-10))
	assert.Equal(t, 0.999, mackinnonP(3))
}
