package stats

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func naiveMeanVar(xs []float64) (float64, float64) {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	m2 := 0.0
	for _, x := range xs {
		m2 += (x - mean) * (x - mean)
	}
	return mean, m2 / float64(len(xs)-1)
}

func TestWelford_MatchesDirectComputation(t *testing.T) {
	xs := []float64{3.5, -1.25, 7, 0, 2.5, 100, -42.5}

	var w Welford
	for _, x := range xs {
		w.Push(x)
	}

	mean, variance := naiveMeanVar(xs)
	assert.InDelta(t, mean, w.Mean().Float, 1e-12)
	assert.InDelta(t, variance, w.Variance().Float, 1e-9)
}

func TestWelford_UndefinedBelowTwoSamples(t *testing.T) {
	var w Welford
	assert.False(t, w.Mean().Valid)
	assert.False(t, w.Variance().Valid)

	w.Push(5)
	assert.True(t, w.Mean().Valid)
	assert.False(t, w.Variance().Valid)

	w.Push(7)
	assert.True(t, w.Variance().Valid)
}

func TestRolling_UndefinedUntilFull(t *testing.T) {
	r := NewRolling(4)
	for i := 0; i < 3; i++ {
		r.Push(float64(i))
		assert.False(t, r.Mean().Valid)
		assert.False(t, r.Variance().Valid)
	}
	r.Push(3)
	assert.True(t, r.Mean().Valid)
	assert.True(t, r.Variance().Valid)
}

func TestRolling_SlideMatchesRecompute(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const window = 20
	xs := make([]float64, 500)
	for i := range xs {
		xs[i] = 1000 + rng.NormFloat64() // large offset stresses cancellation
	}

	r := NewRolling(window)
	for i, x := range xs {
		r.Push(x)
		if i < window-1 {
			continue
		}
		mean, variance := naiveMeanVar(xs[i-window+1 : i+1])
		assert.InDelta(t, mean, r.Mean().Float, 1e-9, "mean at %d", i)
		assert.InDelta(t, variance, r.Variance().Float, 1e-7, "variance at %d", i)
	}
}

func TestRolling_PopVariance(t *testing.T) {
	r := NewRolling(2)
	r.Push(4)
	r.Push(0)
	// population: mean 2, deviations ±2, variance 4
	assert.InDelta(t, 4.0, r.PopVariance().Float, 1e-12)
	// sample variance divides by n-1 instead
	assert.InDelta(t, 8.0, r.Variance().Float, 1e-12)
}

func TestRolling_ResetEmptiesWindow(t *testing.T) {
	r := NewRolling(2)
	r.Push(1)
	r.Push(2)
	assert.True(t, r.Full())

	r.Reset()
	assert.False(t, r.Full())
	assert.False(t, r.Mean().Valid)

	r.Push(10)
	r.Push(20)
	assert.InDelta(t, 15.0, r.Mean().Float, 1e-12)
}

func TestRollingPair_MatchesDirectCovariance(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const window = 15
	n := 300
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = 50 + rng.NormFloat64()
		ys[i] = 2*xs[i] + rng.NormFloat64()*0.1
	}

	p := NewRollingPair(window)
	for i := 0; i < n; i++ {
		p.Push(xs[i], ys[i])
		if i < window-1 {
			continue
		}
		lo := i - window + 1
		meanX, _ := naiveMeanVar(xs[lo : i+1])
		meanY, _ := naiveMeanVar(ys[lo : i+1])
		cxy := 0.0
		for j := lo; j <= i; j++ {
			cxy += (xs[j] - meanX) * (ys[j] - meanY)
		}
		assert.InDelta(t, meanX, p.MeanX(), 1e-9)
		assert.InDelta(t, meanY, p.MeanY(), 1e-9)
		assert.InDelta(t, cxy, p.CXY(), 1e-6, "co-moment at %d", i)
	}
}

func TestValue_JSONNullWhenUndefined(t *testing.T) {
	defined, err := json.Marshal(Defined(1.5))
	assert.NoError(t, err)
	assert.Equal(t, "1.5", string(defined))

	undefined, err := json.Marshal(Undefined)
	assert.NoError(t, err)
	assert.Equal(t, "null", string(undefined))

	inf, err := json.Marshal(Defined(math.Inf(1)))
	assert.NoError(t, err)
	assert.Equal(t, "null", string(inf))
}
