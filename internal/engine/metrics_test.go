package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"alphatrawler/internal/model"
)

func TestComputeMetrics_MonotoneCurve(t *testing.T) {
	// Never dips below its running peak: max drawdown 0, Calmar undefined.
	// Constant per-bar returns also leave Sharpe without a denominator.
	rep := ComputeMetrics([]float64{0, 1, 2, 3}, nil, 252)

	assert.InDelta(t, 3.0, rep.TotalReturn, 1e-12)
	assert.Zero(t, rep.MaxDrawdown)
	assert.False(t, rep.Calmar.Valid)
	assert.False(t, rep.Sharpe.Valid)
	assert.False(t, rep.Sortino.Valid, "no negative returns, no downside deviation")
}

func TestComputeMetrics_SharpeAndDrawdown(t *testing.T) {
	// Returns {2, -1, 3}: mean 4/3, sample variance 13/3.
	rep := ComputeMetrics([]float64{0, 2, 1, 4}, nil, 1)

	assert.InDelta(t, 4.0, rep.TotalReturn, 1e-12)
	assert.True(t, rep.Sharpe.Valid)
	assert.InDelta(t, (4.0/3.0)/math.Sqrt(13.0/3.0), rep.Sharpe.Float, 1e-9)
	assert.False(t, rep.Sortino.Valid, "a single negative return has no sample deviation")
	assert.InDelta(t, 1.0, rep.MaxDrawdown, 1e-12, "peak 2 to trough 1")
	assert.True(t, rep.Calmar.Valid)
	assert.InDelta(t, 4.0, rep.Calmar.Float, 1e-9)
}

func TestComputeMetrics_Sortino(t *testing.T) {
	// Returns {-1, -2, 4}: downside {-1, -2} with sample variance 0.5.
	rep := ComputeMetrics([]float64{0, -1, -3, 1}, nil, 1)

	assert.True(t, rep.Sortino.Valid)
	assert.InDelta(t, (1.0/3.0)/math.Sqrt(0.5), rep.Sortino.Float, 1e-9)
}

func TestComputeMetrics_AnnualizationScalesSharpe(t *testing.T) {
	base := ComputeMetrics([]float64{0, 2, 1, 4}, nil, 1)
	ann := ComputeMetrics([]float64{0, 2, 1, 4}, nil, 252)
	assert.InDelta(t, base.Sharpe.Float*math.Sqrt(252), ann.Sharpe.Float, 1e-9)
}

func TestComputeMetrics_TradeStats(t *testing.T) {
	trades := []model.TradeRecord{
		{PnL: 2},
		{PnL: -1},
		{PnL: 0}, // scratch trade: neither win nor loss
		{PnL: 3},
	}
	rep := ComputeMetrics([]float64{0, 4}, trades, 1)

	assert.Equal(t, 4, rep.TradeCount)
	assert.InDelta(t, 0.5, rep.WinRate, 1e-12)
	assert.InDelta(t, 2.5, rep.AvgWin, 1e-12)
	assert.InDelta(t, -1.0, rep.AvgLoss, 1e-12)
}

func TestComputeMetrics_NoTrades(t *testing.T) {
	rep := ComputeMetrics([]float64{0, 1}, nil, 1)
	assert.Zero(t, rep.TradeCount)
	assert.Zero(t, rep.WinRate)
	assert.Zero(t, rep.AvgWin)
	assert.Zero(t, rep.AvgLoss)
}

func TestComputeMetrics_EmptyCurve(t *testing.T) {
	rep := ComputeMetrics(nil, nil, 252)
	assert.Zero(t, rep.TotalReturn)
	assert.False(t, rep.Sharpe.Valid)
	assert.False(t, rep.Calmar.Valid)
}

func TestMaxDrawdown_PeakStartsAtZero(t *testing.T) {
	// A curve that goes straight down draws down from the initial equity.
	assert.InDelta(t, 5.0, maxDrawdown([]float64{-2, -5}), 1e-12)
}
