package engine

import (
	"math"

	"alphatrawler/internal/model"
	"alphatrawler/internal/stats"
)

// ComputeMetrics reduces an equity curve and trade log to the aggregate
// report. Each ratio comes back undefined (Valid=false) when its denominator
// is degenerate — a flat curve has no Sharpe and a curve that never dips has
// no Calmar, and neither is a division fault.
func ComputeMetrics(equity []float64, trades []model.TradeRecord, annualization float64) model.MetricsReport {
	rep := model.MetricsReport{TradeCount: len(trades)}
	if len(equity) > 0 {
		rep.TotalReturn = equity[len(equity)-1] // initial equity is 0
	}

	var rets, downside stats.Welford
	for i := 1; i < len(equity); i++ {
		r := equity[i] - equity[i-1]
		rets.Push(r)
		if r < 0 {
			downside.Push(r)
		}
	}

	ann := math.Sqrt(annualization)
	if v := rets.Variance(); v.Valid && v.Float > 1e-18 {
		rep.Sharpe = stats.Defined(rets.Mean().Float / math.Sqrt(v.Float) * ann)
	}
	if v := downside.Variance(); v.Valid && v.Float > 1e-18 && rets.Count() >= 2 {
		rep.Sortino = stats.Defined(rets.Mean().Float / math.Sqrt(v.Float) * ann)
	}

	rep.MaxDrawdown = maxDrawdown(equity)
	if rep.MaxDrawdown > 1e-18 {
		rep.Calmar = stats.Defined(rep.TotalReturn / rep.MaxDrawdown)
	}

	wins, losses := 0, 0
	winSum, lossSum := 0.0, 0.0
	for _, t := range trades {
		switch {
		case t.PnL > 0:
			wins++
			winSum += t.PnL
		case t.PnL < 0:
			losses++
			lossSum += t.PnL
		}
	}
	if len(trades) > 0 {
		rep.WinRate = float64(wins) / float64(len(trades))
	}
	if wins > 0 {
		rep.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		rep.AvgLoss = lossSum / float64(losses)
	}
	return rep
}

// maxDrawdown is the deepest peak-to-trough decline. The running peak starts
// at the initial equity of zero.
func maxDrawdown(equity []float64) float64 {
	peak, maxDD := 0.0, 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if dd := peak - e; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
