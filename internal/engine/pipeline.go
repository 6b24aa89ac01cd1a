package engine

import (
	"time"

	"go.uber.org/zap"

	"alphatrawler/internal/analytics"
	"alphatrawler/internal/config"
	"alphatrawler/internal/hedge"
	"alphatrawler/internal/model"
	"alphatrawler/internal/stats"
)

// Result bundles the augmented price table with the backtest outcome for one
// pipeline run.
type Result struct {
	Rows   []model.AnalyticsRow `json:"rows"`
	Report model.BacktestReport `json:"report"`
}

// Run executes the whole chain — hedge ratio, spread, z-score, signals,
// backtest, metrics — over a consistent snapshot of the price table. The
// inputs are never mutated; callers may share the point slice across
// concurrent runs.
func Run(points []model.PricePoint, p config.Params, logger *zap.Logger) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	hedges := hedge.Estimate(points, p, logger)
	spread := analytics.Spread(points, hedges)
	zscore := analytics.ZScore(spread, p.ZScoreWindow)
	signals, positions := analytics.GenerateSignals(zscore, p.EntryThreshold, p.ExitThreshold)

	times := make([]time.Time, len(points))
	for i, pt := range points {
		times[i] = pt.Timestamp
	}

	report := NewBacktester(p.TradeCost).Run(times, spread, zscore, signals)
	report.Metrics = ComputeMetrics(report.EquityCurve, report.Trades, p.AnnualizationFactor)

	rows := make([]model.AnalyticsRow, len(points))
	for i, pt := range points {
		row := model.AnalyticsRow{
			Timestamp: pt.Timestamp,
			Target:    pt.Target,
			Reference: pt.Reference,
			Spread:    spread[i],
			ZScore:    zscore[i],
			Signal:    signals[i],
			Position:  positions[i],
		}
		if h := hedges[i]; h.Valid {
			row.Beta = stats.Defined(h.Beta)
			if p.UseIntercept {
				row.Alpha = stats.Defined(h.Alpha)
			}
		}
		rows[i] = row
	}

	return &Result{Rows: rows, Report: report}, nil
}

// DefinedSpread extracts the defined spread values from a run, most recent
// last. This is the series the on-demand ADF test consumes.
func (r *Result) DefinedSpread(limit int) []float64 {
	out := make([]float64, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.Spread.Valid {
			out = append(out, row.Spread.Float)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
