// Package analytics derives the mean-reverting spread from prices and hedge
// ratios, normalizes it into a rolling z-score, validates stationarity on
// demand and maps z-scores to discrete trade signals.
package analytics

import (
	"math"

	"alphatrawler/internal/model"
	"alphatrawler/internal/stats"
)

// Spread computes target − beta·reference − alpha per bar. Undefined wherever
// the hedge ratio is undefined.
func Spread(points []model.PricePoint, hedges []model.HedgePoint) []stats.Value {
	out := make([]stats.Value, len(points))
	for i, pt := range points {
		h := hedges[i]
		if !h.Valid {
			continue
		}
		out[i] = stats.Defined(pt.Target - h.Beta*pt.Reference - h.Alpha)
	}
	return out
}

// ZScore normalizes the spread against its own trailing window: z = (s −
// mean) / std, with std taken over the window as the population. Undefined
// until the window holds `window` consecutive defined spreads, and wherever
// that std collapses to zero. An undefined spread resets the window — a
// z-score must never mix samples across a gap in the hedge ratio.
func ZScore(spread []stats.Value, window int) []stats.Value {
	out := make([]stats.Value, len(spread))
	if window < 2 || len(spread) < window {
		return out
	}

	roll := stats.NewRolling(window)
	for i, s := range spread {
		if !s.Valid {
			roll.Reset()
			continue
		}
		roll.Push(s.Float)
		v := roll.PopVariance()
		if !v.Valid {
			continue
		}
		std := math.Sqrt(v.Float)
		if std <= 1e-12 {
			continue // degenerate window, z undefined at this index
		}
		mean := roll.Mean()
		out[i] = stats.Defined((s.Float - mean.Float) / std)
	}
	return out
}
