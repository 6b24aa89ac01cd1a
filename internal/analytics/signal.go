package analytics

import (
	"math"

	"alphatrawler/internal/model"
	"alphatrawler/internal/stats"
)

// GenerateSignals runs the threshold state machine over the z-score series
// and returns the per-bar signal alongside the resulting position path.
//
// Transitions, evaluated once per bar in order:
//   - flat  → short when z >= entry (spread rich, expect reversion down)
//   - flat  → long  when z <= −entry
//   - long/short → flat when |z| <= exit
//
// At most one transition fires per bar (entries only fire from flat, so entry
// and exit can never both apply). A bar with an undefined z-score emits
// Neutral and holds the current state: missing data is explicitly "no
// opinion", not an implicit exit.
func GenerateSignals(zscore []stats.Value, entry, exit float64) ([]model.Signal, []model.Position) {
	signals := make([]model.Signal, len(zscore))
	positions := make([]model.Position, len(zscore))

	state := model.PositionFlat
	for i, z := range zscore {
		signals[i] = model.SignalNeutral
		if z.Valid {
			switch state {
			case model.PositionFlat:
				if z.Float >= entry {
					state = model.PositionShort
					signals[i] = model.SignalShortSpread
				} else if z.Float <= -entry {
					state = model.PositionLong
					signals[i] = model.SignalLongSpread
				}
			default:
				if math.Abs(z.Float) <= exit {
					state = model.PositionFlat
					signals[i] = model.SignalExit
				}
			}
		}
		positions[i] = state
	}
	return signals, positions
}
