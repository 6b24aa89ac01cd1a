// Package engine replays signal series over historical spreads and reduces
// the outcome to an equity curve, a trade log and aggregate metrics. Every
// entry point is a pure function of its inputs, so re-running any slice is
// deterministic and sweep runs can share inputs without locking.
package engine

import (
	"time"

	"alphatrawler/internal/model"
	"alphatrawler/internal/stats"
)

// Backtester simulates one long/short position on the spread, bar by bar.
// The position decided with bar i's signal earns the spread change from bar
// i to bar i+1 — never the change that produced the signal.
type Backtester struct {
	cost float64 // flat cost charged once per round trip, at exit
}

func NewBacktester(tradeCost float64) *Backtester {
	return &Backtester{cost: tradeCost}
}

type openTrade struct {
	entryTime   time.Time
	direction   model.Position
	entrySpread float64
	entryZ      float64
}

func direction(p model.Position) float64 {
	if p == model.PositionShort {
		return -1
	}
	return 1
}

// Run walks the aligned series in timestamp order. Bars with an undefined
// spread contribute zero PnL and cannot open or close trades; accrual resumes
// against the last defined spread once the series recovers. A position still
// open after the final bar is closed at the last defined spread and flagged
// as forced in the trade log.
func (b *Backtester) Run(times []time.Time, spread, zscore []stats.Value, signals []model.Signal) model.BacktestReport {
	n := len(times)
	equity := make([]float64, n)
	trades := make([]model.TradeRecord, 0)

	pos := model.PositionFlat
	var open openTrade
	var last stats.Value // last defined spread
	var lastZ stats.Value
	var lastTime time.Time
	cum := 0.0

	for i := 0; i < n; i++ {
		s := spread[i]

		// 1. Accrue PnL for the position carried into this bar.
		if pos != model.PositionFlat && s.Valid && last.Valid {
			cum += direction(pos) * (s.Float - last.Float)
		}

		// 2. Apply this bar's signal. Entries and exits both execute at
		// this bar's spread; a Neutral signal holds.
		switch signals[i] {
		case model.SignalLongSpread, model.SignalShortSpread:
			if pos == model.PositionFlat && s.Valid {
				pos = model.PositionLong
				if signals[i] == model.SignalShortSpread {
					pos = model.PositionShort
				}
				open = openTrade{
					entryTime:   times[i],
					direction:   pos,
					entrySpread: s.Float,
					entryZ:      zscore[i].Float,
				}
			}
		case model.SignalExit:
			if pos != model.PositionFlat && s.Valid {
				cum -= b.cost
				trades = append(trades, model.TradeRecord{
					EntryTime:   open.entryTime,
					ExitTime:    times[i],
					Direction:   open.direction,
					EntryZScore: open.entryZ,
					ExitZScore:  zscore[i].Float,
					EntrySpread: open.entrySpread,
					ExitSpread:  s.Float,
					PnL:         direction(pos)*(s.Float-open.entrySpread) - b.cost,
				})
				pos = model.PositionFlat
			}
		}

		equity[i] = cum
		if s.Valid {
			last = s
			lastZ = zscore[i]
			lastTime = times[i]
		}
	}

	// Mark-to-market close of anything still open at the final bar.
	if pos != model.PositionFlat && last.Valid {
		cum -= b.cost
		trades = append(trades, model.TradeRecord{
			EntryTime:   open.entryTime,
			ExitTime:    lastTime,
			Direction:   open.direction,
			EntryZScore: open.entryZ,
			ExitZScore:  lastZ.Float,
			EntrySpread: open.entrySpread,
			ExitSpread:  last.Float,
			PnL:         direction(pos)*(last.Float-open.entrySpread) - b.cost,
			Forced:      true,
		})
		if n > 0 {
			equity[n-1] = cum
		}
	}

	return model.BacktestReport{EquityCurve: equity, Trades: trades}
}
