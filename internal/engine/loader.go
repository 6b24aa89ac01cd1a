package engine

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"alphatrawler/internal/model"
)

// PairLoader materializes the analytics input table from Postgres: the two
// legs' bar closes joined on timestamp. The query is a consistent read, so
// the core never observes a partially written bar, and bars one leg is
// missing simply drop out of the join (gaps, not interpolation).
type PairLoader struct {
	pool *pgxpool.Pool
}

func NewPairLoader(pool *pgxpool.Pool) *PairLoader {
	return &PairLoader{pool: pool}
}

func (l *PairLoader) LoadPair(ctx context.Context, target, reference, period string, start, end time.Time) ([]model.PricePoint, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT t.time, t.close, r.close
		FROM bars t
		JOIN bars r ON r.time = t.time AND r.period = t.period
		WHERE t.symbol = $1 AND r.symbol = $2 AND t.period = $3
		  AND t.time >= $4 AND t.time <= $5
		ORDER BY t.time ASC`,
		target, reference, period, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var ts time.Time
		var tgt, ref decimal.Decimal
		if err := rows.Scan(&ts, &tgt, &ref); err != nil {
			return nil, err
		}
		points = append(points, model.PricePoint{
			Timestamp: ts,
			Target:    tgt.InexactFloat64(),
			Reference: ref.InexactFloat64(),
		})
	}
	return points, rows.Err()
}

// LoadBars returns the most recent bars for one symbol, oldest first.
func (l *PairLoader) LoadBars(ctx context.Context, symbol, period string, limit int) ([]model.Bar, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT symbol, period, open, high, low, close, volume, time
		FROM bars
		WHERE symbol = $1 AND period = $2
		ORDER BY time DESC
		LIMIT $3`,
		symbol, period, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		if err := rows.Scan(&b.Symbol, &b.Period, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Timestamp); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, rows.Err()
}
