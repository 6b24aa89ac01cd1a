// Package storage persists the tick and bar streams to Postgres. Writes are
// batched (bounded by size and by flush interval) so a fast tick feed does
// not turn into a per-row insert storm.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"alphatrawler/internal/infrastructure"
	"alphatrawler/internal/model"
)

// TickSaver buffers raw ticks and flushes them in one batch insert.
type TickSaver struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	interval time.Duration
	maxBatch int

	mu  sync.Mutex
	buf []model.Tick
}

func NewTickSaver(pool *pgxpool.Pool, logger *zap.Logger, interval time.Duration, maxBatch int) *TickSaver {
	return &TickSaver{
		pool:     pool,
		logger:   logger,
		interval: interval,
		maxBatch: maxBatch,
		buf:      make([]model.Tick, 0, maxBatch),
	}
}

func (s *TickSaver) Add(tick model.Tick) {
	s.mu.Lock()
	s.buf = append(s.buf, tick)
	full := len(s.buf) >= s.maxBatch
	s.mu.Unlock()
	if full {
		s.Flush(context.Background())
	}
}

func (s *TickSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Flush(context.Background())
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

func (s *TickSaver) Flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return
	}
	pending := s.buf
	s.buf = make([]model.Tick, 0, s.maxBatch)
	s.mu.Unlock()

	batch := &pgx.Batch{}
	for _, t := range pending {
		batch.Queue(
			"INSERT INTO ticks (symbol, price, quantity, time) VALUES ($1, $2, $3, $4)",
			t.Symbol, t.Price, t.Quantity, t.Timestamp)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		s.logger.Error("failed to flush ticks", zap.Error(err), zap.Int("count", len(pending)))
		return
	}
	infrastructure.DBInsertRate.WithLabelValues("ticks").Add(float64(len(pending)))
}

// BarSaver buffers completed bars; conflicts on (symbol, period, time) are
// upserts so a resampler restart cannot duplicate a bar.
type BarSaver struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	interval time.Duration
	maxBatch int

	mu  sync.Mutex
	buf []model.Bar
}

func NewBarSaver(pool *pgxpool.Pool, logger *zap.Logger, interval time.Duration, maxBatch int) *BarSaver {
	return &BarSaver{
		pool:     pool,
		logger:   logger,
		interval: interval,
		maxBatch: maxBatch,
		buf:      make([]model.Bar, 0, maxBatch),
	}
}

func (s *BarSaver) Add(bar model.Bar) {
	s.mu.Lock()
	s.buf = append(s.buf, bar)
	full := len(s.buf) >= s.maxBatch
	s.mu.Unlock()
	if full {
		s.Flush(context.Background())
	}
}

func (s *BarSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Flush(context.Background())
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

func (s *BarSaver) Flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return
	}
	pending := s.buf
	s.buf = make([]model.Bar, 0, s.maxBatch)
	s.mu.Unlock()

	batch := &pgx.Batch{}
	for _, b := range pending {
		batch.Queue(`
			INSERT INTO bars (symbol, period, open, high, low, close, volume, time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (symbol, period, time) DO UPDATE
			SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
			    close = EXCLUDED.close, volume = EXCLUDED.volume`,
			b.Symbol, b.Period, b.Open, b.High, b.Low, b.Close, b.Volume, b.Timestamp)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		s.logger.Error("failed to flush bars", zap.Error(err), zap.Int("count", len(pending)))
		return
	}
	infrastructure.DBInsertRate.WithLabelValues("bars").Add(float64(len(pending)))
}
