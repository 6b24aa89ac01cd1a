// Package processor resamples the raw tick stream into fixed-interval OHLCV
// bars. It keeps one in-flight bar per symbol/window and flushes a bar back
// onto the bus once its window has closed, so downstream consumers only ever
// see completed bars.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"alphatrawler/internal/infrastructure"
	"alphatrawler/internal/model"
)

type BarResampler struct {
	js         nats.JetStreamContext
	logger     *zap.Logger
	resolution time.Duration
	period     string
	bars       map[string]*model.Bar
	mu         sync.Mutex
}

func NewBarResampler(js nats.JetStreamContext, logger *zap.Logger, period string) (*BarResampler, error) {
	resolution, err := time.ParseDuration(period)
	if err != nil || resolution <= 0 {
		return nil, fmt.Errorf("invalid bar resolution %q: %w", period, err)
	}
	return &BarResampler{
		js:         js,
		logger:     logger,
		resolution: resolution,
		period:     period,
		bars:       make(map[string]*model.Bar),
	}, nil
}

func (p *BarResampler) Run(ctx context.Context) error {
	_, err := p.js.Subscribe("market.raw.*", func(msg *nats.Msg) {
		var tick model.Tick
		if err := json.Unmarshal(msg.Data, &tick); err != nil {
			p.logger.Error("failed to unmarshal tick in resampler", zap.Error(err))
			return
		}
		p.Apply(tick)
		msg.Ack()
	}, nats.Durable("bar-resampler"), nats.ManualAck())

	if err != nil {
		return err
	}

	go p.flushLoop(ctx)
	p.logger.Info("bar resampler started", zap.String("period", p.period))
	return nil
}

// Apply folds one tick into its bar window: first tick opens the bar, later
// ticks stretch high/low and advance close/volume.
func (p *BarResampler) Apply(tick model.Tick) {
	p.mu.Lock()
	defer p.mu.Unlock()

	window := tick.Timestamp.Truncate(p.resolution)
	key := fmt.Sprintf("%s:%s", tick.Symbol, window.Format(time.RFC3339Nano))

	bar, ok := p.bars[key]
	if !ok {
		p.bars[key] = &model.Bar{
			Symbol:    tick.Symbol,
			Period:    p.period,
			Open:      tick.Price,
			High:      tick.Price,
			Low:       tick.Price,
			Close:     tick.Price,
			Volume:    tick.Quantity,
			Timestamp: window,
		}
		return
	}
	if tick.Price.GreaterThan(bar.High) {
		bar.High = tick.Price
	}
	if tick.Price.LessThan(bar.Low) {
		bar.Low = tick.Price
	}
	bar.Close = tick.Price
	bar.Volume = bar.Volume.Add(tick.Quantity)
}

func (p *BarResampler) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(p.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, bar := range p.Completed(time.Now()) {
				p.publish(bar)
			}
		}
	}
}

// Completed removes and returns every bar whose window closed before now.
func (p *BarResampler) Completed(now time.Time) []*model.Bar {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := now.Truncate(p.resolution)
	done := make([]*model.Bar, 0)
	for key, bar := range p.bars {
		if bar.Timestamp.Before(cutoff) {
			done = append(done, bar)
			delete(p.bars, key)
		}
	}
	return done
}

func (p *BarResampler) publish(bar *model.Bar) {
	subject := fmt.Sprintf("market.bar.%s.%s", p.period, bar.Symbol)
	data, _ := json.Marshal(bar)
	if _, err := p.js.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish bar", zap.Error(err))
		return
	}
	infrastructure.BarsPublished.WithLabelValues(bar.Symbol).Inc()
}
