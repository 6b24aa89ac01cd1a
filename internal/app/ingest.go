package app

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"alphatrawler/internal/model"
	"alphatrawler/internal/storage"
)

// startPersistenceService subscribes to the bus and saves ticks and bars to
// the database through the batch savers.
func (a *App) startPersistenceService(tickSaver *storage.TickSaver, barSaver *storage.BarSaver) {
	// 1. Raw ticks from the browser bridge
	_, err := a.JS.Subscribe("market.raw.*", func(m *nats.Msg) {
		var tick model.Tick
		if err := json.Unmarshal(m.Data, &tick); err != nil {
			a.Logger.Error("failed to unmarshal tick", zap.Error(err))
			return
		}
		tickSaver.Add(tick)
	}, nats.Durable("tick_saver"), nats.ManualAck())
	if err != nil {
		a.Logger.Fatal("failed to subscribe to ticks", zap.Error(err))
	}

	// 2. Completed bars from the resampler
	_, err = a.JS.Subscribe("market.bar.*.*", func(m *nats.Msg) {
		var bar model.Bar
		if err := json.Unmarshal(m.Data, &bar); err != nil {
			a.Logger.Error("failed to unmarshal bar", zap.Error(err))
			return
		}
		barSaver.Add(bar)
	}, nats.Durable("bar_saver"), nats.ManualAck())
	if err != nil {
		a.Logger.Fatal("failed to subscribe to bars", zap.Error(err))
	}
}
