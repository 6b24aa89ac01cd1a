package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicksIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_ticks_ingested_total",
		Help: "Ticks received over the browser bridge",
	}, []string{"symbol"})

	BarsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resampler_bars_published_total",
		Help: "Completed bars flushed by the resampler",
	}, []string{"symbol"})

	DBInsertRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "db_insert_total",
		Help: "Total number of records inserted into DB",
	}, []string{"table"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	BacktestRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backtest_runs_total",
		Help: "Backtest pipeline invocations",
	})

	BacktestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "backtest_duration_seconds",
		Help: "Wall time of one backtest pipeline run",
	})
)
