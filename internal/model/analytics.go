package model

import (
	"time"

	"alphatrawler/internal/stats"
)

// Signal is the discrete decision emitted per bar where the z-score is
// defined. Entry signals only fire from a flat position; Neutral means "hold
// whatever you have", including the bars where the z-score is undefined.
type Signal string

const (
	SignalLongSpread  Signal = "long_spread"
	SignalShortSpread Signal = "short_spread"
	SignalExit        Signal = "exit"
	SignalNeutral     Signal = "neutral"
)

// Position is the path-dependent state derived from the signal sequence.
type Position string

const (
	PositionFlat  Position = "flat"
	PositionLong  Position = "long"
	PositionShort Position = "short"
)

// HedgePoint 对冲比率序列中的一个点
// Rolling OLS points are invalid until the window fills (and for degenerate
// windows); Kalman points are valid from the first sample.
type HedgePoint struct {
	Beta     float64 `json:"beta"`
	Alpha    float64 `json:"alpha"`    // zero when the intercept is not modeled
	Variance float64 `json:"variance"` // residual variance (OLS) / beta state variance (Kalman)
	Valid    bool    `json:"valid"`
}

// TradeRecord 回测中一次完整的开平仓
type TradeRecord struct {
	EntryTime   time.Time `json:"entry_time"`
	ExitTime    time.Time `json:"exit_time"`
	Direction   Position  `json:"direction"`
	EntryZScore float64   `json:"entry_zscore"`
	ExitZScore  float64   `json:"exit_zscore"`
	EntrySpread float64   `json:"entry_spread"`
	ExitSpread  float64   `json:"exit_spread"`
	PnL         float64   `json:"pnl"`
	Forced      bool      `json:"forced"` // closed by mark-to-market at the final bar
}

// MetricsReport 回测绩效指标
// The ratio fields carry explicit validity: a flat equity curve reports an
// undefined Sharpe/Calmar, not a division fault.
type MetricsReport struct {
	TotalReturn float64     `json:"total_return"`
	Sharpe      stats.Value `json:"sharpe"`
	Sortino     stats.Value `json:"sortino"`
	Calmar      stats.Value `json:"calmar"`
	MaxDrawdown float64     `json:"max_drawdown"`
	WinRate     float64     `json:"win_rate"`
	AvgWin      float64     `json:"avg_win"`
	AvgLoss     float64     `json:"avg_loss"`
	TradeCount  int         `json:"trade_count"`
}

// ADFResult 平稳性检验结果
type ADFResult struct {
	Statistic     float64 `json:"statistic"`
	PValue        float64 `json:"p_value"`
	Lag           int     `json:"lag"`
	NObs          int     `json:"n_obs"`
	MeanReverting bool    `json:"mean_reverting"`
}

// AnalyticsRow is one row of the augmented price table handed to the
// dashboard and the CSV exporter.
type AnalyticsRow struct {
	Timestamp time.Time   `json:"t"`
	Target    float64     `json:"target"`
	Reference float64     `json:"reference"`
	Beta      stats.Value `json:"beta"`
	Alpha     stats.Value `json:"alpha"`
	Spread    stats.Value `json:"spread"`
	ZScore    stats.Value `json:"zscore"`
	Signal    Signal      `json:"signal"`
	Position  Position    `json:"position"`
}

// BacktestReport 回测结果报告
type BacktestReport struct {
	EquityCurve []float64     `json:"equity_curve"` // cumulative pnl, one point per bar
	Trades      []TradeRecord `json:"trades"`
	Metrics     MetricsReport `json:"metrics"`
}
