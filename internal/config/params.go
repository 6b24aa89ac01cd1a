package config

import "fmt"

// Hedge ratio estimation methods.
const (
	HedgeRollingOLS = "rolling_ols"
	HedgeKalman     = "kalman"
)

// ADFLagAuto selects the ADF lag order by AIC instead of pinning it.
const ADFLagAuto = -1

// Params is the immutable analytics configuration threaded through every
// pipeline stage. Each backtest run (and each sweep worker) gets its own
// copy, so concurrent runs cannot interfere.
type Params struct {
	HedgeMethod  string `json:"hedge_method" mapstructure:"hedge_method"`
	OLSWindow    int    `json:"ols_window" mapstructure:"ols_window"`
	UseIntercept bool   `json:"use_intercept" mapstructure:"use_intercept"`

	KalmanProcessNoise     float64 `json:"kalman_process_noise" mapstructure:"kalman_process_noise"`
	KalmanObservationNoise float64 `json:"kalman_observation_noise" mapstructure:"kalman_observation_noise"`
	KalmanInitVariance     float64 `json:"kalman_init_variance" mapstructure:"kalman_init_variance"`

	ZScoreWindow   int     `json:"zscore_window" mapstructure:"zscore_window"`
	EntryThreshold float64 `json:"entry_threshold" mapstructure:"entry_threshold"`
	ExitThreshold  float64 `json:"exit_threshold" mapstructure:"exit_threshold"`

	ADFSignificance float64 `json:"adf_significance" mapstructure:"adf_significance"`
	ADFLag          int     `json:"adf_lag" mapstructure:"adf_lag"` // ADFLagAuto = choose by AIC

	TradeCost           float64 `json:"trade_cost" mapstructure:"trade_cost"`
	AnnualizationFactor float64 `json:"annualization_factor" mapstructure:"annualization_factor"`
}

// DefaultParams mirrors the dashboard defaults: 60-bar windows, 2.0/0.0
// entry/exit bands, minute-level annualization.
func DefaultParams() Params {
	return Params{
		HedgeMethod:            HedgeRollingOLS,
		OLSWindow:              60,
		UseIntercept:           true,
		KalmanProcessNoise:     1e-5,
		KalmanObservationNoise: 1e-3,
		KalmanInitVariance:     10.0,
		ZScoreWindow:           60,
		EntryThreshold:         2.0,
		ExitThreshold:          0.0,
		ADFSignificance:        0.05,
		ADFLag:                 ADFLagAuto,
		TradeCost:              0,
		AnnualizationFactor:    252 * 1440,
	}
}

// Validate fails fast on malformed parameters. This is the only fatal error
// class in the analytics core; everything past validation degrades to
// undefined values instead of faulting.
func (p Params) Validate() error {
	switch p.HedgeMethod {
	case HedgeRollingOLS, HedgeKalman:
	default:
		return fmt.Errorf("unknown hedge_method %q", p.HedgeMethod)
	}
	if p.OLSWindow < 2 {
		return fmt.Errorf("ols_window must be >= 2, got %d", p.OLSWindow)
	}
	if p.KalmanProcessNoise <= 0 {
		return fmt.Errorf("kalman_process_noise must be positive, got %g", p.KalmanProcessNoise)
	}
	if p.KalmanObservationNoise <= 0 {
		return fmt.Errorf("kalman_observation_noise must be positive, got %g", p.KalmanObservationNoise)
	}
	if p.KalmanInitVariance <= 0 {
		return fmt.Errorf("kalman_init_variance must be positive, got %g", p.KalmanInitVariance)
	}
	if p.ZScoreWindow < 2 {
		return fmt.Errorf("zscore_window must be >= 2, got %d", p.ZScoreWindow)
	}
	if p.EntryThreshold <= 0 {
		return fmt.Errorf("entry_threshold must be positive, got %g", p.EntryThreshold)
	}
	if p.ExitThreshold < 0 || p.ExitThreshold >= p.EntryThreshold {
		return fmt.Errorf("exit_threshold must satisfy 0 <= exit < entry, got exit=%g entry=%g",
			p.ExitThreshold, p.EntryThreshold)
	}
	if p.ADFSignificance <= 0 || p.ADFSignificance >= 1 {
		return fmt.Errorf("adf_significance must be in (0,1), got %g", p.ADFSignificance)
	}
	if p.ADFLag < ADFLagAuto {
		return fmt.Errorf("adf_lag must be a non-negative lag order or %d for auto", ADFLagAuto)
	}
	if p.TradeCost < 0 {
		return fmt.Errorf("trade_cost must be >= 0, got %g", p.TradeCost)
	}
	if p.AnnualizationFactor <= 0 {
		return fmt.Errorf("annualization_factor must be positive, got %g", p.AnnualizationFactor)
	}
	return nil
}
