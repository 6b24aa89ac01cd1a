// Package hedge estimates the time-varying hedge ratio between the target
// and reference legs: a rolling least-squares fit and a Kalman filter over a
// random-walk [beta, alpha] state.
package hedge

import (
	"go.uber.org/zap"

	"alphatrawler/internal/config"
	"alphatrawler/internal/model"
	"alphatrawler/internal/stats"
)

// degenerateVar is the floor under which a window's reference variance (or
// the Kalman innovation variance) is treated as zero.
const degenerateVar = 1e-12

// RollingOLS fits target ~ beta*reference (+ alpha) over a trailing window
// of w samples, window ending at each index. Output is aligned to the input;
// entries before the window fills, and entries whose reference window has no
// variance, are invalid. Incremental window sums keep the whole pass O(n).
func RollingOLS(points []model.PricePoint, window int, intercept bool) []model.HedgePoint {
	out := make([]model.HedgePoint, len(points))
	if window < 2 || len(points) < window {
		return out
	}

	acc := stats.NewRollingPair(window)
	for i, pt := range points {
		acc.Push(pt.Reference, pt.Target)
		if !acc.Full() {
			continue
		}
		if intercept {
			out[i] = fitWithIntercept(acc)
		} else {
			out[i] = fitThroughOrigin(acc)
		}
	}
	return out
}

func fitWithIntercept(acc *stats.RollingPair) model.HedgePoint {
	sxx := acc.M2X()
	if sxx <= degenerateVar {
		// constant reference price, slope is unidentified
		return model.HedgePoint{}
	}
	beta := acc.CXY() / sxx
	alpha := acc.MeanY() - beta*acc.MeanX()

	ssr := acc.M2Y() - beta*acc.CXY()
	if ssr < 0 {
		ssr = 0
	}
	variance := 0.0
	if n := acc.Count(); n > 2 {
		variance = ssr / float64(n-2)
	}
	return model.HedgePoint{Beta: beta, Alpha: alpha, Variance: variance, Valid: true}
}

func fitThroughOrigin(acc *stats.RollingPair) model.HedgePoint {
	sxx := acc.SumXX()
	if sxx <= degenerateVar {
		return model.HedgePoint{}
	}
	beta := acc.SumXY() / sxx
	ssr := acc.SumYY() - beta*acc.SumXY()
	if ssr < 0 {
		ssr = 0
	}
	variance := 0.0
	if n := acc.Count(); n > 1 {
		variance = ssr / float64(n-1)
	}
	return model.HedgePoint{Beta: beta, Variance: variance, Valid: true}
}

// Estimate dispatches on the configured hedge method. Params must already be
// validated.
func Estimate(points []model.PricePoint, p config.Params, logger *zap.Logger) []model.HedgePoint {
	if p.HedgeMethod == config.HedgeKalman {
		return KalmanEstimate(points, p, logger)
	}
	return RollingOLS(points, p.OLSWindow, p.UseIntercept)
}
