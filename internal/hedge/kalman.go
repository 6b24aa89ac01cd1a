package hedge

import (
	"go.uber.org/zap"

	"alphatrawler/internal/config"
	"alphatrawler/internal/model"
)

// KalmanState is the filter state threaded through Step: the [beta, alpha]
// estimate and its 2x2 covariance. It is a plain value, so a filter can be
// restarted from any state in tests.
type KalmanState struct {
	Beta  float64
	Alpha float64
	P     [2][2]float64

	q         float64 // process noise added to the diagonal each step
	r         float64 // observation noise variance
	intercept bool
}

// NewKalmanState builds the prior: beta=1, alpha=0 and a large diagonal
// covariance expressing the initial uncertainty. With the intercept disabled
// the alpha row/column of P and Q stay zero, so the gain on alpha is zero and
// the state reduces to [beta] alone.
func NewKalmanState(p config.Params) KalmanState {
	s := KalmanState{
		Beta:      1,
		q:         p.KalmanProcessNoise,
		r:         p.KalmanObservationNoise,
		intercept: p.UseIntercept,
	}
	s.P[0][0] = p.KalmanInitVariance
	if p.UseIntercept {
		s.P[1][1] = p.KalmanInitVariance
	}
	return s
}

// Step runs one predict/update recursion for observation y = H·state + noise
// with H = [x, 1] (or [x, 0] without intercept). It returns the posterior
// state and whether the update was skipped because the innovation variance
// collapsed (treated as a sensor dropout: the filter holds its prior).
func (s KalmanState) Step(x, y float64) (KalmanState, bool) {
	// Predict: random walk, covariance grows by Q.
	p00 := s.P[0][0] + s.q
	p01 := s.P[0][1]
	p10 := s.P[1][0]
	p11 := s.P[1][1]
	if s.intercept {
		p11 += s.q
	}

	h1 := 0.0
	if s.intercept {
		h1 = 1.0
	}

	// Innovation variance S = H·P·Hᵗ + R.
	innovVar := x*x*p00 + x*h1*(p01+p10) + h1*h1*p11 + s.r
	if innovVar <= degenerateVar {
		next := s
		next.P = [2][2]float64{{p00, p01}, {p10, p11}}
		return next, true
	}

	k0 := (p00*x + p01*h1) / innovVar
	k1 := (p10*x + p11*h1) / innovVar

	innov := y - (x*s.Beta + h1*s.Alpha)

	next := s
	next.Beta = s.Beta + k0*innov
	next.Alpha = s.Alpha + k1*innov

	// P = (I − K·H)·P_prior, then re-symmetrized so floating-point drift
	// cannot push it off the PSD cone.
	next.P[0][0] = (1-k0*x)*p00 - k0*h1*p10
	next.P[0][1] = (1-k0*x)*p01 - k0*h1*p11
	next.P[1][0] = -k1*x*p00 + (1-k1*h1)*p10
	next.P[1][1] = -k1*x*p01 + (1-k1*h1)*p11
	off := (next.P[0][1] + next.P[1][0]) / 2
	next.P[0][1], next.P[1][0] = off, off

	return next, false
}

// KalmanEstimate folds Step over the price series. Unlike rolling OLS the
// output is valid from the very first sample, priors doing the work until
// the data takes over.
func KalmanEstimate(points []model.PricePoint, p config.Params, logger *zap.Logger) []model.HedgePoint {
	out := make([]model.HedgePoint, len(points))
	state := NewKalmanState(p)
	skipped := 0

	for i, pt := range points {
		next, dropped := state.Step(pt.Reference, pt.Target)
		state = next
		if dropped {
			skipped++
		}
		out[i] = model.HedgePoint{
			Beta:     state.Beta,
			Alpha:    state.Alpha,
			Variance: state.P[0][0],
			Valid:    true,
		}
	}

	if skipped > 0 && logger != nil {
		logger.Warn("kalman updates skipped on degenerate innovation variance",
			zap.Int("skipped", skipped), zap.Int("samples", len(points)))
	}
	return out
}
