package analytics

import (
	"math"

	"alphatrawler/internal/config"
	"alphatrawler/internal/model"
)

// minADFObs matches the original dashboard: below this the test returns
// "not stationary" (p = 1) instead of an unstable fit.
const minADFObs = 30

// Augmented Dickey-Fuller unit-root test with a constant term:
//
//	Δy_t = c + γ·y_{t−1} + Σ_{j=1..k} b_j·Δy_{t−j} + e_t
//
// The reported statistic is the t-ratio on γ; under the unit-root null it
// follows the Dickey-Fuller tau distribution, so the p-value is read off the
// tau quantiles for the constant case rather than a normal table. Lag order k
// is either fixed by configuration or picked by AIC over a common sample
// (Schwert's rule bounds the search). This is O(window·k²) and runs on
// demand, never in the per-bar hot path.
func ADF(series []float64, p config.Params) model.ADFResult {
	n := len(series)
	if n < minADFObs {
		return model.ADFResult{PValue: 1}
	}

	lag := p.ADFLag
	if lag == config.ADFLagAuto {
		lag = selectLagByAIC(series)
	}
	if n-lag-1 < lag+7 {
		return model.ADFResult{PValue: 1}
	}

	tstat, _, nobs, ok := adfRegression(series, lag, lag+1)
	if !ok {
		return model.ADFResult{PValue: 1, Lag: lag}
	}

	pval := mackinnonP(tstat)
	return model.ADFResult{
		Statistic:     tstat,
		PValue:        pval,
		Lag:           lag,
		NObs:          nobs,
		MeanReverting: pval < p.ADFSignificance,
	}
}

// selectLagByAIC scores every lag 0..maxlag on the same trailing sample so
// the information criteria are comparable, and keeps the argmin.
func selectLagByAIC(y []float64) int {
	n := len(y)
	maxlag := int(math.Ceil(12.0 * math.Pow(float64(n)/100.0, 0.25)))
	for maxlag > 0 && n-maxlag-1 < maxlag+9 {
		maxlag--
	}

	best, bestAIC := 0, math.Inf(1)
	for k := 0; k <= maxlag; k++ {
		_, ssr, nobs, ok := adfRegression(y, k, maxlag+1)
		if !ok || ssr <= 0 {
			continue
		}
		aic := float64(nobs)*math.Log(ssr/float64(nobs)) + 2*float64(k+2)
		if aic < bestAIC {
			best, bestAIC = k, aic
		}
	}
	return best
}

// adfRegression runs the ADF regression with k lagged differences over
// observations start..n−1 (start must be ≥ k+1) and returns the t-statistic
// on the level coefficient plus the residual sum of squares.
func adfRegression(y []float64, k, start int) (tstat, ssr float64, nobs int, ok bool) {
	n := len(y)
	m := k + 2 // constant, level, k difference lags
	nobs = n - start
	if nobs <= m {
		return 0, 0, 0, false
	}

	row := make([]float64, m)
	xtx := make([][]float64, m)
	for i := range xtx {
		xtx[i] = make([]float64, m)
	}
	xty := make([]float64, m)

	fill := func(t int) float64 {
		row[0] = 1
		row[1] = y[t-1]
		for j := 1; j <= k; j++ {
			row[1+j] = y[t-j] - y[t-j-1]
		}
		return y[t] - y[t-1]
	}

	for t := start; t < n; t++ {
		dy := fill(t)
		for i := 0; i < m; i++ {
			for j := i; j < m; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * dy
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	inv, ok := invert(xtx)
	if !ok {
		return 0, 0, 0, false
	}

	beta := make([]float64, m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			beta[i] += inv[i][j] * xty[j]
		}
	}

	for t := start; t < n; t++ {
		dy := fill(t)
		fitted := 0.0
		for i := 0; i < m; i++ {
			fitted += beta[i] * row[i]
		}
		r := dy - fitted
		ssr += r * r
	}

	sigma2 := ssr / float64(nobs-m)
	se := math.Sqrt(sigma2 * inv[1][1])
	if se <= 0 || math.IsNaN(se) {
		return 0, 0, 0, false
	}
	return beta[1] / se, ssr, nobs, true
}

// invert does Gauss-Jordan elimination with partial pivoting. The matrices
// here are tiny (lag order + 2), so nothing fancier is warranted.
func invert(a [][]float64) ([][]float64, bool) {
	m := len(a)
	aug := make([][]float64, m)
	for i := range aug {
		aug[i] = make([]float64, 2*m)
		copy(aug[i], a[i])
		aug[i][m+i] = 1
	}

	for col := 0; col < m; col++ {
		pivot := col
		for r := col + 1; r < m; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, false
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		for j := 0; j < 2*m; j++ {
			aug[col][j] /= pv
		}
		for r := 0; r < m; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 2*m; j++ {
				aug[r][j] -= f * aug[col][j]
			}
		}
	}

	inv := make([][]float64, m)
	for i := range inv {
		inv[i] = aug[i][m:]
	}
	return inv, true
}

// Asymptotic quantiles of the Dickey-Fuller tau distribution, constant case.
// P-values between anchors are linearly interpolated; beyond the tails they
// clamp, which is all the mean-reversion classification needs.
var tauQuantiles = []struct {
	stat float64
	p    float64
}{
	{-3.43, 0.010},
	{-3.12, 0.025},
	{-2.86, 0.050},
	{-2.57, 0.100},
	{-1.57, 0.500},
	{-0.44, 0.900},
	{-0.07, 0.950},
	{0.23, 0.975},
	{0.60, 0.990},
}

func mackinnonP(stat float64) float64 {
	if stat <= tauQuantiles[0].stat {
		return 0.001
	}
	last := tauQuantiles[len(tauQuantiles)-1]
	if stat >= last.stat {
		return 0.999
	}
	for i := 1; i < len(tauQuantiles); i++ {
		lo, hi := tauQuantiles[i-1], tauQuantiles[i]
		if stat <= hi.stat {
			frac := (stat - lo.stat) / (hi.stat - lo.stat)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	return last.p
}
