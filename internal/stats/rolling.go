package stats

import (
	"math"
	"strconv"
)

// Value is a float that may be undefined (window not filled, degenerate input).
// Downstream stages check Valid instead of testing for NaN.
type Value struct {
	Float float64 `json:"value"`
	Valid bool    `json:"valid"`
}

func Defined(f float64) Value { return Value{Float: f, Valid: true} }

var Undefined = Value{}

// MarshalJSON renders an undefined Value as null so exported tables keep gaps
// visible instead of carrying zeros.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(formatFloat(v.Float)), nil
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Welford accumulates mean and variance over an expanding window using
// Welford's update, which stays stable where naive sum-of-squares cancels.
type Welford struct {
	n    int
	mean float64
	m2   float64
}

func (w *Welford) Push(x float64) {
	w.n++
	d := x - w.mean
	w.mean += d / float64(w.n)
	w.m2 += d * (x - w.mean)
}

func (w *Welford) Count() int { return w.n }

func (w *Welford) Mean() Value {
	if w.n == 0 {
		return Undefined
	}
	return Defined(w.mean)
}

// Variance is the sample variance; it needs at least two observations.
func (w *Welford) Variance() Value {
	if w.n < 2 {
		return Undefined
	}
	return Defined(w.m2 / float64(w.n-1))
}

// Rolling keeps mean and variance over a fixed trailing window. Adding the new
// sample and removing the oldest are both single Welford-style updates, so a
// full pass over n samples is O(n) regardless of window size.
type Rolling struct {
	window int
	buf    []float64
	head   int
	n      int
	mean   float64
	m2     float64
}

func NewRolling(window int) *Rolling {
	return &Rolling{window: window, buf: make([]float64, window)}
}

func (r *Rolling) Push(x float64) {
	if r.n == r.window {
		r.remove(r.buf[r.head])
	}
	r.buf[r.head] = x
	r.head = (r.head + 1) % r.window
	r.add(x)
}

func (r *Rolling) add(x float64) {
	r.n++
	d := x - r.mean
	r.mean += d / float64(r.n)
	r.m2 += d * (x - r.mean)
}

func (r *Rolling) remove(x float64) {
	if r.n == 1 {
		r.n, r.mean, r.m2 = 0, 0, 0
		return
	}
	d := x - r.mean
	r.n--
	r.mean -= d / float64(r.n)
	r.m2 -= d * (x - r.mean)
	if r.m2 < 0 {
		// floating-point residue after many slide operations
		r.m2 = 0
	}
}

// Reset empties the window. Used when an undefined input interrupts the stream:
// a window must only ever span consecutive defined samples.
func (r *Rolling) Reset() {
	r.n, r.head, r.mean, r.m2 = 0, 0, 0, 0
}

func (r *Rolling) Full() bool  { return r.n == r.window }
func (r *Rolling) Count() int  { return r.n }
func (r *Rolling) Window() int { return r.window }

func (r *Rolling) Mean() Value {
	if !r.Full() {
		return Undefined
	}
	return Defined(r.mean)
}

// Variance is the sample variance of the current window.
func (r *Rolling) Variance() Value {
	if !r.Full() || r.n < 2 {
		return Undefined
	}
	return Defined(r.m2 / float64(r.n-1))
}

// PopVariance treats the window itself as the population. Z-score
// normalization divides by this, matching the convention that the window is
// the distribution the current sample is measured against.
func (r *Rolling) PopVariance() Value {
	if !r.Full() {
		return Undefined
	}
	return Defined(r.m2 / float64(r.n))
}

// RollingPair tracks two aligned series over one trailing window: means,
// centered second moments and the co-moment, everything rolling OLS needs.
type RollingPair struct {
	window int
	bufX   []float64
	bufY   []float64
	head   int
	n      int
	meanX  float64
	meanY  float64
	m2x    float64
	m2y    float64
	cxy    float64
	sumXX  float64 // raw moments for the no-intercept fit
	sumXY  float64
	sumYY  float64
}

func NewRollingPair(window int) *RollingPair {
	return &RollingPair{
		window: window,
		bufX:   make([]float64, window),
		bufY:   make([]float64, window),
	}
}

func (r *RollingPair) Push(x, y float64) {
	if r.n == r.window {
		r.remove(r.bufX[r.head], r.bufY[r.head])
	}
	r.bufX[r.head] = x
	r.bufY[r.head] = y
	r.head = (r.head + 1) % r.window
	r.add(x, y)
}

func (r *RollingPair) add(x, y float64) {
	r.n++
	dx := x - r.meanX
	r.meanX += dx / float64(r.n)
	r.m2x += dx * (x - r.meanX)
	dy := y - r.meanY
	r.meanY += dy / float64(r.n)
	r.m2y += dy * (y - r.meanY)
	r.cxy += dx * (y - r.meanY)
	r.sumXX += x * x
	r.sumXY += x * y
	r.sumYY += y * y
}

func (r *RollingPair) remove(x, y float64) {
	if r.n == 1 {
		r.Reset()
		return
	}
	dx := x - r.meanX
	dy := y - r.meanY
	r.n--
	r.meanX -= dx / float64(r.n)
	r.meanY -= dy / float64(r.n)
	r.m2x -= dx * (x - r.meanX)
	r.m2y -= dy * (y - r.meanY)
	r.cxy -= dx * (y - r.meanY)
	if r.m2x < 0 {
		r.m2x = 0
	}
	if r.m2y < 0 {
		r.m2y = 0
	}
	r.sumXX -= x * x
	r.sumXY -= x * y
	r.sumYY -= y * y
}

func (r *RollingPair) Reset() {
	r.n, r.head = 0, 0
	r.meanX, r.meanY = 0, 0
	r.m2x, r.m2y, r.cxy = 0, 0, 0
	r.sumXX, r.sumXY, r.sumYY = 0, 0, 0
}

func (r *RollingPair) Full() bool { return r.n == r.window }
func (r *RollingPair) Count() int { return r.n }

func (r *RollingPair) MeanX() float64 { return r.meanX }
func (r *RollingPair) MeanY() float64 { return r.meanY }
func (r *RollingPair) M2X() float64   { return r.m2x }
func (r *RollingPair) M2Y() float64   { return r.m2y }
func (r *RollingPair) CXY() float64   { return r.cxy }
func (r *RollingPair) SumXX() float64 { return r.sumXX }
func (r *RollingPair) SumXY() float64 { return r.sumXY }
func (r *RollingPair) SumYY() float64 { return r.sumYY }
