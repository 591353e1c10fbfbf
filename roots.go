// roots.go: scalar root finding for f(x) ~= 0.
//
// With explicit limits the solver demands a sign change (or a near-zero end
// point) and bisects. Without limits it runs Newton iteration with a numeric
// derivative from a few starting points, then falls back to an expanding
// probe ladder scanned for a sign change. All paths are capped by a hard
// evaluation budget; the caps are a non-termination guard, not tunables.
//
// The function f must map internal evaluation failures to NaN rather than
// panicking, so the solver can step around undefined regions of the domain.
// Only one root is ever returned even if several exist.
package mathpad

import (
	"errors"
	"math"
)

var (
	// ErrNoRoot means no sign change could be found.
	ErrNoRoot = errors.New("no root found")
	// ErrNoConvergence means a bracket or iteration failed to settle.
	ErrNoConvergence = errors.New("root finding did not converge")
)

const (
	rootRelTol = 1e-10
	// Brackets are narrowed well past rootRelTol so that steep equations
	// still balance under the final consistency check.
	rootWidthTol   = 1e-14
	maxBisect      = 200
	maxNewton      = 60
	rootEvalBudget = 500
)

// Limits restricts the search to [Low, High].
type Limits struct {
	Low  float64
	High float64
}

// FindRoot returns an x with f(x) ~= 0. When limits is non-nil, the search is
// confined to the given interval.
func FindRoot(f func(float64) float64, limits *Limits) (float64, error) {
	if limits != nil {
		return bisectLimits(f, limits.Low, limits.High)
	}

	budget := rootEvalBudget
	g := func(x float64) float64 {
		if budget <= 0 {
			return math.NaN()
		}
		budget--
		return f(x)
	}

	for _, x0 := range []float64{1, 0, -1, 10, -10} {
		if x, ok := newton(g, x0); ok {
			return x, nil
		}
		if budget <= 0 {
			return 0, ErrNoConvergence
		}
	}
	return ladderScan(g)
}

func nearZero(fx, x float64) bool {
	return math.Abs(fx) <= rootRelTol*math.Max(1, math.Abs(x))
}

func bisectLimits(f func(float64) float64, lo, hi float64) (float64, error) {
	if lo > hi {
		lo, hi = hi, lo
	}
	fa, fb := f(lo), f(hi)
	if nearZero(fa, lo) {
		return lo, nil
	}
	if nearZero(fb, hi) {
		return hi, nil
	}
	if math.IsNaN(fa) || math.IsNaN(fb) || fa*fb > 0 {
		// Look for an interior sign change before giving up; the end points
		// may sit in an undefined region.
		const probes = 32
		step := (hi - lo) / probes
		x, fx := lo, fa
		found := false
		for i := 1; i <= probes; i++ {
			x2 := lo + float64(i)*step
			f2 := f(x2)
			if nearZero(f2, x2) {
				return x2, nil
			}
			if !math.IsNaN(fx) && !math.IsNaN(f2) && fx*f2 < 0 {
				lo, hi, fa = x, x2, fx
				found = true
				break
			}
			x, fx = x2, f2
		}
		if !found {
			return 0, ErrNoRoot
		}
	}
	return bisect(f, lo, hi, fa)
}

// bisect narrows a bracketing interval; fa is f(lo) and must oppose f(hi).
func bisect(f func(float64) float64, lo, hi, fa float64) (float64, error) {
	for i := 0; i < maxBisect; i++ {
		mid := lo + (hi-lo)/2
		fm := f(mid)
		if nearZero(fm, mid) || hi-lo <= rootWidthTol*math.Max(1, math.Abs(mid)) {
			return mid, nil
		}
		if math.IsNaN(fm) {
			// Nudge off the undefined point.
			mid = lo + (hi-lo)*0.4921
			fm = f(mid)
			if math.IsNaN(fm) {
				return 0, ErrNoConvergence
			}
		}
		if fa*fm < 0 {
			hi = mid
		} else {
			lo, fa = mid, fm
		}
	}
	return 0, ErrNoConvergence
}

// newton runs damped Newton iteration with a central numeric derivative.
func newton(f func(float64) float64, x float64) (float64, bool) {
	fx := f(x)
	if math.IsNaN(fx) {
		return 0, false
	}
	for i := 0; i < maxNewton; i++ {
		if nearZero(fx, x) {
			return x, true
		}
		h := 1e-6 * math.Max(1, math.Abs(x))
		d := (f(x+h) - f(x-h)) / (2 * h)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, false
		}
		step := fx / d
		next := x - step
		fn := f(next)
		// Halve the step while it makes things worse or undefined.
		for halved := 0; (math.IsNaN(fn) || math.Abs(fn) > math.Abs(fx)) && halved < 8; halved++ {
			step /= 2
			next = x - step
			fn = f(next)
		}
		if math.IsNaN(fn) {
			return 0, false
		}
		if math.Abs(next-x) <= rootRelTol*math.Max(1, math.Abs(next)) && nearZero(fn, next) {
			return next, true
		}
		x, fx = next, fn
	}
	return x, nearZero(fx, x)
}

// ladderScan probes a fixed symmetric ladder of points for a sign change and
// bisects the first bracket it finds.
func ladderScan(f func(float64) float64) (float64, error) {
	mags := []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 1e3, 1e4, 1e5, 1e6}
	probes := make([]float64, 0, 2*len(mags)+1)
	for i := len(mags) - 1; i >= 0; i-- {
		probes = append(probes, -mags[i])
	}
	probes = append(probes, 0)
	probes = append(probes, mags...)

	prevX := math.NaN()
	prevF := math.NaN()
	for _, x := range probes {
		fx := f(x)
		if math.IsNaN(fx) {
			continue
		}
		if nearZero(fx, x) {
			return x, nil
		}
		if !math.IsNaN(prevF) && prevF*fx < 0 {
			return bisect(f, prevX, x, prevF)
		}
		prevX, prevF = x, fx
	}
	return 0, ErrNoRoot
}
