package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"
)

// Hyperbolic fit bounds
const (
	MinFitWPrime      = 5000.0  // joules
	MaxFitWPrime      = 50000.0 // joules
	cpLowerFraction   = 0.5     // of the lowest sample power
	cpUpperFraction   = 0.95    // of the longest-duration power
	maxFitIterations  = 1000
	maxFitEvaluations = 5000
)

// MMPSample is one point on a power-duration curve
type MMPSample struct {
	Duration int     // seconds
	Power    float64 // watts
}

// ModelKind identifies which critical power model produced a CPModel
type ModelKind int

const (
	ModelLinear2Point ModelKind = iota
	ModelHyperbolic3Point
)

func (k ModelKind) String() string {
	switch k {
	case ModelLinear2Point:
		return "linear_2pt"
	case ModelHyperbolic3Point:
		return "hyperbolic_3pt"
	default:
		return "unknown"
	}
}

// FitFallback records why the estimator did not return the model it was asked for,
// or why the 2-point model was adjusted.
type FitFallback int

const (
	FallbackNone FitFallback = iota
	FallbackNegativeWPrime
	FallbackTooFewSamples
	FallbackNotConverged
	FallbackBoundViolation
)

func (f FitFallback) String() string {
	switch f {
	case FallbackNone:
		return "none"
	case FallbackNegativeWPrime:
		return "negative_w_prime"
	case FallbackTooFewSamples:
		return "too_few_samples"
	case FallbackNotConverged:
		return "not_converged"
	case FallbackBoundViolation:
		return "bound_violation"
	default:
		return "unknown"
	}
}

// CPModel is the critical power and anaerobic work capacity of an athlete
type CPModel struct {
	CriticalPower float64 // watts
	WPrime        float64 // joules
	Kind          ModelKind
	FitQuality    float64 // R² over all samples, clamped to [0, 1]
	Tier          ConfidenceTier
	Fallback      FitFallback
	// Linear2Point carries the 2-point clamp reason when a 3-point fit fell back
	Linear2Point FitFallback
	Iterations   int
}

// SamplesFromMap converts a duration→power map into sorted samples
func SamplesFromMap(m map[int]float64) []MMPSample {
	samples := make([]MMPSample, 0, len(m))
	for d, p := range m {
		samples = append(samples, MMPSample{Duration: d, Power: p})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Duration < samples[j].Duration })
	return samples
}

// EstimateCP fits critical power and W' to maximal mean power samples.
// With use3Point and at least three samples it fits P(t) = CP + W'/t by nonlinear least
// squares, falling back to the 2-point linear model when the fit fails.
func EstimateCP(samples []MMPSample, use3Point bool) (CPModel, error) {
	sorted, err := validateSamples(samples)
	if err != nil {
		return CPModel{}, err
	}

	linear := linearModel(sorted)
	if !use3Point {
		return linear, nil
	}
	if len(sorted) < 3 {
		return withFallback(linear, FallbackTooFewSamples), nil
	}

	hyper, reason := hyperbolicModel(sorted, linear)
	if reason != FallbackNone {
		return withFallback(linear, reason), nil
	}
	return hyper, nil
}

func validateSamples(samples []MMPSample) ([]MMPSample, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("got %d: %w", len(samples), ErrTooFewSamples)
	}

	sorted := make([]MMPSample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Duration < sorted[j].Duration })

	for i, s := range sorted {
		if s.Duration <= 0 || s.Power <= 0 || math.IsNaN(s.Power) || math.IsInf(s.Power, 0) {
			return nil, fmt.Errorf("%ds at %vW: %w", s.Duration, s.Power, ErrInvalidSample)
		}
		if i > 0 && sorted[i-1].Duration == s.Duration {
			return nil, fmt.Errorf("duplicate duration %ds: %w", s.Duration, ErrInvalidSample)
		}
	}
	return sorted, nil
}

// linearModel applies the work-time model to the two longest durations
func linearModel(sorted []MMPSample) CPModel {
	a, b := sorted[len(sorted)-2], sorted[len(sorted)-1]
	t1, t2 := float64(a.Duration), float64(b.Duration)
	work1, work2 := a.Power*t1, b.Power*t2

	cp := (work2 - work1) / (t2 - t1)
	wPrime := work1 - cp*t1

	model := CPModel{Kind: ModelLinear2Point}
	if wPrime < 0 || cp < 0 {
		// Inconsistent curve: use the longest effort as the sustainable power
		cp, wPrime = b.Power, 0
		model.Fallback = FallbackNegativeWPrime
	}

	model.CriticalPower = cp
	model.WPrime = wPrime
	model.FitQuality = hyperbolicR2(sorted, cp, wPrime)
	model.Tier = TierFor(model.FitQuality)
	return model
}

func withFallback(linear CPModel, reason FitFallback) CPModel {
	linear.Linear2Point = linear.Fallback
	linear.Fallback = reason
	return linear
}

// hyperbolicModel minimises the squared power residuals of P(t) = CP + W'/t, seeded from
// the linear estimate. Parameters are scaled by the seed so the simplex moves both
// dimensions at a comparable rate.
func hyperbolicModel(sorted []MMPSample, seed CPModel) (CPModel, FitFallback) {
	minPower := sorted[0].Power
	for _, s := range sorted {
		minPower = math.Min(minPower, s.Power)
	}
	longest := sorted[len(sorted)-1].Power

	cpLo, cpHi := cpLowerFraction*minPower, cpUpperFraction*longest
	if cpLo > cpHi {
		return CPModel{}, FallbackBoundViolation
	}

	cp0 := clamp(seed.CriticalPower, cpLo, cpHi)
	w0 := clamp(seed.WPrime, MinFitWPrime, MaxFitWPrime)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			cp, w := x[0]*cp0, x[1]*w0
			var sse float64
			for _, s := range sorted {
				r := s.Power - (cp + w/float64(s.Duration))
				sse += r * r
			}
			return sse
		},
	}
	settings := &optimize.Settings{
		MajorIterations: maxFitIterations,
		FuncEvaluations: maxFitEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Relative:   1e-9,
			Iterations: 20,
		},
	}

	res, err := optimize.Minimize(problem, []float64{1, 1}, settings, &optimize.NelderMead{})
	if err != nil || res == nil || !converged(res.Status) {
		return CPModel{}, FallbackNotConverged
	}

	cp, w := res.X[0]*cp0, res.X[1]*w0
	if math.IsNaN(cp) || math.IsNaN(w) {
		return CPModel{}, FallbackNotConverged
	}
	if cp < cpLo || cp > cpHi || w < MinFitWPrime || w > MaxFitWPrime {
		return CPModel{}, FallbackBoundViolation
	}

	r2 := hyperbolicR2(sorted, cp, w)
	return CPModel{
		CriticalPower: cp,
		WPrime:        w,
		Kind:          ModelHyperbolic3Point,
		FitQuality:    r2,
		Tier:          TierFor(r2),
		Iterations:    res.Stats.MajorIterations,
	}, FallbackNone
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit, optimize.Failure:
		return false
	default:
		return true
	}
}

// hyperbolicR2 is the coefficient of determination of P(t) = CP + W'/t over the samples
func hyperbolicR2(samples []MMPSample, cp, wPrime float64) float64 {
	var mean float64
	for _, s := range samples {
		mean += s.Power
	}
	mean /= float64(len(samples))

	var ssRes, ssTot float64
	for _, s := range samples {
		r := s.Power - (cp + wPrime/float64(s.Duration))
		ssRes += r * r
		ssTot += (s.Power - mean) * (s.Power - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return clamp(1-ssRes/ssTot, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
