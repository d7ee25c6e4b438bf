package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// MinBeatsForDFA is the smallest clean window alpha1 is defined for
	MinBeatsForDFA = 60

	DefaultScaleMin = 4
	DefaultScaleMax = 16

	numScales      = 10
	minScalePoints = 3
	minBoxes       = 4
)

// DFAOptions bounds the box sizes used for the short-range exponent
type DFAOptions struct {
	ScaleMin int // beats
	ScaleMax int // beats
}

// DefaultDFAOptions returns the 4..16 beat alpha1 range
func DefaultDFAOptions() DFAOptions {
	return DFAOptions{ScaleMin: DefaultScaleMin, ScaleMax: DefaultScaleMax}
}

// Validate rejects box ranges that cannot produce a log-log slope
func (o DFAOptions) Validate() error {
	if o.ScaleMin < 2 || o.ScaleMax <= o.ScaleMin {
		return fmt.Errorf("scale range [%d, %d]: %w", o.ScaleMin, o.ScaleMax, ErrInvalidScales)
	}
	return nil
}

// ScalePoint is the RMS fluctuation measured at one box size
type ScalePoint struct {
	BoxSize     int
	Fluctuation float64
}

// DFAResult is alpha1 for one window of intervals.
// Alpha1, FitQuality and StdErr are only meaningful when Status is StatusValid.
type DFAResult struct {
	Alpha1     float64
	FitQuality float64 // R² of the log-log regression
	StdErr     float64 // standard error of the slope
	Tier       ConfidenceTier
	Status     Status
	Samples    int
	Scales     []ScalePoint
}

// Valid reports whether alpha1 is defined
func (r DFAResult) Valid() bool {
	return r.Status == StatusValid
}

// ComputeAlpha1 runs detrended fluctuation analysis on one window of RR intervals (ms)
// and returns the short-range scaling exponent with its fit quality.
func ComputeAlpha1(rr []float64, opts DFAOptions) (DFAResult, error) {
	if err := opts.Validate(); err != nil {
		return DFAResult{}, err
	}

	result := DFAResult{Samples: len(rr), Status: StatusInsufficientData}
	if len(rr) < MinBeatsForDFA || len(rr) < 2*opts.ScaleMax {
		return result, nil
	}

	clean := FilterArtifacts(rr)
	if isConstant(clean) {
		result.Status = StatusInvalid
		return result, nil
	}
	y := integrate(clean)

	boxes := boxSizes(opts.ScaleMin, opts.ScaleMax, len(y))
	if len(boxes) < minScalePoints {
		return result, nil
	}

	logS := make([]float64, len(boxes))
	logF := make([]float64, len(boxes))
	result.Scales = make([]ScalePoint, len(boxes))
	for i, s := range boxes {
		f := fluctuation(y, s)
		result.Scales[i] = ScalePoint{BoxSize: s, Fluctuation: f}
		if f == 0 || math.IsNaN(f) {
			// Zero variance inside every box: the log-log plot does not exist
			result.Status = StatusInvalid
			return result, nil
		}
		logS[i] = math.Log10(float64(s))
		logF[i] = math.Log10(f)
	}

	intercept, slope := stat.LinearRegression(logS, logF, nil, false)
	r2 := stat.RSquared(logS, logF, nil, intercept, slope)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(r2) {
		result.Status = StatusInvalid
		return result, nil
	}

	result.Alpha1 = slope
	result.FitQuality = r2
	result.StdErr = slopeStdErr(logS, logF, intercept, slope)
	result.Tier = TierFor(r2)
	result.Status = StatusValid
	return result, nil
}

// integrate subtracts the mean and returns the running cumulative sum
func integrate(x []float64) []float64 {
	mean := stat.Mean(x, nil)
	y := make([]float64, len(x))
	var sum float64
	for i, v := range x {
		sum += v - mean
		y[i] = sum
	}
	return y
}

// boxSizes returns up to numScales log-spaced integer box sizes between lo and hi,
// deduplicated and limited to sizes that fit at least minBoxes times into n.
func boxSizes(lo, hi, n int) []int {
	logLo := math.Log10(float64(lo))
	logHi := math.Log10(float64(hi))

	var sizes []int
	last := 0
	for i := 0; i < numScales; i++ {
		v := math.Pow(10, logLo+(logHi-logLo)*float64(i)/float64(numScales-1))
		s := int(math.Floor(v + 1e-9))
		if s == last {
			continue
		}
		last = s
		if s <= n/minBoxes {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

// fluctuation computes F(s): the RMS of residuals after a linear fit inside each
// non-overlapping box of length s. The trailing remainder is discarded.
func fluctuation(y []float64, s int) float64 {
	numBoxes := len(y) / s
	x := make([]float64, s)
	for i := range x {
		x[i] = float64(i)
	}

	var sumSq float64
	for b := 0; b < numBoxes; b++ {
		box := y[b*s : (b+1)*s]
		intercept, slope := stat.LinearRegression(x, box, nil, false)
		for i, v := range box {
			r := v - (intercept + slope*x[i])
			sumSq += r * r
		}
	}
	return math.Sqrt(sumSq / float64(numBoxes*s))
}

func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

func slopeStdErr(x, y []float64, intercept, slope float64) float64 {
	if len(x) < 3 {
		return 0
	}
	mean := stat.Mean(x, nil)
	var ssRes, sxx float64
	for i := range x {
		r := y[i] - (intercept + slope*x[i])
		ssRes += r * r
		sxx += (x[i] - mean) * (x[i] - mean)
	}
	if sxx == 0 {
		return 0
	}
	return math.Sqrt(ssRes / float64(len(x)-2) / sxx)
}
