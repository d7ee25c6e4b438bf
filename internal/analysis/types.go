package analysis

import "errors"

// Caller input errors. Insufficient data and degenerate fits are reported
// through Status, Verdict and FitFallback values instead.
var (
	ErrMalformedSeries      = errors.New("malformed series")
	ErrInvalidScales        = errors.New("invalid DFA scale range")
	ErrInvalidWindow        = errors.New("invalid sliding window")
	ErrTooFewSamples        = errors.New("at least 2 MMP samples are required")
	ErrInvalidSample        = errors.New("invalid MMP sample")
	ErrInvalidCriticalPower = errors.New("critical power must be positive")
	ErrInvalidWPrime        = errors.New("W' must not be negative")
)

// Alpha1 thresholds
const (
	AerobicThreshold   = 0.75 // alpha1 at VT1
	UncorrelatedAlpha1 = 0.5  // white-noise variability
)

// Status is the outcome of a single DFA computation
type Status int

const (
	StatusValid Status = iota
	StatusInsufficientData
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInsufficientData:
		return "insufficient_data"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ConfidenceTier grades a fit by its R²
type ConfidenceTier int

const (
	TierNone ConfidenceTier = iota
	TierLow
	TierMedium
	TierHigh
)

func (c ConfidenceTier) String() string {
	switch c {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return "none"
	}
}

// TierFor maps a fit quality (R²) to a confidence tier
func TierFor(fitQuality float64) ConfidenceTier {
	switch {
	case fitQuality > 0.95:
		return TierHigh
	case fitQuality > 0.85:
		return TierMedium
	default:
		return TierLow
	}
}

// Classification places an alpha1 value relative to VT1
type Classification int

const (
	BelowVT1 Classification = iota
	AtVT1
	AboveVT1
)

func (c Classification) String() string {
	switch c {
	case BelowVT1:
		return "BELOW_VT1"
	case AtVT1:
		return "AT_VT1"
	case AboveVT1:
		return "ABOVE_VT1"
	default:
		return "UNKNOWN"
	}
}

// Classify maps alpha1 to its intensity domain.
// > 0.75 below VT1, 0.5..0.75 at VT1, < 0.5 above VT1.
func Classify(alpha1 float64) Classification {
	switch {
	case alpha1 > AerobicThreshold:
		return BelowVT1
	case alpha1 >= UncorrelatedAlpha1:
		return AtVT1
	default:
		return AboveVT1
	}
}
