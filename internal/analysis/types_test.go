package analysis

import "testing"

func TestTierFor(t *testing.T) {
	tests := []struct {
		fitQuality float64
		want       ConfidenceTier
	}{
		{0.99, TierHigh},
		{0.951, TierHigh},
		{0.95, TierMedium},
		{0.90, TierMedium},
		{0.85, TierLow},
		{0.50, TierLow},
		{0, TierLow},
	}
	for _, tt := range tests {
		if got := TierFor(tt.fitQuality); got != tt.want {
			t.Errorf("TierFor(%v) = %v, want %v", tt.fitQuality, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		alpha1 float64
		want   Classification
	}{
		{1.2, BelowVT1},
		{0.76, BelowVT1},
		{0.75, AtVT1},
		{0.6, AtVT1},
		{0.5, AtVT1},
		{0.49, AboveVT1},
		{0.2, AboveVT1},
	}
	for _, tt := range tests {
		if got := Classify(tt.alpha1); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.alpha1, got, tt.want)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{StatusValid.String(), "valid"},
		{StatusInsufficientData.String(), "insufficient_data"},
		{StatusInvalid.String(), "invalid"},
		{TierHigh.String(), "high"},
		{TierNone.String(), "none"},
		{BelowVT1.String(), "BELOW_VT1"},
		{VerdictNoCrossing.String(), "no_crossing"},
		{ModelHyperbolic3Point.String(), "hyperbolic_3pt"},
		{FallbackBoundViolation.String(), "bound_violation"},
		{CPSourceEstimated.String(), "estimated"},
		{CPSourceHistory.String(), "history"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
