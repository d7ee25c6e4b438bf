package analysis

import (
	"errors"
	"fmt"
)

// CPSource says where the capacity used for W' balance came from
type CPSource int

const (
	CPSourceNone CPSource = iota
	CPSourceConfigured
	CPSourceEstimated
	CPSourceHistory
)

func (s CPSource) String() string {
	switch s {
	case CPSourceConfigured:
		return "configured"
	case CPSourceEstimated:
		return "estimated"
	case CPSourceHistory:
		return "history"
	default:
		return "none"
	}
}

// ActivityInput is the raw data of one activity
type ActivityInput struct {
	Beats []Beat    // may be empty when no HRV was recorded
	Power []float64 // 1 Hz, may be empty
}

// ComputeOptions configures a full activity analysis
type ComputeOptions struct {
	Timeline     TimelineOptions
	Use3Point    bool
	MMPDurations []int
	// Configured capacity; CriticalPower 0 means estimate it from the activity
	CriticalPower float64
	WPrime        float64
}

// DefaultComputeOptions returns the default timeline, durations and the 3-point fit
func DefaultComputeOptions() ComputeOptions {
	return ComputeOptions{
		Timeline:     DefaultTimelineOptions(),
		Use3Point:    true,
		MMPDurations: MMPDurations,
	}
}

// ActivityAnalysis collects every derived signal for one activity
type ActivityAnalysis struct {
	VT1            *VT1Estimate
	MMP            []MMPSample
	CP             *CPModel
	CPSource       CPSource
	Balance        []float64
	BalanceSummary *BalanceSummary
	Notes          []string
}

// AnalyzeActivity runs threshold detection on the beats and the capacity model on the
// power series. Missing inputs leave the matching results nil and add a note.
func AnalyzeActivity(in ActivityInput, opts ComputeOptions) (ActivityAnalysis, error) {
	var out ActivityAnalysis

	if len(in.Beats) > 0 {
		est, err := DetectVT1(in.Beats, in.Power, opts.Timeline)
		if err != nil {
			return out, fmt.Errorf("detecting VT1: %w", err)
		}
		out.VT1 = &est
	} else {
		out.Notes = append(out.Notes, "no beat intervals recorded")
	}

	if len(in.Power) == 0 {
		out.Notes = append(out.Notes, "no power recorded")
		return out, nil
	}

	out.MMP = MaximalMeanPower(in.Power, opts.MMPDurations)

	cp, wPrime := opts.CriticalPower, opts.WPrime
	if cp > 0 {
		out.CPSource = CPSourceConfigured
	} else {
		model, err := EstimateCP(out.MMP, opts.Use3Point)
		if errors.Is(err, ErrTooFewSamples) {
			out.Notes = append(out.Notes, fmt.Sprintf("only %d MMP durations covered; CP not estimated", len(out.MMP)))
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("estimating CP: %w", err)
		}
		out.CP = &model
		out.CPSource = CPSourceEstimated
		cp, wPrime = model.CriticalPower, model.WPrime
	}

	if cp <= 0 {
		out.Notes = append(out.Notes, "critical power is zero; W' balance skipped")
		return out, nil
	}

	if err := out.ApplyCapacity(in.Power, cp, wPrime, out.CPSource); err != nil {
		return out, err
	}
	return out, nil
}

// ApplyCapacity integrates W' balance over power with a capacity from source,
// replacing any balance already present.
func (a *ActivityAnalysis) ApplyCapacity(power []float64, cp, wPrime float64, source CPSource) error {
	balance, err := WBalance(power, cp, wPrime)
	if err != nil {
		return fmt.Errorf("integrating W' balance: %w", err)
	}
	summary := SummarizeBalance(balance, cp, wPrime)
	a.Balance = balance
	a.BalanceSummary = &summary
	a.CPSource = source
	return nil
}

// Alpha1Assessment returns a human-readable reading of an alpha1 value
func Alpha1Assessment(alpha1 float64) string {
	switch Classify(alpha1) {
	case BelowVT1:
		return "Aerobic - well below the ventilatory threshold"
	case AtVT1:
		return "Transition - near or at the ventilatory threshold"
	default:
		return "Above VT1 - mixed aerobic/anaerobic metabolism"
	}
}

// BalanceAssessment describes how deep into W' an activity went
func BalanceAssessment(minBalance, wPrime float64) string {
	if wPrime <= 0 {
		return "No anaerobic capacity modelled"
	}
	used := 1 - minBalance/wPrime
	switch {
	case used >= 0.95:
		return "Fully depleted"
	case used >= 0.75:
		return "Deep anaerobic work"
	case used >= 0.50:
		return "Substantial anaerobic work"
	case used >= 0.25:
		return "Moderate anaerobic work"
	default:
		return "Mostly below critical power"
	}
}
