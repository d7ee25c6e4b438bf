package service

import (
	"threshold/internal/analysis"
	"threshold/internal/config"
	"threshold/internal/store"
)

// ComputeOptions maps the analysis and athlete config onto engine options
func ComputeOptions(cfg *config.Config) analysis.ComputeOptions {
	opts := analysis.DefaultComputeOptions()
	if cfg == nil {
		return opts
	}

	a := cfg.Analysis
	if a.WindowSeconds > 0 {
		opts.Timeline.WindowSeconds = a.WindowSeconds
	}
	if a.StepSeconds > 0 {
		opts.Timeline.StepSeconds = a.StepSeconds
	}
	if a.ScaleMin > 0 {
		opts.Timeline.DFA.ScaleMin = a.ScaleMin
	}
	if a.ScaleMax > 0 {
		opts.Timeline.DFA.ScaleMax = a.ScaleMax
	}
	if len(a.MMPDurations) > 0 {
		opts.MMPDurations = a.MMPDurations
	}
	opts.Use3Point = a.ThreePoint()
	opts.CriticalPower = cfg.Athlete.CriticalPower
	opts.WPrime = cfg.Athlete.WPrime
	return opts
}

func toStoreAnalysis(record store.Activity, r analysis.ActivityAnalysis) *store.Analysis {
	out := &store.Analysis{
		Activity: record,
		MMP:      toMMP(r.MMP),
		CP:       toCPModel(r),
	}
	if r.VT1 != nil {
		out.VT1 = toVT1(r.VT1)
		out.Timeline = toTimeline(r.VT1.Timeline)
	}
	if b := r.BalanceSummary; b != nil {
		out.Balance = &store.BalanceSummary{
			CriticalPower:   b.CriticalPower,
			WPrime:          b.WPrime,
			MinBalance:      b.MinBalance,
			MinAt:           b.MinAt,
			DepletedSeconds: b.DepletedSeconds,
			FinalBalance:    b.FinalBalance,
		}
	}
	return out
}

func toTimeline(points []analysis.TimelinePoint) []store.DFAPoint {
	out := make([]store.DFAPoint, len(points))
	for i, p := range points {
		out[i] = store.DFAPoint{
			TimeOffset:     p.Time,
			Alpha1:         p.Alpha1,
			FitQuality:     p.FitQuality,
			StdErr:         p.StdErr,
			Tier:           p.Tier.String(),
			WindowSamples:  p.WindowSamples,
			Classification: p.Classification.String(),
		}
	}
	return out
}

func toVT1(e *analysis.VT1Estimate) *store.VT1Estimate {
	out := &store.VT1Estimate{Verdict: e.Verdict.String(), UsableBeats: e.UsableBeats}
	switch e.Verdict {
	case analysis.VerdictCrossing:
		t, a, tier := e.CrossingTime, e.Alpha1, e.Tier.String()
		out.CrossingTime = &t
		out.Alpha1 = &a
		out.Tier = &tier
		out.Power = e.Power
	case analysis.VerdictNoCrossing:
		avg, class := e.AverageAlpha1, e.AverageClass.String()
		out.AverageAlpha1 = &avg
		out.AverageClass = &class
	}
	return out
}

func toMMP(samples []analysis.MMPSample) []store.MMPSample {
	out := make([]store.MMPSample, len(samples))
	for i, s := range samples {
		out[i] = store.MMPSample{Duration: s.Duration, Power: s.Power}
	}
	return out
}

// toCPModel records the capacity behind the balance. Fit fields exist only for estimates.
func toCPModel(r analysis.ActivityAnalysis) *store.CPModel {
	switch {
	case r.CP != nil:
		m := r.CP
		kind, tier := m.Kind.String(), m.Tier.String()
		fallback, linear := m.Fallback.String(), m.Linear2Point.String()
		quality, iterations := m.FitQuality, m.Iterations
		return &store.CPModel{
			Source:         r.CPSource.String(),
			CriticalPower:  m.CriticalPower,
			WPrime:         m.WPrime,
			Kind:           &kind,
			FitQuality:     &quality,
			Tier:           &tier,
			Fallback:       &fallback,
			LinearFallback: &linear,
			Iterations:     &iterations,
		}
	case r.BalanceSummary != nil:
		return &store.CPModel{
			Source:        r.CPSource.String(),
			CriticalPower: r.BalanceSummary.CriticalPower,
			WPrime:        r.BalanceSummary.WPrime,
		}
	default:
		return nil
	}
}
