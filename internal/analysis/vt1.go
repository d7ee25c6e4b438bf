package analysis

// Verdict is the overall outcome of VT1 detection
type Verdict int

const (
	VerdictCrossing Verdict = iota
	VerdictNoCrossing
	VerdictInsufficientData
)

func (v Verdict) String() string {
	switch v {
	case VerdictCrossing:
		return "crossing"
	case VerdictNoCrossing:
		return "no_crossing"
	case VerdictInsufficientData:
		return "insufficient_data"
	default:
		return "unknown"
	}
}

// VT1Estimate is the detected aerobic threshold for one activity.
// Crossing fields are set only for VerdictCrossing; AverageAlpha1 and
// AverageClass only for VerdictNoCrossing.
type VT1Estimate struct {
	Verdict       Verdict
	CrossingTime  int // seconds
	Alpha1        float64
	Tier          ConfidenceTier
	Power         *float64 // watts at the crossing second, when a power series covers it
	AverageAlpha1 float64
	AverageClass  Classification
	UsableBeats   int
	Timeline      []TimelinePoint
}

// Detected reports whether a crossing was found
func (e VT1Estimate) Detected() bool {
	return e.Verdict == VerdictCrossing
}

// DetectVT1 builds an alpha1 timeline from an activity's beats and locates the
// point where alpha1 first drops through 0.75. power is optional (one sample per second).
func DetectVT1(beats []Beat, power []float64, opts TimelineOptions) (VT1Estimate, error) {
	usable, err := UsableBeats(beats)
	if err != nil {
		return VT1Estimate{}, err
	}
	if err := opts.Validate(); err != nil {
		return VT1Estimate{}, err
	}

	est := VT1Estimate{Verdict: VerdictInsufficientData, UsableBeats: len(usable)}
	if len(usable) < MinBeatsForDFA {
		return est, nil
	}

	timeline, err := AlphaTimeline(usable, opts)
	if err != nil {
		return VT1Estimate{}, err
	}
	est.Timeline = timeline
	if len(timeline) == 0 {
		return est, nil
	}

	best, ok := selectCrossing(timeline)
	if !ok {
		avg := averageAlpha1(timeline)
		est.Verdict = VerdictNoCrossing
		est.AverageAlpha1 = avg
		if avg > AerobicThreshold {
			est.AverageClass = BelowVT1
		} else {
			est.AverageClass = AboveVT1
		}
		return est, nil
	}

	est.Verdict = VerdictCrossing
	est.CrossingTime = best.Time
	est.Alpha1 = best.Alpha1
	est.Tier = best.Tier
	if best.Time >= 0 && best.Time < len(power) {
		p := power[best.Time]
		est.Power = &p
	}
	return est, nil
}

// selectCrossing finds consecutive points where alpha1 falls from above 0.75 to at or
// below it. The later point of each pair is the candidate. The highest confidence tier
// wins; ties go to the earliest candidate.
func selectCrossing(timeline []TimelinePoint) (TimelinePoint, bool) {
	var best TimelinePoint
	found := false
	for i := 1; i < len(timeline); i++ {
		prev, curr := timeline[i-1], timeline[i]
		if !(prev.Alpha1 > AerobicThreshold && curr.Alpha1 <= AerobicThreshold) {
			continue
		}
		if !found || curr.Tier > best.Tier {
			best = curr
			found = true
		}
	}
	return best, found
}

func averageAlpha1(timeline []TimelinePoint) float64 {
	if len(timeline) == 0 {
		return 0
	}
	var sum float64
	for _, p := range timeline {
		sum += p.Alpha1
	}
	return sum / float64(len(timeline))
}
