package analysis

import (
	"fmt"
	"sort"
)

const (
	DefaultWindowSeconds = 120
	DefaultStepSeconds   = 30

	// MinBeatsPerWindow is the fewest beats a window needs before DFA is attempted
	MinBeatsPerWindow = 50
	// MinFitQuality discards windows whose log-log fit is unreliable
	MinFitQuality = 0.5
)

// TimelineOptions configures the sliding DFA window
type TimelineOptions struct {
	WindowSeconds int
	StepSeconds   int
	DFA           DFAOptions
}

// DefaultTimelineOptions returns a 2 minute window stepped every 30 seconds
func DefaultTimelineOptions() TimelineOptions {
	return TimelineOptions{
		WindowSeconds: DefaultWindowSeconds,
		StepSeconds:   DefaultStepSeconds,
		DFA:           DefaultDFAOptions(),
	}
}

// Validate checks the window geometry and the DFA scale range
func (o TimelineOptions) Validate() error {
	if o.WindowSeconds <= 0 || o.StepSeconds <= 0 {
		return fmt.Errorf("window %ds step %ds: %w", o.WindowSeconds, o.StepSeconds, ErrInvalidWindow)
	}
	return o.DFA.Validate()
}

// TimelinePoint is one emitted window of the alpha1 timeline
type TimelinePoint struct {
	DFAResult
	Time           int // seconds; end of the window
	WindowSamples  int
	Classification Classification
}

// AlphaTimeline slides a window across an activity's beats and runs DFA at every step.
// Beats must be ordered by Elapsed (see UsableBeats). Each step is computed from the raw
// beats alone. Windows with too few beats, a non-valid DFA status, or a poor fit are
// not emitted.
func AlphaTimeline(beats []Beat, opts TimelineOptions) ([]TimelinePoint, error) {
	return alphaTimeline(beats, opts, ComputeAlpha1)
}

// dfaFunc computes one window's DFA result
type dfaFunc func(rr []float64, opts DFAOptions) (DFAResult, error)

func alphaTimeline(beats []Beat, opts TimelineOptions, dfa dfaFunc) ([]TimelinePoint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(beats) == 0 {
		return nil, nil
	}

	last := beats[len(beats)-1].Elapsed
	var points []TimelinePoint

	for t := opts.WindowSeconds; float64(t) <= last; t += opts.StepSeconds {
		window := beatsInWindow(beats, float64(t-opts.WindowSeconds), float64(t))
		if len(window) < MinBeatsPerWindow {
			continue
		}

		res, err := dfa(window, opts.DFA)
		if err != nil {
			return nil, err
		}
		if !res.Valid() || res.FitQuality < MinFitQuality {
			continue
		}

		points = append(points, TimelinePoint{
			DFAResult:      res,
			Time:           t,
			WindowSamples:  len(window),
			Classification: Classify(res.Alpha1),
		})
	}

	return points, nil
}

// beatsInWindow returns the intervals of beats anchored in [from, to]
func beatsInWindow(beats []Beat, from, to float64) []float64 {
	lo := sort.Search(len(beats), func(i int) bool { return beats[i].Elapsed >= from })
	hi := sort.Search(len(beats), func(i int) bool { return beats[i].Elapsed > to })

	rr := make([]float64, 0, hi-lo)
	for _, b := range beats[lo:hi] {
		rr = append(rr, b.RR)
	}
	return rr
}
