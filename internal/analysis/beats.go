package analysis

import (
	"fmt"
	"math"
	"sort"
)

// Physiological RR bounds in milliseconds (200 bpm .. 30 bpm)
const (
	MinRRMillis = 300
	MaxRRMillis = 2000

	artifactWindow    = 5
	artifactThreshold = 0.20 // relative deviation from the local median
)

// Beat is one beat-to-beat interval anchored to activity time
type Beat struct {
	Elapsed float64 // seconds from activity start
	RR      float64 // milliseconds
}

// BeatGroup holds the intervals recorded within one elapsed second
type BeatGroup struct {
	Elapsed float64
	RR      []float64
}

// BeatsFromIntervals anchors a flat interval list by its running sum
func BeatsFromIntervals(rr []float64) []Beat {
	beats := make([]Beat, len(rr))
	var elapsed float64
	for i, v := range rr {
		elapsed += v / 1000.0
		beats[i] = Beat{Elapsed: elapsed, RR: v}
	}
	return beats
}

// BeatsFromGroups flattens grouped intervals; every beat inherits its group's anchor
func BeatsFromGroups(groups []BeatGroup) []Beat {
	var beats []Beat
	for _, g := range groups {
		for _, v := range g.RR {
			beats = append(beats, Beat{Elapsed: g.Elapsed, RR: v})
		}
	}
	return beats
}

// UsableBeats drops intervals outside the physiological range and sorts by anchor.
// Non-finite or non-positive intervals make the whole series malformed.
func UsableBeats(beats []Beat) ([]Beat, error) {
	usable := make([]Beat, 0, len(beats))
	for i, b := range beats {
		if math.IsNaN(b.RR) || math.IsInf(b.RR, 0) || b.RR <= 0 {
			return nil, fmt.Errorf("beat %d has interval %v: %w", i, b.RR, ErrMalformedSeries)
		}
		if math.IsNaN(b.Elapsed) || math.IsInf(b.Elapsed, 0) || b.Elapsed < 0 {
			return nil, fmt.Errorf("beat %d has anchor %v: %w", i, b.Elapsed, ErrMalformedSeries)
		}
		if b.RR < MinRRMillis || b.RR > MaxRRMillis {
			continue
		}
		usable = append(usable, b)
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Elapsed < usable[j].Elapsed
	})
	return usable, nil
}

// FilterArtifacts replaces local outliers with the median of the 5-sample window
// centred on them. The two samples at each end are left untouched.
func FilterArtifacts(rr []float64) []float64 {
	clean := make([]float64, len(rr))
	copy(clean, rr)

	half := artifactWindow / 2
	window := make([]float64, artifactWindow)
	for i := half; i < len(rr)-half; i++ {
		copy(window, rr[i-half:i+half+1])
		median := median5(window)
		if median == 0 {
			continue
		}
		if math.Abs(rr[i]-median)/median > artifactThreshold {
			clean[i] = median
		}
	}
	return clean
}

// median5 sorts w in place and returns its middle element
func median5(w []float64) float64 {
	sort.Float64s(w)
	return w[len(w)/2]
}
