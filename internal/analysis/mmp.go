package analysis

// Standard MMP durations in seconds
const (
	Duration3Min  = 180
	Duration6Min  = 360
	Duration12Min = 720
	Duration15Min = 900
	Duration20Min = 1200
)

// MMPDurations are the efforts used for CP estimation when none are configured
var MMPDurations = []int{
	Duration3Min,
	Duration6Min,
	Duration12Min,
	Duration15Min,
	Duration20Min,
}

// MaximalMeanPower finds the best average power for each duration in a 1 Hz power series.
// Durations longer than the series, or non-positive, are skipped.
// Uses a prefix-sum sliding window, O(n) per duration.
func MaximalMeanPower(power []float64, durations []int) []MMPSample {
	if len(power) == 0 {
		return nil
	}

	prefix := make([]float64, len(power)+1)
	for i, p := range power {
		prefix[i+1] = prefix[i] + p
	}

	var samples []MMPSample
	for _, d := range durations {
		if d <= 0 || d > len(power) {
			continue
		}
		best := 0.0
		for end := d; end <= len(power); end++ {
			if sum := prefix[end] - prefix[end-d]; sum > best {
				best = sum
			}
		}
		if best > 0 {
			samples = append(samples, MMPSample{Duration: d, Power: best / float64(d)})
		}
	}
	return samples
}
