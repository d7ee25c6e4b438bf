package analysis

import (
	"math"
	"testing"
)

func TestMaximalMeanPower(t *testing.T) {
	// 10 minutes at 200 W with a 3 minute block at 300 W in the middle
	power := make([]float64, 600)
	for i := range power {
		power[i] = 200
		if i >= 200 && i < 380 {
			power[i] = 300
		}
	}

	samples := MaximalMeanPower(power, []int{Duration3Min, Duration6Min, Duration12Min})
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2 (12 min exceeds the series)", len(samples))
	}

	tests := []struct {
		duration int
		want     float64
	}{
		{Duration3Min, 300},
		{Duration6Min, (180*300 + 180*200) / 360.0},
	}
	for i, tt := range tests {
		if samples[i].Duration != tt.duration {
			t.Errorf("samples[%d].Duration = %d, want %d", i, samples[i].Duration, tt.duration)
		}
		if math.Abs(samples[i].Power-tt.want) > 1e-9 {
			t.Errorf("MMP(%d) = %v, want %v", tt.duration, samples[i].Power, tt.want)
		}
	}
}

func TestMaximalMeanPowerEdges(t *testing.T) {
	if got := MaximalMeanPower(nil, MMPDurations); got != nil {
		t.Errorf("MaximalMeanPower(nil) = %v, want nil", got)
	}

	power := []float64{100, 200, 300}
	got := MaximalMeanPower(power, []int{0, -5, 3, 4})
	if len(got) != 1 || got[0].Duration != 3 || got[0].Power != 200 {
		t.Errorf("MaximalMeanPower() = %+v, want one 3 s sample at 200 W", got)
	}

	// A series of zeros has no effort to report
	if got := MaximalMeanPower(make([]float64, 400), []int{180}); len(got) != 0 {
		t.Errorf("MaximalMeanPower(zeros) = %+v, want empty", got)
	}
}
