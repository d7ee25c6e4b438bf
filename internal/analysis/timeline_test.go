package analysis

import (
	"errors"
	"testing"
)

func TestAlphaTimeline(t *testing.T) {
	beats := BeatsFromIntervals(ar1Intervals(0.9, 750, 3)) // ~600 s
	opts := DefaultTimelineOptions()

	points, err := AlphaTimeline(beats, opts)
	if err != nil {
		t.Fatalf("AlphaTimeline() unexpected error: %v", err)
	}
	if len(points) == 0 {
		t.Fatal("AlphaTimeline() returned no points")
	}

	last := beats[len(beats)-1].Elapsed
	for i, p := range points {
		if (p.Time-opts.WindowSeconds)%opts.StepSeconds != 0 || p.Time < opts.WindowSeconds {
			t.Errorf("points[%d].Time = %d, not on the %ds grid from %ds", i, p.Time, opts.StepSeconds, opts.WindowSeconds)
		}
		if float64(p.Time) > last {
			t.Errorf("points[%d].Time = %d beyond last beat %.1f", i, p.Time, last)
		}
		if i > 0 && p.Time <= points[i-1].Time {
			t.Errorf("points not increasing at %d", i)
		}
		if !p.Valid() || p.FitQuality < MinFitQuality {
			t.Errorf("points[%d] emitted with status %v fit %.2f", i, p.Status, p.FitQuality)
		}
		if p.WindowSamples < MinBeatsPerWindow {
			t.Errorf("points[%d].WindowSamples = %d, want >= %d", i, p.WindowSamples, MinBeatsPerWindow)
		}
		if p.Classification != Classify(p.Alpha1) {
			t.Errorf("points[%d].Classification = %v, want %v", i, p.Classification, Classify(p.Alpha1))
		}
	}
}

func TestAlphaTimelineDropsPoorFits(t *testing.T) {
	// Two beats per second for 600 s: every window from 120 s to 600 s has enough beats
	var beats []Beat
	for i := 1; i <= 1200; i++ {
		beats = append(beats, Beat{Elapsed: float64(i) / 2, RR: 500})
	}

	// Window results in step order: 180 s fits poorly, 210 s sits on the cutoff,
	// 240 s is not a valid result at all.
	fits := map[int]DFAResult{
		2: {Status: StatusValid, Alpha1: 0.6, FitQuality: 0.3},
		3: {Status: StatusValid, Alpha1: 0.6, FitQuality: MinFitQuality},
		4: {Status: StatusInvalid, FitQuality: 0.9},
	}
	calls := 0
	fake := func(rr []float64, opts DFAOptions) (DFAResult, error) {
		defer func() { calls++ }()
		if r, ok := fits[calls]; ok {
			return r, nil
		}
		return DFAResult{Status: StatusValid, Alpha1: 1.0, FitQuality: 0.9}, nil
	}

	points, err := alphaTimeline(beats, DefaultTimelineOptions(), fake)
	if err != nil {
		t.Fatalf("alphaTimeline() unexpected error: %v", err)
	}

	var want []int
	for ts := 120; ts <= 600; ts += 30 {
		if ts != 180 && ts != 240 {
			want = append(want, ts)
		}
	}
	if calls != len(want)+2 {
		t.Errorf("DFA ran %d times, want %d", calls, len(want)+2)
	}
	if len(points) != len(want) {
		t.Fatalf("len(points) = %d, want %d", len(points), len(want))
	}
	for i, p := range points {
		if p.Time != want[i] {
			t.Errorf("points[%d].Time = %d, want %d", i, p.Time, want[i])
		}
	}
}

func TestAlphaTimelineSkipsSparseWindows(t *testing.T) {
	// One beat every 4 s leaves 30 beats per 120 s window
	var beats []Beat
	for i := 1; i <= 200; i++ {
		beats = append(beats, Beat{Elapsed: float64(i * 4), RR: 800})
	}

	points, err := AlphaTimeline(beats, DefaultTimelineOptions())
	if err != nil {
		t.Fatalf("AlphaTimeline() unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("len(points) = %d, want 0", len(points))
	}
}

func TestAlphaTimelineShorterThanWindow(t *testing.T) {
	beats := BeatsFromIntervals(ar1Intervals(0.5, 100, 1)) // ~80 s

	points, err := AlphaTimeline(beats, DefaultTimelineOptions())
	if err != nil {
		t.Fatalf("AlphaTimeline() unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("len(points) = %d, want 0", len(points))
	}

	points, err = AlphaTimeline(nil, DefaultTimelineOptions())
	if err != nil || points != nil {
		t.Errorf("AlphaTimeline(nil) = %v, %v, want nil, nil", points, err)
	}
}

func TestTimelineOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    TimelineOptions
		wantErr error
	}{
		{"defaults", DefaultTimelineOptions(), nil},
		{"zero window", TimelineOptions{WindowSeconds: 0, StepSeconds: 30, DFA: DefaultDFAOptions()}, ErrInvalidWindow},
		{"negative step", TimelineOptions{WindowSeconds: 120, StepSeconds: -1, DFA: DefaultDFAOptions()}, ErrInvalidWindow},
		{"bad scales", TimelineOptions{WindowSeconds: 120, StepSeconds: 30, DFA: DFAOptions{ScaleMin: 8, ScaleMax: 4}}, ErrInvalidScales},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBeatsInWindow(t *testing.T) {
	beats := []Beat{{1, 800}, {2, 810}, {3, 820}, {4, 830}, {5, 840}}

	got := beatsInWindow(beats, 2, 4)
	want := []float64{810, 820, 830}
	if len(got) != len(want) {
		t.Fatalf("beatsInWindow() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("beatsInWindow()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if got := beatsInWindow(beats, 10, 20); len(got) != 0 {
		t.Errorf("beatsInWindow() past the end = %v, want empty", got)
	}
}
