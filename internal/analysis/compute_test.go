package analysis

import (
	"strings"
	"testing"
)

func steadyPower(seconds int, watts float64) []float64 {
	power := make([]float64, seconds)
	for i := range power {
		power[i] = watts
	}
	return power
}

// intervalsPower builds a session long enough to cover every default MMP duration
func intervalsPower() []float64 {
	var power []float64
	power = append(power, steadyPower(600, 150)...)
	power = append(power, steadyPower(180, 360)...)
	power = append(power, steadyPower(300, 120)...)
	power = append(power, steadyPower(360, 310)...)
	power = append(power, steadyPower(300, 120)...)
	power = append(power, steadyPower(1200, 265)...)
	return power
}

func TestAnalyzeActivityEstimatesCP(t *testing.T) {
	in := ActivityInput{Power: intervalsPower()}

	out, err := AnalyzeActivity(in, DefaultComputeOptions())
	if err != nil {
		t.Fatalf("AnalyzeActivity() unexpected error: %v", err)
	}
	if out.VT1 != nil {
		t.Error("VT1 set without beats")
	}
	if len(out.MMP) != len(MMPDurations) {
		t.Fatalf("len(MMP) = %d, want %d", len(out.MMP), len(MMPDurations))
	}
	if out.CP == nil {
		t.Fatal("CP = nil, want an estimate")
	}
	if out.CPSource != CPSourceEstimated {
		t.Errorf("CPSource = %v, want %v", out.CPSource, CPSourceEstimated)
	}
	if out.CP.CriticalPower <= 0 {
		t.Errorf("CriticalPower = %v, want > 0", out.CP.CriticalPower)
	}
	if len(out.Balance) != len(in.Power) {
		t.Errorf("len(Balance) = %d, want %d", len(out.Balance), len(in.Power))
	}
	if out.BalanceSummary == nil {
		t.Fatal("BalanceSummary = nil")
	}
	if out.BalanceSummary.MinBalance > out.BalanceSummary.WPrime {
		t.Errorf("MinBalance %v above W' %v", out.BalanceSummary.MinBalance, out.BalanceSummary.WPrime)
	}
}

func TestAnalyzeActivityConfiguredCP(t *testing.T) {
	in := ActivityInput{Power: []float64{100, 100, 100, 100, 100, 400, 400, 400, 400, 400}}
	opts := DefaultComputeOptions()
	opts.CriticalPower = 250
	opts.WPrime = 20000

	out, err := AnalyzeActivity(in, opts)
	if err != nil {
		t.Fatalf("AnalyzeActivity() unexpected error: %v", err)
	}
	if out.CPSource != CPSourceConfigured {
		t.Errorf("CPSource = %v, want %v", out.CPSource, CPSourceConfigured)
	}
	if out.CP != nil {
		t.Error("CP estimated despite configured values")
	}
	if out.Balance[9] != 19250 {
		t.Errorf("Balance[9] = %v, want 19250", out.Balance[9])
	}
	if out.BalanceSummary.MinAt != 9 {
		t.Errorf("MinAt = %d, want 9", out.BalanceSummary.MinAt)
	}
}

func TestAnalyzeActivityShortPower(t *testing.T) {
	// Five minutes only covers the 3 minute duration
	in := ActivityInput{Power: steadyPower(300, 250)}

	out, err := AnalyzeActivity(in, DefaultComputeOptions())
	if err != nil {
		t.Fatalf("AnalyzeActivity() unexpected error: %v", err)
	}
	if out.CP != nil || out.Balance != nil {
		t.Error("CP or balance computed from a single MMP sample")
	}
	if !hasNote(out.Notes, "CP not estimated") {
		t.Errorf("Notes = %v, want a CP note", out.Notes)
	}
}

func TestAnalyzeActivityNoData(t *testing.T) {
	out, err := AnalyzeActivity(ActivityInput{}, DefaultComputeOptions())
	if err != nil {
		t.Fatalf("AnalyzeActivity() unexpected error: %v", err)
	}
	if out.VT1 != nil || out.MMP != nil || out.CP != nil {
		t.Errorf("AnalyzeActivity(empty) = %+v, want no results", out)
	}
	if !hasNote(out.Notes, "no beat intervals") || !hasNote(out.Notes, "no power") {
		t.Errorf("Notes = %v", out.Notes)
	}
}

func TestAnalyzeActivityBeatsOnly(t *testing.T) {
	in := ActivityInput{Beats: BeatsFromIntervals(ar1Intervals(0.95, 750, 5))}

	out, err := AnalyzeActivity(in, DefaultComputeOptions())
	if err != nil {
		t.Fatalf("AnalyzeActivity() unexpected error: %v", err)
	}
	if out.VT1 == nil {
		t.Fatal("VT1 = nil")
	}
	if out.VT1.Verdict != VerdictNoCrossing {
		t.Errorf("Verdict = %v, want %v", out.VT1.Verdict, VerdictNoCrossing)
	}
}

func TestAlpha1Assessment(t *testing.T) {
	tests := []struct {
		alpha1   float64
		contains string
	}{
		{1.1, "Aerobic"},
		{0.6, "Transition"},
		{0.3, "Above VT1"},
	}
	for _, tt := range tests {
		if got := Alpha1Assessment(tt.alpha1); !strings.Contains(got, tt.contains) {
			t.Errorf("Alpha1Assessment(%v) = %q, want it to contain %q", tt.alpha1, got, tt.contains)
		}
	}
}

func TestBalanceAssessment(t *testing.T) {
	tests := []struct {
		minBalance float64
		wPrime     float64
		want       string
	}{
		{0, 20000, "Fully depleted"},
		{4000, 20000, "Deep anaerobic work"},
		{9000, 20000, "Substantial anaerobic work"},
		{14000, 20000, "Moderate anaerobic work"},
		{19000, 20000, "Mostly below critical power"},
		{0, 0, "No anaerobic capacity modelled"},
	}
	for _, tt := range tests {
		if got := BalanceAssessment(tt.minBalance, tt.wPrime); got != tt.want {
			t.Errorf("BalanceAssessment(%v, %v) = %q, want %q", tt.minBalance, tt.wPrime, got, tt.want)
		}
	}
}

func hasNote(notes []string, substr string) bool {
	for _, n := range notes {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

func TestApplyCapacity(t *testing.T) {
	out := ActivityAnalysis{}
	power := []float64{100, 100, 100, 100, 100, 400, 400, 400, 400, 400}

	if err := out.ApplyCapacity(power, 250, 20000, CPSourceHistory); err != nil {
		t.Fatalf("ApplyCapacity() unexpected error: %v", err)
	}
	if out.CPSource != CPSourceHistory {
		t.Errorf("CPSource = %v, want %v", out.CPSource, CPSourceHistory)
	}
	if len(out.Balance) != len(power) || out.BalanceSummary == nil {
		t.Fatalf("balance not filled: %d seconds, summary %v", len(out.Balance), out.BalanceSummary)
	}
	if out.BalanceSummary.MinBalance != 19250 {
		t.Errorf("MinBalance = %v, want 19250", out.BalanceSummary.MinBalance)
	}

	if err := out.ApplyCapacity(power, 0, 20000, CPSourceHistory); err == nil {
		t.Error("ApplyCapacity() expected error for zero CP")
	}
}
