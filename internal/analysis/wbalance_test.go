package analysis

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestWBalanceExample(t *testing.T) {
	power := []float64{100, 100, 100, 100, 100, 400, 400, 400, 400, 400}

	balance, err := WBalance(power, 250, 20000)
	if err != nil {
		t.Fatalf("WBalance() unexpected error: %v", err)
	}
	if len(balance) != len(power) {
		t.Fatalf("len(balance) = %d, want %d", len(balance), len(power))
	}

	for i := 0; i < 5; i++ {
		if balance[i] != 20000 {
			t.Errorf("balance[%d] = %v, want 20000", i, balance[i])
		}
	}
	tests := []struct {
		second int
		want   float64
	}{
		{5, 19850},
		{6, 19700},
		{9, 19250},
	}
	for _, tt := range tests {
		if math.Abs(balance[tt.second]-tt.want) > 1e-9 {
			t.Errorf("balance[%d] = %v, want %v", tt.second, balance[tt.second], tt.want)
		}
	}
}

func TestWBalanceRecovery(t *testing.T) {
	power := []float64{450, 450, 450, 450, 450, 100, 100}
	const cp, wPrime = 250.0, 10000.0

	balance, err := WBalance(power, cp, wPrime)
	if err != nil {
		t.Fatalf("WBalance() unexpected error: %v", err)
	}

	low := balance[4]
	if math.Abs(low-9000) > 1e-9 {
		t.Fatalf("balance[4] = %v, want 9000", low)
	}

	tau := RecoveryTau(cp - 100)
	want := low + (wPrime-low)*(1-math.Exp(-1/tau))
	if math.Abs(balance[5]-want) > 1e-9 {
		t.Errorf("balance[5] = %v, want %v", balance[5], want)
	}
	if balance[6] <= balance[5] || balance[6] >= wPrime {
		t.Errorf("balance[6] = %v, want between %v and %v", balance[6], balance[5], wPrime)
	}
}

func TestWBalanceStaysWithinCapacity(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	power := make([]float64, 3600)
	for i := range power {
		power[i] = r.Float64() * 900
	}

	for _, wPrime := range []float64{0, 5000, 20000} {
		for _, cp := range []float64{50, 250, 600} {
			balance, err := WBalance(power, cp, wPrime)
			if err != nil {
				t.Fatalf("WBalance(cp=%v, w'=%v) unexpected error: %v", cp, wPrime, err)
			}
			for i, b := range balance {
				if b < 0 || b > wPrime {
					t.Fatalf("cp=%v w'=%v: balance[%d] = %v outside [0, %v]", cp, wPrime, i, b, wPrime)
				}
			}
		}
	}
}

func TestWBalanceDepletes(t *testing.T) {
	power := make([]float64, 200)
	for i := range power {
		power[i] = 350
	}

	balance, err := WBalance(power, 250, 10000)
	if err != nil {
		t.Fatalf("WBalance() unexpected error: %v", err)
	}
	if balance[99] != 0 || balance[199] != 0 {
		t.Errorf("balance[99], balance[199] = %v, %v, want 0", balance[99], balance[199])
	}

	s := SummarizeBalance(balance, 250, 10000)
	if s.MinBalance != 0 {
		t.Errorf("MinBalance = %v, want 0", s.MinBalance)
	}
	if s.MinAt != 99 {
		t.Errorf("MinAt = %d, want 99", s.MinAt)
	}
	if s.DepletedSeconds != 101 {
		t.Errorf("DepletedSeconds = %d, want 101", s.DepletedSeconds)
	}
	if s.FinalBalance != 0 {
		t.Errorf("FinalBalance = %v, want 0", s.FinalBalance)
	}
}

func TestWBalanceErrors(t *testing.T) {
	tests := []struct {
		name    string
		power   []float64
		cp      float64
		wPrime  float64
		wantErr error
	}{
		{"zero cp", []float64{100}, 0, 20000, ErrInvalidCriticalPower},
		{"negative cp", []float64{100}, -5, 20000, ErrInvalidCriticalPower},
		{"NaN cp", []float64{100}, math.NaN(), 20000, ErrInvalidCriticalPower},
		{"negative w'", []float64{100}, 250, -1, ErrInvalidWPrime},
		{"NaN power", []float64{100, math.NaN()}, 250, 20000, ErrMalformedSeries},
		{"negative power", []float64{-10}, 250, 20000, ErrMalformedSeries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WBalance(tt.power, tt.cp, tt.wPrime)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("WBalance() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSummarizeBalanceEmpty(t *testing.T) {
	s := SummarizeBalance(nil, 250, 20000)
	if s.MinBalance != 20000 || s.FinalBalance != 20000 || s.DepletedSeconds != 0 {
		t.Errorf("SummarizeBalance(nil) = %+v, want a full tank", s)
	}
}

func TestRecoveryTau(t *testing.T) {
	tests := []struct {
		belowCP float64
		want    float64
	}{
		{0, 862},
		{100, 546*math.Exp(-1) + 316},
		{1000, 546*math.Exp(-10) + 316},
	}
	for _, tt := range tests {
		if got := RecoveryTau(tt.belowCP); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("RecoveryTau(%v) = %v, want %v", tt.belowCP, got, tt.want)
		}
	}
}

func TestTimeToExhaustion(t *testing.T) {
	tests := []struct {
		name         string
		balance      float64
		power        float64
		cp           float64
		wantSeconds  float64
		wantInfinite bool
	}{
		{"above cp", 20000, 400, 250, 20000.0 / 150, false},
		{"empty tank", 0, 400, 250, 0, false},
		{"at cp", 20000, 250, 250, 0, true},
		{"below cp", 20000, 100, 250, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimeToExhaustion(tt.balance, tt.power, tt.cp)
			if err != nil {
				t.Fatalf("TimeToExhaustion() unexpected error: %v", err)
			}
			if got.Infinite != tt.wantInfinite {
				t.Fatalf("Infinite = %v, want %v", got.Infinite, tt.wantInfinite)
			}
			if !got.Infinite && math.Abs(got.Seconds-tt.wantSeconds) > 0.01 {
				t.Errorf("Seconds = %v, want %v", got.Seconds, tt.wantSeconds)
			}
		})
	}

	got, _ := TimeToExhaustion(20000, 400, 250)
	if math.Abs(got.Seconds-133.3) > 0.05 {
		t.Errorf("TimeToExhaustion(20000, 400, 250) = %v, want ~133.3 s", got.Seconds)
	}

	if _, err := TimeToExhaustion(20000, 400, 0); !errors.Is(err, ErrInvalidCriticalPower) {
		t.Errorf("zero cp error = %v, want %v", err, ErrInvalidCriticalPower)
	}
	if _, err := TimeToExhaustion(-1, 400, 250); !errors.Is(err, ErrInvalidWPrime) {
		t.Errorf("negative balance error = %v, want %v", err, ErrInvalidWPrime)
	}

	invalid := []struct {
		name    string
		balance float64
		power   float64
		want    error
	}{
		{"nan power", 20000, math.NaN(), ErrMalformedSeries},
		{"infinite power", 20000, math.Inf(1), ErrMalformedSeries},
		{"negative power", 20000, -10, ErrMalformedSeries},
		{"infinite balance", math.Inf(1), 400, ErrInvalidWPrime},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TimeToExhaustion(tt.balance, tt.power, 250); !errors.Is(err, tt.want) {
				t.Errorf("TimeToExhaustion(%v, %v, 250) error = %v, want %v", tt.balance, tt.power, err, tt.want)
			}
		})
	}
}

func TestTimeToRecover(t *testing.T) {
	const cp, wPrime = 250.0, 20000.0
	tau := RecoveryTau(cp - 100)

	tests := []struct {
		name          string
		current       float64
		target        float64
		recoveryPower float64
		wantSeconds   float64
		wantInfinite  bool
	}{
		{"half way back", 10000, 15000, 100, -tau * math.Log(0.5), false},
		{"already there", 15000, 10000, 100, 0, false},
		{"already there above cp", 15000, 10000, 300, 0, false},
		{"riding above cp", 10000, 15000, 300, 0, true},
		{"riding at cp", 10000, 15000, 250, 0, true},
		{"full tank is asymptotic", 10000, 20000, 100, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimeToRecover(tt.current, tt.target, tt.recoveryPower, cp, wPrime)
			if err != nil {
				t.Fatalf("TimeToRecover() unexpected error: %v", err)
			}
			if got.Infinite != tt.wantInfinite {
				t.Fatalf("Infinite = %v, want %v", got.Infinite, tt.wantInfinite)
			}
			if !got.Infinite && math.Abs(got.Seconds-tt.wantSeconds) > 0.01 {
				t.Errorf("Seconds = %v, want %v", got.Seconds, tt.wantSeconds)
			}
		})
	}

	if _, err := TimeToRecover(0, 100, 100, -1, wPrime); !errors.Is(err, ErrInvalidCriticalPower) {
		t.Errorf("negative cp error = %v, want %v", err, ErrInvalidCriticalPower)
	}

	invalid := []struct {
		name          string
		current       float64
		target        float64
		recoveryPower float64
		want          error
	}{
		{"current above capacity", 25000, 26000, 100, ErrInvalidWPrime},
		{"target above capacity", 10000, 21000, 100, ErrInvalidWPrime},
		{"negative current", -1, 15000, 100, ErrInvalidWPrime},
		{"nan target", 10000, math.NaN(), 100, ErrInvalidWPrime},
		{"nan recovery power", 10000, 15000, math.NaN(), ErrMalformedSeries},
		{"negative recovery power", 10000, 15000, -5, ErrMalformedSeries},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimeToRecover(tt.current, tt.target, tt.recoveryPower, cp, wPrime)
			if !errors.Is(err, tt.want) {
				t.Errorf("TimeToRecover() = %v, error = %v, want %v", got, err, tt.want)
			}
		})
	}
}

func TestTimeEstimateString(t *testing.T) {
	if s := Infinite.String(); s != "infinite" {
		t.Errorf("Infinite.String() = %q, want %q", s, "infinite")
	}
	if s := (TimeEstimate{Seconds: 133.33}).String(); s != "133.3s" {
		t.Errorf("String() = %q, want %q", s, "133.3s")
	}
}
