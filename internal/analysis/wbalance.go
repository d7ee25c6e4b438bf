package analysis

import (
	"fmt"
	"math"
	"strconv"
)

// Recovery time constant: tau = 546·e^(-0.01·D_CP) + 316
const (
	tauAmplitude = 546.0
	tauDecay     = 0.01
	tauFloor     = 316.0
)

// RecoveryTau returns the W' reconstitution time constant in seconds for an athlete
// riding belowCP watts under critical power.
func RecoveryTau(belowCP float64) float64 {
	return tauAmplitude*math.Exp(-tauDecay*belowCP) + tauFloor
}

// WBalance integrates W' expenditure and reconstitution over a 1 Hz power series.
// The returned slice has one balance (joules) per input second, starting from a full tank.
func WBalance(power []float64, cp, wPrime float64) ([]float64, error) {
	if err := validateCapacity(cp, wPrime); err != nil {
		return nil, err
	}
	for i, p := range power {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, fmt.Errorf("power[%d] = %v: %w", i, p, ErrMalformedSeries)
		}
	}

	balance := make([]float64, len(power))
	current := wPrime
	for i, p := range power {
		if p > cp {
			current -= p - cp
		} else {
			tau := RecoveryTau(cp - p)
			current += (wPrime - current) * (1 - math.Exp(-1/tau))
		}
		current = clamp(current, 0, wPrime)
		balance[i] = current
	}
	return balance, nil
}

// BalanceSummary condenses a W' balance series
type BalanceSummary struct {
	CriticalPower   float64
	WPrime          float64
	MinBalance      float64
	MinAt           int // second of the lowest balance (first occurrence)
	DepletedSeconds int // seconds with the tank empty
	FinalBalance    float64
}

// SummarizeBalance reports the lowest point of a balance series
func SummarizeBalance(balance []float64, cp, wPrime float64) BalanceSummary {
	s := BalanceSummary{CriticalPower: cp, WPrime: wPrime, MinBalance: wPrime, FinalBalance: wPrime}
	for i, b := range balance {
		if b < s.MinBalance {
			s.MinBalance = b
			s.MinAt = i
		}
		if b <= 0 {
			s.DepletedSeconds++
		}
	}
	if len(balance) > 0 {
		s.FinalBalance = balance[len(balance)-1]
	}
	return s
}

// TimeEstimate is a duration in seconds that may be unbounded
type TimeEstimate struct {
	Seconds  float64
	Infinite bool
}

// Infinite is the estimate for an effort that never ends
var Infinite = TimeEstimate{Infinite: true}

func (t TimeEstimate) String() string {
	if t.Infinite {
		return "infinite"
	}
	return strconv.FormatFloat(t.Seconds, 'f', 1, 64) + "s"
}

// TimeToExhaustion estimates how long targetPower can be held from the current balance
func TimeToExhaustion(currentBalance, targetPower, cp float64) (TimeEstimate, error) {
	if cp <= 0 || !isFinite(cp) {
		return TimeEstimate{}, fmt.Errorf("cp %v: %w", cp, ErrInvalidCriticalPower)
	}
	if currentBalance < 0 || !isFinite(currentBalance) {
		return TimeEstimate{}, fmt.Errorf("balance %v: %w", currentBalance, ErrInvalidWPrime)
	}
	if targetPower < 0 || !isFinite(targetPower) {
		return TimeEstimate{}, fmt.Errorf("target power %v: %w", targetPower, ErrMalformedSeries)
	}
	if targetPower <= cp {
		return Infinite, nil
	}
	return TimeEstimate{Seconds: currentBalance / (targetPower - cp)}, nil
}

// TimeToRecover estimates how long it takes to rebuild W' from currentBalance to
// targetBalance while riding at recoveryPower.
func TimeToRecover(currentBalance, targetBalance, recoveryPower, cp, wPrime float64) (TimeEstimate, error) {
	if err := validateCapacity(cp, wPrime); err != nil {
		return TimeEstimate{}, err
	}
	for _, bal := range []float64{currentBalance, targetBalance} {
		if bal < 0 || bal > wPrime || math.IsNaN(bal) {
			return TimeEstimate{}, fmt.Errorf("balance %v outside [0, %v]: %w", bal, wPrime, ErrInvalidWPrime)
		}
	}
	if recoveryPower < 0 || !isFinite(recoveryPower) {
		return TimeEstimate{}, fmt.Errorf("recovery power %v: %w", recoveryPower, ErrMalformedSeries)
	}
	if currentBalance >= targetBalance {
		return TimeEstimate{}, nil
	}
	if recoveryPower >= cp {
		return Infinite, nil
	}

	ratio := (wPrime - targetBalance) / (wPrime - currentBalance)
	if ratio <= 0 || math.IsNaN(ratio) {
		// Target at or above total capacity is only reached asymptotically
		return Infinite, nil
	}

	tau := RecoveryTau(cp - recoveryPower)
	return TimeEstimate{Seconds: -tau * math.Log(ratio)}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateCapacity(cp, wPrime float64) error {
	if cp <= 0 || math.IsNaN(cp) || math.IsInf(cp, 0) {
		return fmt.Errorf("cp %v: %w", cp, ErrInvalidCriticalPower)
	}
	if wPrime < 0 || math.IsNaN(wPrime) || math.IsInf(wPrime, 0) {
		return fmt.Errorf("w' %v: %w", wPrime, ErrInvalidWPrime)
	}
	return nil
}
