package store

import "time"

// Auth represents stored OAuth tokens
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Activity sources
const (
	SourceFIT    = "fit"
	SourceStrava = "strava"
)

// Activity is one analysed activity
type Activity struct {
	ID           string    `db:"id"` // uuid
	Source       string    `db:"source"`
	SourceRef    string    `db:"source_ref"` // file path or remote activity id
	Name         string    `db:"name"`
	Sport        string    `db:"sport"`
	StartDate    time.Time `db:"start_date"`
	Duration     int       `db:"duration"` // seconds
	Beats        int       `db:"beats"`
	PowerSamples int       `db:"power_samples"`
	Notes        []string  `db:"notes"`
	AnalyzedAt   time.Time `db:"analyzed_at"`
}

// DFAPoint is one window of the alpha1 timeline
type DFAPoint struct {
	TimeOffset     int     `db:"time_offset"`
	Alpha1         float64 `db:"alpha1"`
	FitQuality     float64 `db:"fit_quality"`
	StdErr         float64 `db:"std_err"`
	Tier           string  `db:"tier"`
	WindowSamples  int     `db:"window_samples"`
	Classification string  `db:"classification"`
}

// VT1Estimate is the stored threshold verdict for an activity
type VT1Estimate struct {
	Verdict       string   `db:"verdict"`
	CrossingTime  *int     `db:"crossing_time"`
	Alpha1        *float64 `db:"alpha1"`
	Tier          *string  `db:"tier"`
	Power         *float64 `db:"power"`
	AverageAlpha1 *float64 `db:"average_alpha1"`
	AverageClass  *string  `db:"average_class"`
	UsableBeats   int      `db:"usable_beats"`
}

// MMPSample is a maximal mean power for one duration
type MMPSample struct {
	Duration int     `db:"duration"` // seconds
	Power    float64 `db:"power"`
}

// CPModel is the capacity used for an activity's W' balance.
// Fit fields are nil for configured capacities.
type CPModel struct {
	Source         string   `db:"source"` // "configured" or "estimated"
	CriticalPower  float64  `db:"critical_power"`
	WPrime         float64  `db:"w_prime"`
	Kind           *string  `db:"kind"`
	FitQuality     *float64 `db:"fit_quality"`
	Tier           *string  `db:"tier"`
	Fallback       *string  `db:"fallback"`
	LinearFallback *string  `db:"linear_fallback"`
	Iterations     *int     `db:"iterations"`
}

// BalanceSummary condenses an activity's W' balance
type BalanceSummary struct {
	CriticalPower   float64 `db:"critical_power"`
	WPrime          float64 `db:"w_prime"`
	MinBalance      float64 `db:"min_balance"`
	MinAt           int     `db:"min_at"`
	DepletedSeconds int     `db:"depleted_seconds"`
	FinalBalance    float64 `db:"final_balance"`
}

// Analysis is an activity with everything derived from it
type Analysis struct {
	Activity Activity
	Timeline []DFAPoint
	VT1      *VT1Estimate
	MMP      []MMPSample
	CP       *CPModel
	Balance  *BalanceSummary
}
