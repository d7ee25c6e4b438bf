// Package fitfile reads beat intervals and power from FIT activity files.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"threshold/internal/analysis"
)

// ErrNotActivity is returned for FIT files that are not activities
var ErrNotActivity = errors.New("not an activity FIT file")

// MaxSpan bounds the power series. Records stamped later than this after the
// first record are dropped as corrupt.
const MaxSpan = 24 * time.Hour

// Activity is the part of a FIT activity the analysis needs
type Activity struct {
	Start    time.Time
	Sport    string
	Beats    []analysis.Beat // anchored by the running sum of intervals
	Power    []float64       // 1 Hz from Start, nil when no power was recorded
	Records  int
	Dropped  int // records beyond MaxSpan
	Duration time.Duration
}

// DecodeFile opens and decodes a FIT activity file
func DecodeFile(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FIT file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a FIT activity from r
func Decode(r io.Reader) (*Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotActivity, err)
	}
	return FromActivity(activity), nil
}

// FromActivity extracts beats and a per-second power series from a decoded activity
func FromActivity(a *fit.ActivityFile) *Activity {
	out := &Activity{
		Beats:   analysis.BeatsFromIntervals(intervals(a.Hrvs)),
		Records: len(a.Records),
	}
	if len(a.Sessions) > 0 && a.Sessions[0] != nil {
		out.Sport = a.Sessions[0].Sport.String()
	}

	var end time.Time
	out.Start, end, out.Power, out.Dropped = resamplePower(a.Records)
	if !out.Start.IsZero() {
		out.Duration = end.Sub(out.Start)
	}
	return out
}

// intervals flattens HRV messages into RR intervals in milliseconds.
// HRV time is stored in 1/1000 s, so raw values are already milliseconds.
func intervals(hrvs []*fit.HrvMsg) []float64 {
	var rr []float64
	for _, msg := range hrvs {
		if msg == nil {
			continue
		}
		for _, v := range msg.Time {
			if v == math.MaxUint16 || v == 0 {
				continue
			}
			rr = append(rr, float64(v))
		}
	}
	return rr
}

// resamplePower places record power on a 1 Hz grid starting at the first valid timestamp.
// Seconds without a record, and invalid power readings, are 0 W. The last record wins
// when two share a second.
func resamplePower(records []*fit.RecordMsg) (start, end time.Time, power []float64, dropped int) {
	type row struct {
		ts    time.Time
		power uint16
	}

	rows := make([]row, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		rows = append(rows, row{ts: ts, power: rec.Power})
	}
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, nil, 0
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ts.Before(rows[j].ts)
	})

	start = rows[0].ts
	keep := sort.Search(len(rows), func(i int) bool { return rows[i].ts.Sub(start) > MaxSpan })
	dropped = len(rows) - keep
	rows = rows[:keep]
	end = rows[len(rows)-1].ts

	hasPower := false
	for _, r := range rows {
		if r.power != math.MaxUint16 {
			hasPower = true
			break
		}
	}
	if !hasPower {
		return start, end, nil, dropped
	}

	n := int(end.Sub(start)/time.Second) + 1
	power = make([]float64, n)
	for _, r := range rows {
		var watts float64
		if r.power != math.MaxUint16 {
			watts = float64(r.power)
		}
		power[int(r.ts.Sub(start)/time.Second)] = watts
	}
	return start, end, power, dropped
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}
