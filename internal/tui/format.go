package tui

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"threshold/internal/analysis"
)

// formatDuration renders seconds as m:ss or h:mm:ss
func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatWatts(w float64) string {
	return fmt.Sprintf("%.0f W", w)
}

// formatJoules renders energy with an SI prefix, e.g. 24 kJ
func formatJoules(j float64) string {
	return humanize.SIWithDigits(j, 1, "J")
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

// formatEstimate renders a point-query result. Infinite estimates are shown as ∞.
func formatEstimate(t analysis.TimeEstimate) string {
	if t.Infinite {
		return "∞"
	}
	return formatDuration(int(math.Round(t.Seconds)))
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
