package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"threshold/internal/analysis"
	"threshold/internal/service"
	"threshold/internal/store"
)

const (
	defaultWidth = 80
	chartHeight  = 8
	chartPoints  = 60

	// Point queries shown under the balance chart
	queryAboveCP       = 50.0 // watts over CP for time to exhaustion
	queryRecoveryRatio = 0.5  // recovery power as a fraction of CP
	queryRecoverTo     = 0.9  // target balance as a fraction of W'
)

// RenderReport renders a fresh analysis, including the per-second W' balance chart
func RenderReport(r *service.Report, width int) string {
	content := renderAnalysis(r.Saved, r.Result.Balance, width)
	if r.Exported.Balance == "" && r.Exported.Timeline == "" {
		return content
	}

	lines := []string{content, RenderSection("Export", chartWidth(width)+10)}
	for _, path := range []string{r.Exported.Balance, r.Exported.Timeline} {
		if path != "" {
			lines = append(lines, "  "+successStyle.Render(path))
		}
	}
	return strings.Join(lines, "\n")
}

// renderAnalysis renders a stored analysis. balance is the per-second series when known.
func renderAnalysis(a *store.Analysis, balance []float64, width int) string {
	if a == nil {
		return "\n  No analysis"
	}
	w := chartWidth(width)

	sections := []string{
		renderActivity(a.Activity),
		renderVT1(a.VT1, w),
		renderAlpha1Chart(a.Timeline, w),
		renderCapacity(a.CP, a.MMP, w),
		renderBalance(a.Balance, balance, w),
		renderNotes(a.Activity.Notes, w),
	}

	var out []string
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

func chartWidth(width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	w := width - 20
	if w > chartPoints {
		w = chartPoints
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderActivity(a store.Activity) string {
	lines := []string{cardTitleStyle.Render(a.Name)}

	if !a.StartDate.IsZero() {
		lines = append(lines, RenderMetric("Date", a.StartDate.Format("Mon Jan 2, 2006 15:04"), ""))
	}
	if a.Sport != "" {
		lines = append(lines, RenderMetric("Sport", a.Sport, ""))
	}
	if a.Duration > 0 {
		lines = append(lines, RenderMetric("Duration", formatDuration(a.Duration), ""))
	}
	lines = append(lines,
		RenderMetric("Beats", formatCount(a.Beats), ""),
		RenderMetric("Power samples", formatCount(a.PowerSamples), ""),
		RenderMetric("Source", a.Source+" "+a.SourceRef, ""),
	)
	if !a.AnalyzedAt.IsZero() {
		lines = append(lines, RenderMetric("Analysed", humanize.Time(a.AnalyzedAt), ""))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func renderVT1(v *store.VT1Estimate, width int) string {
	lines := []string{RenderSection("Aerobic Threshold (VT1)", width+10)}

	if v == nil {
		lines = append(lines, helpDescStyle.Render("  No beat intervals recorded"), "")
		return strings.Join(lines, "\n")
	}

	switch v.Verdict {
	case analysis.VerdictCrossing.String():
		lines = append(lines, RenderMetric("Crossing at", formatDuration(derefInt(v.CrossingTime)), ""))
		if v.Alpha1 != nil {
			class := analysis.Classify(*v.Alpha1).String()
			lines = append(lines, RenderMetric("Alpha1", fmt.Sprintf("%.2f", *v.Alpha1), zoneStyle(class).Render(analysis.Alpha1Assessment(*v.Alpha1))))
		}
		lines = append(lines, RenderMetric("Confidence", orDash(v.Tier), tierStyle(orDash(v.Tier)).Render("●")))
		if v.Power != nil {
			lines = append(lines, RenderMetric("VT1 power", formatWatts(*v.Power), ""))
		}
	case analysis.VerdictNoCrossing.String():
		lines = append(lines, RenderMetric("Verdict", "No crossing", ""))
		if v.AverageAlpha1 != nil {
			lines = append(lines, RenderMetric("Average alpha1", fmt.Sprintf("%.2f", *v.AverageAlpha1), ""))
		}
		lines = append(lines, RenderMetric("Whole activity", orDash(v.AverageClass), zoneStyle(orDash(v.AverageClass)).Render("●")))
	default:
		lines = append(lines, warningStyle.Render("  Insufficient data for alpha1"))
	}
	lines = append(lines, RenderMetric("Usable beats", formatCount(v.UsableBeats), ""), "")
	return strings.Join(lines, "\n")
}

func renderAlpha1Chart(points []store.DFAPoint, width int) string {
	if len(points) < 3 {
		return ""
	}
	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = p.Alpha1
	}
	if len(data) > width {
		data = downsample(data, width)
	}

	chart := asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(fmt.Sprintf("alpha1, %d windows, VT1 at %.2f", len(points), analysis.AerobicThreshold)),
	)
	return strings.Join([]string{chart, ""}, "\n")
}

func renderCapacity(cp *store.CPModel, mmp []store.MMPSample, width int) string {
	lines := []string{RenderSection("Critical Power", width+10)}

	if len(mmp) > 0 {
		header := tableHeaderStyle.Render(fmt.Sprintf("%-10s %8s", "Duration", "MMP"))
		lines = append(lines, header)
		for _, s := range mmp {
			lines = append(lines, tableRowStyle.Render(fmt.Sprintf("%-10s %8s", formatDuration(s.Duration), formatWatts(s.Power))))
		}
		lines = append(lines, "")
	}

	if cp == nil {
		lines = append(lines, helpDescStyle.Render("  No capacity model"), "")
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		RenderMetric("CP", formatWatts(cp.CriticalPower), ""),
		RenderMetric("W'", formatJoules(cp.WPrime), ""),
		RenderMetric("Source", cp.Source, ""),
	)
	if cp.Kind != nil {
		lines = append(lines, RenderMetric("Model", *cp.Kind, ""))
	}
	if cp.FitQuality != nil {
		lines = append(lines, RenderMetric("Fit (R²)", fmt.Sprintf("%.3f", *cp.FitQuality), tierStyle(orDash(cp.Tier)).Render(orDash(cp.Tier))))
	}
	if cp.Fallback != nil && *cp.Fallback != analysis.FallbackNone.String() {
		lines = append(lines, RenderMetric("Fallback", *cp.Fallback, ""))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func renderBalance(b *store.BalanceSummary, balance []float64, width int) string {
	if b == nil {
		return ""
	}
	lines := []string{RenderSection("W' Balance", width+10)}

	remaining := 0.0
	if b.WPrime > 0 {
		remaining = b.MinBalance / b.WPrime
	}
	lines = append(lines,
		RenderMetric("Lowest", fmt.Sprintf("%s at %s", formatJoules(b.MinBalance), formatDuration(b.MinAt)), ""),
		RenderMetric("Remaining", formatPercent(remaining), RenderGauge(remaining, 20)),
		RenderMetric("Depleted", formatDuration(b.DepletedSeconds), ""),
		RenderMetric("Final", formatJoules(b.FinalBalance), ""),
		RenderMetric("Reading", analysis.BalanceAssessment(b.MinBalance, b.WPrime), ""),
	)

	if len(balance) > 2 {
		data := balance
		if len(data) > width {
			data = downsample(data, width)
		}
		lines = append(lines, "", asciigraph.Plot(data,
			asciigraph.Height(chartHeight),
			asciigraph.Width(width),
			asciigraph.Precision(0),
			asciigraph.Caption("W' balance (J)"),
		))
	}

	lines = append(lines, "", renderQueries(b), "")
	return strings.Join(lines, "\n")
}

// renderQueries shows time to exhaustion just above CP and time to recover from the low point
func renderQueries(b *store.BalanceSummary) string {
	var lines []string

	target := b.CriticalPower + queryAboveCP
	if tte, err := analysis.TimeToExhaustion(b.WPrime, target, b.CriticalPower); err == nil {
		lines = append(lines, RenderMetric(fmt.Sprintf("TTE @ %s", formatWatts(target)), formatEstimate(tte), ""))
	}

	easy := b.CriticalPower * queryRecoveryRatio
	goal := b.WPrime * queryRecoverTo
	if ttr, err := analysis.TimeToRecover(b.MinBalance, goal, easy, b.CriticalPower, b.WPrime); err == nil {
		label := fmt.Sprintf("Recover %s @ %s", formatPercent(queryRecoverTo), formatWatts(easy))
		lines = append(lines, RenderMetric(label, formatEstimate(ttr), ""))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderNotes(notes []string, width int) string {
	if len(notes) == 0 {
		return ""
	}
	lines := []string{RenderSection("Notes", width+10)}
	for _, n := range notes {
		lines = append(lines, warningStyle.Render("  "+n))
	}
	return strings.Join(lines, "\n")
}

// downsample averages data into targetLen buckets
func downsample(data []float64, targetLen int) []float64 {
	if len(data) <= targetLen || targetLen <= 0 {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := 0; i < targetLen; i++ {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if end > len(data) {
			end = len(data)
		}
		if end <= start {
			end = start + 1
		}

		sum := 0.0
		for j := start; j < end; j++ {
			sum += data[j]
		}
		result[i] = sum / float64(end-start)
	}

	return result
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// RenderStored renders a saved analysis without the per-second balance series
func RenderStored(a *store.Analysis, width int) string {
	return renderAnalysis(a, nil, width)
}
