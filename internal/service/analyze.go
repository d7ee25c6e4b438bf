package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"threshold/internal/analysis"
	"threshold/internal/config"
	"threshold/internal/export"
	"threshold/internal/fitfile"
	"threshold/internal/store"
	"threshold/internal/strava"
)

// ErrNoRemote is returned by AnalyzeStrava when the service has no Strava client
var ErrNoRemote = errors.New("no remote power source configured")

// PowerSource fetches a remote activity and its streams
type PowerSource interface {
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	GetPowerStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
}

// AnalysisService runs ingest, analysis, persistence and export for one activity
type AnalysisService struct {
	store  *store.DB
	remote PowerSource
	cfg    *config.Config
	log    *slog.Logger
	now    func() time.Time
}

// NewAnalysisService creates a new analysis service. remote may be nil for local-only use.
func NewAnalysisService(db *store.DB, remote PowerSource, cfg *config.Config, logger *slog.Logger) *AnalysisService {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{store: db, remote: remote, cfg: cfg, log: logger, now: time.Now}
}

// Report is the in-memory result of analysing one activity
type Report struct {
	Activity store.Activity
	Saved    *store.Analysis // what was persisted, IDs included
	Result   analysis.ActivityAnalysis
	Power    []float64
	Exported export.Files
}

// AnalyzeFile decodes a FIT activity file and analyses it
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string) (*Report, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	act, err := fitfile.DecodeFile(abs)
	if err != nil {
		return nil, err
	}
	s.log.Info("decoded activity", "file", abs, "beats", len(act.Beats), "power_samples", len(act.Power))
	if act.Dropped > 0 {
		s.log.Warn("dropped records past the activity span", "file", abs, "dropped", act.Dropped, "max_span", fitfile.MaxSpan)
	}

	record := store.Activity{
		Source:       store.SourceFIT,
		SourceRef:    abs,
		Name:         filepath.Base(abs),
		Sport:        act.Sport,
		StartDate:    act.Start,
		Duration:     int(act.Duration.Seconds()),
		Beats:        len(act.Beats),
		PowerSamples: len(act.Power),
	}
	return s.run(ctx, record, analysis.ActivityInput{Beats: act.Beats, Power: act.Power})
}

// AnalyzeStrava fetches a Strava activity's power stream and analyses it.
// Strava streams carry no beat intervals, so only the capacity model runs.
func (s *AnalysisService) AnalyzeStrava(ctx context.Context, activityID int64) (*Report, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}

	summary, err := s.remote.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	streams, err := s.remote.GetPowerStreams(ctx, activityID)
	if err != nil {
		return nil, err
	}
	power := streams.PowerSeries()
	s.log.Info("fetched activity", "activity", activityID, "samples", streams.Len(), "power_samples", len(power))

	record := store.Activity{
		Source:       store.SourceStrava,
		SourceRef:    strconv.FormatInt(activityID, 10),
		Name:         summary.Name,
		Sport:        summary.SportType,
		StartDate:    summary.StartDate,
		Duration:     summary.ElapsedTime,
		PowerSamples: len(power),
	}
	return s.run(ctx, record, analysis.ActivityInput{Power: power})
}

func (s *AnalysisService) run(ctx context.Context, record store.Activity, in analysis.ActivityInput) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := analysis.AnalyzeActivity(in, ComputeOptions(s.cfg))
	if err != nil {
		return nil, fmt.Errorf("analysing %s: %w", record.Name, err)
	}
	if err := s.carryCapacity(&result, in.Power); err != nil {
		return nil, err
	}
	s.logResult(record.Name, result)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record.Notes = result.Notes
	record.AnalyzedAt = s.now().UTC()
	stored := toStoreAnalysis(record, result)
	if err := s.store.SaveAnalysis(stored); err != nil {
		return nil, fmt.Errorf("saving analysis: %w", err)
	}
	s.log.Info("saved analysis", "activity", stored.Activity.ID, "points", len(stored.Timeline), "mmp", len(stored.MMP))

	report := &Report{Activity: stored.Activity, Saved: stored, Result: result, Power: in.Power}
	if dir := s.cfg.Export.Dir; dir != "" {
		files, err := export.Activity(dir, stored.Activity.ID, in.Power, result)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", stored.Activity.ID, err)
		}
		report.Exported = files
		s.log.Info("exported parquet", "activity", stored.Activity.ID, "balance", files.Balance, "timeline", files.Timeline)
	}
	return report, nil
}

// carryCapacity reuses the most recent estimated CP when this activity's power
// was recorded but too short to estimate one.
func (s *AnalysisService) carryCapacity(result *analysis.ActivityAnalysis, power []float64) error {
	if len(power) == 0 || result.CPSource != analysis.CPSourceNone {
		return nil
	}
	latest, err := s.store.LatestCPModel()
	if err != nil {
		return fmt.Errorf("loading previous CP: %w", err)
	}
	if latest == nil || latest.CriticalPower <= 0 {
		return nil
	}
	if err := result.ApplyCapacity(power, latest.CriticalPower, latest.WPrime, analysis.CPSourceHistory); err != nil {
		return err
	}
	result.Notes = append(result.Notes, fmt.Sprintf("W' balance uses previous CP %.0f W, W' %.0f J", latest.CriticalPower, latest.WPrime))
	return nil
}

func (s *AnalysisService) logResult(name string, r analysis.ActivityAnalysis) {
	attrs := []any{"activity", name, "cp_source", r.CPSource.String()}
	if r.VT1 != nil {
		attrs = append(attrs, "verdict", r.VT1.Verdict.String(), "beats", r.VT1.UsableBeats, "points", len(r.VT1.Timeline))
	}
	if r.CP != nil {
		attrs = append(attrs, "model", r.CP.Kind.String(), "fallback", r.CP.Fallback.String())
	}
	s.log.Info("analysis complete", attrs...)
	for _, note := range r.Notes {
		s.log.Warn("analysis note", "activity", name, "note", note)
	}
}

// History lists analysed activities, newest first, with the total count
func (s *AnalysisService) History(limit, offset int) ([]store.Activity, int, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	activities, err := s.store.ListActivities(limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing activities: %w", err)
	}
	total, err := s.store.CountActivities()
	if err != nil {
		return nil, 0, fmt.Errorf("counting activities: %w", err)
	}
	return activities, total, nil
}

// Stored loads a previously saved analysis
func (s *AnalysisService) Stored(id string) (*store.Analysis, error) {
	return s.store.GetAnalysis(id)
}
