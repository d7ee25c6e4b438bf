// Package export writes analysis series to Parquet files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"threshold/internal/analysis"
)

const writerParallelism = 4

// ErrLengthMismatch is returned when power and balance series differ in length
var ErrLengthMismatch = errors.New("power and balance lengths differ")

// BalanceRow is one second of the W' balance series
type BalanceRow struct {
	Second  int64   `parquet:"name=second, type=INT64"`
	PowerW  float64 `parquet:"name=power_w, type=DOUBLE"`
	BalJ    float64 `parquet:"name=w_bal_j, type=DOUBLE"`
	Below20 bool    `parquet:"name=below_20pct, type=BOOLEAN"`
}

// TimelineRow is one emitted alpha1 window
type TimelineRow struct {
	TimeS          int64   `parquet:"name=time_s, type=INT64"`
	Alpha1         float64 `parquet:"name=alpha1, type=DOUBLE"`
	FitQuality     float64 `parquet:"name=fit_quality, type=DOUBLE"`
	StdErr         float64 `parquet:"name=std_err, type=DOUBLE"`
	Tier           string  `parquet:"name=tier, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Classification string  `parquet:"name=classification, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	WindowSamples  int64   `parquet:"name=window_samples, type=INT64"`
}

// Files lists what Activity wrote. Empty paths mean the series was absent.
type Files struct {
	Balance  string
	Timeline string
}

// Activity writes <id>_wbal.parquet and <id>_alpha1.parquet into dir
func Activity(dir, id string, power []float64, result analysis.ActivityAnalysis) (Files, error) {
	var files Files
	if err := os.MkdirAll(dir, 0755); err != nil {
		return files, fmt.Errorf("creating export directory: %w", err)
	}

	if len(result.Balance) > 0 {
		wPrime := 0.0
		if result.BalanceSummary != nil {
			wPrime = result.BalanceSummary.WPrime
		}
		path := filepath.Join(dir, id+"_wbal.parquet")
		if err := WriteBalance(path, power, result.Balance, wPrime); err != nil {
			return files, err
		}
		files.Balance = path
	}

	if result.VT1 != nil && len(result.VT1.Timeline) > 0 {
		path := filepath.Join(dir, id+"_alpha1.parquet")
		if err := WriteTimeline(path, result.VT1.Timeline); err != nil {
			return files, err
		}
		files.Timeline = path
	}

	return files, nil
}

// WriteBalance writes one row per second of a W' balance series
func WriteBalance(path string, power, balance []float64, wPrime float64) error {
	if len(power) != len(balance) {
		return fmt.Errorf("%d vs %d: %w", len(power), len(balance), ErrLengthMismatch)
	}
	rows := make([]BalanceRow, len(balance))
	for i, b := range balance {
		rows[i] = BalanceRow{
			Second:  int64(i),
			PowerW:  power[i],
			BalJ:    b,
			Below20: wPrime > 0 && b < 0.2*wPrime,
		}
	}
	if err := writeRows(path, rows); err != nil {
		return fmt.Errorf("writing balance parquet: %w", err)
	}
	return nil
}

// WriteTimeline writes the alpha1 timeline
func WriteTimeline(path string, points []analysis.TimelinePoint) error {
	rows := make([]TimelineRow, len(points))
	for i, p := range points {
		rows[i] = TimelineRow{
			TimeS:          int64(p.Time),
			Alpha1:         p.Alpha1,
			FitQuality:     p.FitQuality,
			StdErr:         p.StdErr,
			Tier:           p.Tier.String(),
			Classification: p.Classification.String(),
			WindowSamples:  int64(p.WindowSamples),
		}
	}
	if err := writeRows(path, rows); err != nil {
		return fmt.Errorf("writing timeline parquet: %w", err)
	}
	return nil
}

func writeRows[T any](path string, rows []T) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(T), writerParallelism)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
