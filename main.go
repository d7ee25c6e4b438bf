package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"threshold/internal/auth"
	"threshold/internal/config"
	"threshold/internal/logging"
	"threshold/internal/service"
	"threshold/internal/store"
	"threshold/internal/strava"
	"threshold/internal/tui"
)

const plainWidth = 100

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s analyze [-plain] [-export dir] <file.fit>\n", name)
	fmt.Fprintf(os.Stderr, "  %s strava [-plain] [-export dir] <activity-id>\n", name)
	fmt.Fprintf(os.Stderr, "  %s history [-plain] [-limit n] [analysis-id]\n", name)
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("missing command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	plain := fs.Bool("plain", false, "Print the report instead of opening the viewer")
	exportDir := fs.String("export", "", "Write Parquet files to this directory")
	limit := fs.Int("limit", service.DefaultHistoryLimit, "Activities to list")
	fs.Usage = usage
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if *exportDir != "" {
		cfg.Export.Dir = *exportDir
	}
	// No TTY means no viewer
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		*plain = true
	}

	// Open database
	db, err := store.Open("")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	switch cmd {
	case "analyze":
		if fs.NArg() != 1 {
			usage()
			return errors.New("analyze needs a FIT file")
		}
		svc := service.NewAnalysisService(db, nil, cfg, logger)
		report, err := svc.AnalyzeFile(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		return show(report, *plain)

	case "strava":
		if fs.NArg() != 1 {
			usage()
			return errors.New("strava needs an activity id")
		}
		id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			return fmt.Errorf("parsing activity id %q: %w", fs.Arg(0), err)
		}
		client, err := stravaClient(ctx, db, cfg, logger)
		if err != nil {
			return err
		}
		svc := service.NewAnalysisService(db, client, cfg, logger)
		report, err := svc.AnalyzeStrava(ctx, id)
		if err != nil {
			return err
		}
		return show(report, *plain)

	case "history":
		svc := service.NewAnalysisService(db, nil, cfg, logger)
		return history(svc, fs.Arg(0), *limit, *plain)

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(os.Stderr, "No config file found. Wrote an example to %s/config.json\n", configDir)
		def := config.DefaultConfig()
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("config validation failed: %w (edit %s/config.json)", err, configDir)
	}
	return cfg, nil
}

func stravaClient(ctx context.Context, db *store.DB, cfg *config.Config, logger *slog.Logger) (*strava.Client, error) {
	if err := cfg.ValidateStrava(); err != nil {
		return nil, err
	}

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  auth.RedirectURL(),
	})
	tokens, err := auth.Session(ctx, oauthCfg, db, os.Stderr)
	if err != nil {
		return nil, err
	}

	client := strava.NewClient(tokens)
	short, daily := client.RateLimitStatus()
	logger.Debug("strava client ready", "short_remaining", short, "daily_remaining", daily)
	return client, nil
}

func show(report *service.Report, plain bool) error {
	if plain {
		fmt.Println(tui.RenderReport(report, plainWidth))
		return nil
	}
	if err := tui.Run(tui.NewReportApp(report)); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func history(svc *service.AnalysisService, id string, limit int, plain bool) error {
	if !plain {
		app := tui.NewHistoryApp(svc, limit)
		if id != "" {
			app = tui.NewStoredApp(svc, id, limit)
		}
		if err := tui.Run(app); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
		return nil
	}

	if id != "" {
		a, err := svc.Stored(id)
		if err != nil {
			return err
		}
		fmt.Println(tui.RenderStored(a, plainWidth))
		return nil
	}

	activities, total, err := svc.History(limit, 0)
	if err != nil {
		return err
	}
	fmt.Printf("%d analysed activities\n\n", total)
	for _, a := range activities {
		fmt.Printf("%s  %-25s  %-6s  %6s beats  %s\n",
			a.ID, a.Name, a.Source, humanize.Comma(int64(a.Beats)), humanize.Time(a.AnalyzedAt))
	}
	return nil
}
