package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"famiglia/internal/action"
	"famiglia/internal/actions"
	"famiglia/internal/backend"
	"famiglia/internal/config"
	"famiglia/internal/core"
	"famiglia/internal/report"
	gsheet "famiglia/internal/report/google"
)

// staticSession satisfies action.SessionReader with the service identity; the
// exporter has no browser session.
type staticSession struct {
	id action.Identity
}

func (s staticSession) Identity(_ context.Context) (*action.Identity, error) {
	return &s.id, nil
}

// noSelection keeps family resolution explicit: the exporter always names the
// family it is exporting.
type noSelection struct{}

func (noSelection) Selected(_ context.Context, _ string) (string, bool) { return "", false }
func (noSelection) Select(_ context.Context, _, _ string) error         { return nil }

// noViews drops invalidations; there is no UI to refresh.
type noViews struct{}

func (noViews) Invalidate(_ context.Context, _ ...string) {}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	prev := time.Now().AddDate(0, -1, 0)
	year := flag.Int("year", prev.Year(), "report year")
	month := flag.Int("month", int(prev.Month()), "report month (1-12)")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.BackendServiceToken == "" {
		logger.Error("BACKEND_SERVICE_TOKEN is required for report export")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var writer report.Writer
	writer, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	api := backend.New(cfg.BackendBaseURL)
	resolver := &action.Resolver{
		Sessions: staticSession{id: action.Identity{
			ID:    "report-export",
			Name:  "report-export",
			Token: cfg.BackendServiceToken,
		}},
		Selection: noSelection{},
		Families:  &actions.Directory{API: api},
	}
	svc := actions.New(api, resolver, noViews{}, nil)

	var families []core.Family
	if err := api.Get(ctx, cfg.BackendServiceToken, "/families", &families); err != nil {
		logger.Error("Failed to list families", "error", err)
		os.Exit(1)
	}
	logger.Info("Exporting month reports", "year", *year, "month", *month, "families", len(families))

	exported := 0
	for _, fam := range families {
		res := svc.DashboardStats(ctx, fam.UUID, *year, *month)
		if !res.Success {
			logger.Error("Failed to compute stats",
				"family_uuid", fam.UUID,
				"code", res.Error.Code,
				"message", res.Error.Message)
			continue
		}

		ref, err := writer.Append(ctx, report.MonthReport{
			FamilyName: fam.Name,
			Stats:      res.Data,
		})
		if err != nil {
			logger.Error("Failed to append report", "family_uuid", fam.UUID, "error", err)
			continue
		}
		logger.Info("Report exported", "family_uuid", fam.UUID, "ref", ref)
		exported++
	}

	if exported < len(families) {
		logger.Warn("Some families were not exported", "exported", exported, "total", len(families))
		os.Exit(1)
	}
	logger.Info("Export complete", "exported", exported)
}
