package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"worktrack/internal/adapters/logger"
	otelAdapter "worktrack/internal/adapters/otel"
	"worktrack/internal/adapters/turso"
	"worktrack/internal/domain"
	"worktrack/internal/estimator"
	"worktrack/internal/infrastructure/config"
	"worktrack/internal/migrate"
	"worktrack/internal/ports"
	"worktrack/internal/tracker"
	"worktrack/internal/util"
)

// app wires the repositories and services for one command invocation.
type app struct {
	cfg       *config.CLI
	db        *sql.DB
	tracker   *tracker.Service
	estimator *estimator.Service
	exporter  ports.TelemetryExporter
}

// openApp opens the database, runs pending migrations (idempotent, safe on
// every start) and builds the service graph.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := turso.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log := logger.NewFileLogger(cfg.DataDir())

	var exporter ports.TelemetryExporter = otelAdapter.NewNoOpExporter()
	if otelCfg := otelAdapter.LoadConfig(); otelCfg.Enabled {
		exp, err := otelAdapter.NewExporter(ctx, otelCfg)
		if err != nil {
			log.Error(fmt.Sprintf("Failed to create OTEL exporter, continuing without: %v", err))
		} else {
			exporter = exp
		}
	}

	sessions := turso.NewSessionRepository(db)
	segments := turso.NewSegmentRepository(db)
	metrics := turso.NewMetricsRepository(db)
	history := turso.NewHistoryRepository(db)

	return &app{
		cfg:       cfg,
		db:        db,
		tracker:   tracker.NewService(sessions, segments, metrics, exporter, log),
		estimator: estimator.NewService(history),
		exporter:  exporter,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	_ = a.exporter.Close(ctx)
	_ = a.db.Close()
}

// printSession writes a one-session summary to stdout.
func printSession(s *domain.WorkSession) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", s.ID)
	fmt.Fprintf(w, "Feature:\t%s\n", s.FeatureID)
	if s.FeatureDescription != "" {
		fmt.Fprintf(w, "Description:\t%s\n", s.FeatureDescription)
	}
	fmt.Fprintf(w, "Scope:\t%s\n", s.Scope)
	fmt.Fprintf(w, "Status:\t%s\n", s.Status)
	fmt.Fprintf(w, "Started:\t%s\n", util.FormatDateTime(util.FormatTime(s.StartedAt)))
	if s.CompletedAt != nil {
		fmt.Fprintf(w, "Ended:\t%s\n", util.FormatDateTime(util.FormatTime(*s.CompletedAt)))
	}
	fmt.Fprintf(w, "Active time:\t%s\n", domain.FormatSeconds(s.TotalActiveSeconds))
	if s.Satisfaction != nil {
		fmt.Fprintf(w, "Satisfaction:\t%d/5\n", *s.Satisfaction)
	}
	if s.Notes != nil && *s.Notes != "" {
		fmt.Fprintf(w, "Notes:\t%s\n", *s.Notes)
	}
	w.Flush()
}

// strPtr returns a pointer to s, or nil when s is empty. Cobra flags cannot
// distinguish "unset" from "", so empty means absent.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// int64Ptr returns a pointer to v, or nil when v is zero.
func int64Ptr(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
