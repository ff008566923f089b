package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"doc-summary/internal/alert"
	"doc-summary/internal/events"
	"doc-summary/internal/job"
	"doc-summary/internal/llm"
	"doc-summary/internal/llm/gemini"
	"doc-summary/internal/shared/config"
	"doc-summary/internal/shared/metrics"
	"doc-summary/internal/shared/storage/db"
	"doc-summary/internal/shared/storage/object"
	localstore "doc-summary/internal/shared/storage/object/local"
	s3store "doc-summary/internal/shared/storage/object/s3"
	"doc-summary/internal/shared/telemetry"
	"doc-summary/internal/validation"
)

// App holds the wired components of one workflow run.
type App struct {
	Config       config.Config
	DB           *sql.DB
	Store        object.Store
	Events       *events.Logger
	Alerts       alert.Sink
	Metrics      *metrics.Metrics
	Provider     *llm.Provider
	Validator    *validation.Validator
	Orchestrator *job.Orchestrator

	closers []io.Closer
}

// Build wires every component from cfg. The success summary and the console
// alert banner are written to stdout.
func Build(ctx context.Context, cfg config.Config, stdout io.Writer) (*App, error) {
	app := &App{Config: cfg, Metrics: metrics.New()}

	sink, err := app.buildEventSink(ctx)
	if err != nil {
		return nil, app.abort(err)
	}
	app.Events = events.NewLogger(sink, cfg.WorkflowName)

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return nil, app.abort(err)
	}
	if app.Alerts, err = buildAlerts(ctx, cfg, stdout); err != nil {
		return nil, app.abort(err)
	}

	client, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
	if err != nil {
		return nil, app.abort(err)
	}
	policy := llm.RetryPolicy{MaxAttempts: cfg.MaxCallAttempts, Delays: cfg.RetryDelays}
	app.Provider = llm.NewProvider(client, app.Events, policy, llm.TimerSleeper, app.Metrics)

	if app.Validator, err = validation.NewValidator(app.Events, cfg.StrictSchema, app.Metrics); err != nil {
		return nil, app.abort(err)
	}

	app.Orchestrator = job.NewOrchestrator(job.Deps{
		Events:    app.Events,
		Provider:  app.Provider,
		Validator: app.Validator,
		Store:     app.Store,
		Alerts:    app.Alerts,
		Metrics:   app.Metrics,
		Stdout:    stdout,
	}, cfg.MaxValidationAttempts, cfg.OutputKey)

	return app, nil
}

// Close flushes metrics and releases the event sinks and database.
func (a *App) Close() error {
	var errs []error
	if err := a.Metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		errs = append(errs, fmt.Errorf("write metrics: %w", err))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// abort releases whatever Build opened before err and returns err.
func (a *App) abort(err error) error {
	if cerr := a.Close(); cerr != nil {
		telemetry.Warn("bootstrap: cleanup after failed build", map[string]any{
			"cause": err.Error(),
			"error": cerr.Error(),
		})
	}
	return err
}

func (a *App) buildEventSink(ctx context.Context) (events.Sink, error) {
	var sinks events.MultiSink
	for _, name := range a.Config.EventSinks {
		switch name {
		case config.SinkFile:
			fs, err := events.OpenFileSink(a.Config.EventLogPath)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, fs)
			telemetry.Debug("event log opened", map[string]any{"path": fs.Path()})
			sinks = append(sinks, fs)
		case config.SinkPostgres:
			sqlDB, err := db.Connect(ctx, a.Config.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
			if err != nil {
				if a.Config.HasEventSink(config.SinkFile) {
					telemetry.Warn("bootstrap: postgres event sink disabled", map[string]any{"error": err.Error()})
					continue
				}
				return nil, err
			}
			a.DB = sqlDB
			a.closers = append(a.closers, sqlDB)
			sinks = append(sinks, events.NewPostgresSink(sqlDB))
		default:
			return nil, fmt.Errorf("unknown event sink %q", name)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.OutputStore {
	case config.StoreS3:
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildAlerts(ctx context.Context, cfg config.Config, stdout io.Writer) (alert.Sink, error) {
	var sinks alert.MultiSink
	for _, name := range cfg.AlertSinks {
		switch name {
		case config.AlertConsole:
			sinks = append(sinks, alert.NewConsoleSink(stdout))
		case config.AlertSQS:
			s, err := alert.NewSQSSink(ctx, cfg.AWSRegion, cfg.AlertSQSQueueURL)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		default:
			return nil, fmt.Errorf("unknown alert sink %q", name)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}
