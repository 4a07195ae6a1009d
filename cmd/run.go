// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
	"github.com/autoedu/autoedu-cli/internal/browser/interactor"
	"github.com/autoedu/autoedu-cli/internal/browser/resolver"
	"github.com/autoedu/autoedu-cli/internal/browser/session"
	"github.com/autoedu/autoedu-cli/internal/config"
	"github.com/autoedu/autoedu-cli/internal/dispatch"
	"github.com/autoedu/autoedu-cli/internal/input"
	"github.com/autoedu/autoedu-cli/internal/observability"
	"github.com/autoedu/autoedu-cli/internal/pipeline"
	"github.com/autoedu/autoedu-cli/internal/portal/udise"
	"github.com/autoedu/autoedu-cli/internal/reporting"
	"github.com/autoedu/autoedu-cli/internal/store"
)

// newRunCommand creates the command that executes the configured portal
// task once for every record in the input file.
func newRunCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured portal task over an input file",
		Long: `Run opens a browser session against the configured portal, logs in,
and executes the selected task (for example student/import) once per
record in the input file. Every record ends in a terminal status; the
run report lists them in input order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Input.File == "" {
				return fmt.Errorf("input.file is required (use --input)")
			}
			return runPipeline(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "record input file (.csv or .json)")
	flags.String("module", "", "portal module key (default from config)")
	flags.String("task", "", "portal task key (default from config)")
	flags.String("format", "", "report format: json or text")
	flags.StringP("output", "o", "", "report output path (default stdout)")
	flags.Bool("headless", false, "run the browser headless")

	_ = v.BindPFlag("input.file", flags.Lookup("input"))
	_ = v.BindPFlag("portal.module", flags.Lookup("module"))
	_ = v.BindPFlag("portal.task", flags.Lookup("task"))
	_ = v.BindPFlag("report.format", flags.Lookup("format"))
	_ = v.BindPFlag("report.output", flags.Lookup("output"))
	_ = v.BindPFlag("browser.headless", flags.Lookup("headless"))

	return cmd
}

// runPipeline wires the session, interaction core, portal routines and
// reporting together and executes one full run.
func runPipeline(ctx context.Context, cfg *config.Config) error {
	logger := observability.GetLogger()

	records, err := input.LoadRecords(cfg.Input.File)
	if err != nil {
		return err
	}
	logger.Info("Loaded records",
		zap.Int("count", len(records)),
		zap.String("file", cfg.Input.File))

	reporter, err := reporting.New(cfg.Report.Format, cfg.Report.Output)
	if err != nil {
		return err
	}
	defer func() {
		if err := reporter.Close(); err != nil {
			logger.Warn("Failed to close reporter", zap.Error(err))
		}
	}()

	manager := session.NewManager(cfg.Browser, logger)
	sess, err := manager.Open(ctx, cfg.Portal.URL)
	if err != nil {
		return err
	}
	// The session is released exactly once no matter how the run ends.
	defer manager.Close(sess)

	res := resolver.New(sess, cfg.Interaction.Timeout, logger)
	inter := interactor.New(res, sess, cfg.Interaction.Retries, cfg.Interaction.Backoff, logger)

	portal := udise.New(cfg.Portal, inter, res, logger)
	registry := dispatch.NewRegistry(logger)
	portal.Register(registry)
	registry.Freeze()

	school, err := portal.Login(ctx, sess)
	if err != nil {
		return err
	}
	logger.Info("Logged in", zap.String("school", school))

	run, runErr := pipeline.New(registry, logger).Run(ctx, records, cfg.Portal.Module, cfg.Portal.Task, sess)
	if run == nil {
		return runErr
	}
	// A session failure still leaves a partial run; report what was
	// processed before propagating the error.
	if err := reporter.Write(run); err != nil {
		return err
	}

	if cfg.Database.Enabled {
		if err := saveRunHistory(ctx, cfg, run, logger); err != nil {
			// The report is already written; losing history is not
			// worth failing the whole run.
			logger.Warn("Failed to persist run history", zap.Error(err))
		}
	}

	logger.Info("Run finished",
		zap.String("run_id", run.RunID),
		zap.Int("succeeded", run.Summary.Succeeded),
		zap.Int("failed", run.Summary.Failed),
		zap.Int("skipped", run.Summary.Skipped),
		zap.Bool("aborted", run.Aborted))
	return runErr
}

func saveRunHistory(ctx context.Context, cfg *config.Config, run *schemas.PipelineRun, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	s, err := store.New(ctx, pool, logger)
	if err != nil {
		return err
	}
	return s.SaveRun(ctx, run)
}
