package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/panaderiapro/panaderiapro/cmd/panaderiactl/cli"
	"github.com/panaderiapro/panaderiapro/internal/app"
	"github.com/panaderiapro/panaderiapro/internal/diagnostics"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/jobs"
)

const usage = `usage: panaderiactl <command>

commands:
  doctor [-json]         check store configuration and table access
  migrate                apply pending schema migrations
  jobs trigger <name>    enqueue reports:daily_rebuild or reports:refresh_views
  jobs stats [-json]     show default queue counters
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	logger := app.NewLogger(cfg)

	switch args[0] {
	case "doctor":
		fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
		fs.SetOutput(stderr)
		jsonOut := fs.Bool("json", false, "print the report as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		checker := diagnostics.NewChecker(nil, cfg.StoreError())
		if cfg.StoreError() == nil {
			pool, err := db.New(ctx, storeOptions(cfg))
			if err != nil {
				checker = diagnostics.NewChecker(nil, err)
			} else {
				defer pool.Close()
				checker = diagnostics.NewChecker(diagnostics.NewPoolCounter(pool), nil)
			}
		}
		return cli.DoctorCommand(ctx, checker, cli.DoctorOptions{JSONOutput: *jsonOut, Stdout: stdout, Stderr: stderr})

	case "migrate":
		pool, err := db.New(ctx, storeOptions(cfg))
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "migrate: %v\n", err)
			return 1
		}
		defer pool.Close()
		return cli.MigrateCommand(ctx, db.NewMigrator(pool, logger), stdout, stderr)

	case "jobs":
		return runJobs(ctx, cfg, args[1:], stdout, stderr)
	}
	_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
	return 2
}

func runJobs(ctx context.Context, cfg *app.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	switch args[0] {
	case "trigger":
		if len(args) != 2 {
			_, _ = fmt.Fprintln(stderr, "jobs trigger: expected exactly one job name")
			return 2
		}
		client := jobs.NewClient(redisOpts)
		defer func() {
			if err := client.Close(); err != nil {
				slog.Default().Warn("jobs client close", slog.Any("error", err))
			}
		}()
		return cli.NewJobsCLI(client, nil).TriggerCommand(ctx, args[1], cli.JobsOptions{Stdout: stdout, Stderr: stderr})

	case "stats":
		fs := flag.NewFlagSet("jobs stats", flag.ContinueOnError)
		fs.SetOutput(stderr)
		jsonOut := fs.Bool("json", false, "print the counters as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				slog.Default().Warn("inspector close", slog.Any("error", err))
			}
		}()
		return cli.NewJobsCLI(nil, inspector).StatsCommand(ctx, cli.JobsOptions{JSONOutput: *jsonOut, Stdout: stdout, Stderr: stderr})
	}
	_, _ = fmt.Fprintf(stderr, "unknown jobs command %q\n", args[0])
	return 2
}

func storeOptions(cfg *app.Config) db.Options {
	return db.Options{
		URL:      cfg.StoreURL,
		Key:      cfg.StoreKey,
		MaxConns: cfg.StoreMaxConns,
		Timeout:  cfg.StoreTimeout,
	}
}
