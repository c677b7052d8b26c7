// # cmd/typecov/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"typecov/internal/config"
	"typecov/internal/observability"
)

var (
	configPath = flag.String("config", "./typecov.toml", "Path to config file")
	diff       = flag.Bool("diff", false, "Diff two snapshot files")
	record     = flag.Bool("record", false, "Record a snapshot into the history store")
	timeline   = flag.Bool("timeline", false, "Render the recorded snapshot timeline")
	watch      = flag.Bool("watch", false, "Watch the snapshot directory and re-render on changes")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode (requires -watch)")
	noColor    = flag.Bool("no-color", false, "Disable colorized output")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("typecov v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stderr
	if *ui {
		// In UI mode, avoid stderr logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err == nil {
				output = f
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./typecov.toml" {
			cfg, err = config.Load("./typecov.example.toml")
		}
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *noColor {
		cfg.Report.Colors = false
	}

	if *diff && flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "diff mode requires two snapshot arguments: typecov -diff <from.json> <to.json>")
		os.Exit(1)
	}
	if (*record || (!*diff && !*timeline && !*watch)) && flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: typecov [flags] <snapshot.json>")
		os.Exit(1)
	}
	if *ui && !*watch {
		fmt.Fprintln(os.Stderr, "-ui requires -watch")
		os.Exit(1)
	}

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	app, err := NewApp(cfg, os.Stdout)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	switch {
	case *diff:
		err = app.Diff(flag.Arg(0), flag.Arg(1))
	case *record:
		err = app.Record(flag.Arg(0))
	case *timeline:
		err = app.Timeline(os.Stdout)
	case *watch:
		err = runWatch(ctx, app)
	default:
		err = app.Report(flag.Arg(0))
	}
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runWatch(ctx context.Context, app *App) error {
	var obsServer *observability.Server
	if addr := app.Config.Observability.Addr; addr != "" {
		obsServer = observability.NewServer(addr, app.HealthStatus)
		if err := obsServer.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obsServer.Stop(stopCtx)
		}()
	}

	if err := app.StartWatcher(); err != nil {
		return err
	}

	if *ui {
		return app.RunUI()
	}

	// Block forever
	select {}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "typecov", "typecov.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "typecov", "typecov.log")
	}

	return "typecov.log"
}
