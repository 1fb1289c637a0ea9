package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"holindex/internal/config"
	"holindex/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./holindex.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	diagnose   = flag.Bool("diagnose", false, "Report unknown identifiers in the given files and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("holindex v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
				if err == nil {
					output = f
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
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
		if *configPath == "./holindex.toml" {
			if cfg2, err2 := config.Load("./holindex.example.toml"); err2 == nil {
				cfg, err = cfg2, nil
			} else if os.IsNotExist(err) {
				cfg, err = config.Default(), nil
			}
		}
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	if cfg.Output.TraceGRPC != "" {
		shutdown, err := observability.SetupTracing(ctx, cfg.Output.TraceGRPC)
		if err != nil {
			slog.Warn("failed to set up tracing", "endpoint", cfg.Output.TraceGRPC, "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	app, err := NewApp(cfg, flag.Args())
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if cfg.Output.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Output.MetricsAddr, app.Health)
		if err := srv.Start(); err != nil {
			slog.Warn("failed to start metrics server", "addr", cfg.Output.MetricsAddr, "error", err)
		} else {
			defer srv.Stop(ctx)
		}
	}

	// Initial scan
	if err := app.InitialScan(ctx); err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	if *diagnose {
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "diagnose mode requires at least one file argument: holindex --diagnose <file.hl>")
			os.Exit(1)
		}
		clean, err := app.PrintDiagnostics(flag.Args())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if !clean {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if !*ui {
		app.PrintSummary()
	}

	if *once {
		os.Exit(0)
	}

	// Watch mode
	if err := app.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := app.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		// Block forever
		select {}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "holindex", "holindex.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "holindex", "holindex.log")
	}

	return "holindex.log"
}
