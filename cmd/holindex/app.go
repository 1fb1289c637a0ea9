package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"holindex/internal/config"
	"holindex/internal/database"
	"holindex/internal/diagnostics"
	"holindex/internal/history"
	"holindex/internal/parser"
	"holindex/internal/shared/observability"
	"holindex/internal/shared/util"
	"holindex/internal/watcher"
)

type App struct {
	Config     *config.Config
	DB         *database.DB
	History    *history.Store
	teaProgram *tea.Program
	limiter    *util.Limiter
	keywords   parser.Keywords

	// documents are the proof scripts named on the command line; empty means
	// index everything under the configured roots.
	documents []string

	// Unresolved dependency strings from the most recent pass, for the
	// summary and the UI.
	lastUnresolved []string
	lastDuration   time.Duration
}

func NewApp(cfg *config.Config, documents []string) (*App, error) {
	db, err := database.New(database.Options{
		Roots:        cfg.RootPaths,
		BaseLibrary:  cfg.BaseLibrary,
		ExcludeFiles: cfg.Exclude.Files,
	})
	if err != nil {
		return nil, err
	}

	var store *history.Store
	if cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
	}

	return &App{
		Config:    cfg,
		DB:        db,
		History:   store,
		limiter:   util.NewLimiter(cfg.Index.Rate, cfg.Index.Burst),
		keywords:  parser.Keywords(cfg.Keywords),
		documents: documents,
	}, nil
}

func (a *App) Close() error {
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}

func (a *App) InitialScan(ctx context.Context) error {
	start := time.Now()
	unresolvedSet := make(map[string]bool)

	if len(a.documents) > 0 {
		for _, doc := range a.documents {
			report, err := a.DB.IndexDocumentWithDeps(ctx, doc, a.keywords)
			if err != nil {
				// Base-library failures leave the document usable; surface
				// them without aborting the remaining documents.
				slog.Warn("scan incomplete", "document", doc, "error", err)
			}
			for _, dep := range report.Unresolved {
				unresolvedSet[dep] = true
			}
			a.snapshot(doc, report.Duration, len(report.Unresolved))
		}
	} else {
		files, err := util.CollectSourceFiles(a.Config.RootPaths, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
		if err != nil {
			return err
		}
		for _, path := range files {
			res, err := a.DB.IndexFile(path, a.keywords)
			if err != nil {
				slog.Warn("failed to index file", "path", path, "error", err)
				continue
			}
			for _, dep := range res.Unresolved {
				unresolvedSet[dep] = true
			}
		}
		a.snapshot("", time.Since(start), len(unresolvedSet))
	}

	a.lastUnresolved = util.SortedStringKeys(unresolvedSet)
	a.lastDuration = time.Since(start)
	return nil
}

func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))
	ctx := context.Background()
	start := time.Now()
	unresolvedSet := make(map[string]bool)

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.DB.RemoveFile(path)
			continue
		}

		if err := a.limiter.Wait(ctx, 1); err != nil {
			slog.Warn("re-index throttled out", "path", path, "error", err)
			continue
		}

		report, err := a.DB.IndexDocumentWithDeps(ctx, path, a.keywords)
		if err != nil {
			slog.Warn("failed to re-index file", "path", path, "error", err)
		}
		for _, dep := range report.Unresolved {
			unresolvedSet[dep] = true
		}
	}

	a.lastUnresolved = util.SortedStringKeys(unresolvedSet)
	a.lastDuration = time.Since(start)
	a.snapshot("", a.lastDuration, len(a.lastUnresolved))

	a.PrintSummary()

	if a.teaProgram != nil {
		stats := a.DB.Stats()
		a.teaProgram.Send(updateMsg{
			unresolved:  a.lastUnresolved,
			files:       stats.Files,
			definitions: stats.Definitions,
			modules:     stats.Modules,
		})
	}

	if a.Config.Output.AlertBeep && len(a.lastUnresolved) > 0 {
		fmt.Print("\a")
	}
}

func (a *App) PrintDiagnostics(paths []string) (bool, error) {
	clean := true
	for _, path := range paths {
		findings, err := diagnostics.Scan(a.DB, path, nil)
		if err != nil {
			return false, err
		}
		for _, f := range findings {
			clean = false
			fmt.Printf("%s:%d:%d: %s: %s\n", f.Path, f.StartLine, f.StartCol, f.Severity, f.Message)
		}
	}
	if clean {
		fmt.Println("No unknown identifiers found.")
	}
	return clean, nil
}

func (a *App) PrintSummary() {
	stats := a.DB.Stats()

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Indexed: %d files (%d base), %d definitions, %d modules in %v\n",
		stats.Files, stats.BaseFiles, stats.Definitions, stats.Modules, a.lastDuration.Round(time.Millisecond))

	if len(a.lastUnresolved) > 0 {
		fmt.Printf("❓ FOUND %d UNRESOLVED DEPENDENCIES:\n", len(a.lastUnresolved))
		if a.Config.Output.AlertSummary {
			for _, dep := range a.lastUnresolved {
				fmt.Printf("   %s\n", dep)
			}
		}
	} else {
		fmt.Println("✅ All dependencies resolved.")
	}
	fmt.Println(strings.Repeat("-", 40))
}

func (a *App) Health() observability.HealthStatus {
	stats := a.DB.Stats()
	return observability.HealthStatus{
		Status:      "up",
		Files:       stats.Files,
		Definitions: stats.Definitions,
	}
}

func (a *App) RunUI() error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	// Push the state of the initial scan before the first watcher event.
	go func() {
		stats := a.DB.Stats()
		a.teaProgram.Send(updateMsg{
			unresolved:  a.lastUnresolved,
			files:       stats.Files,
			definitions: stats.Definitions,
			modules:     stats.Modules,
		})
	}()

	_, err := p.Run()
	return err
}

func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.New(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	// Note: We don't close here, it should run forever
	roots := a.watchRoots()
	return w.Watch(roots)
}

// watchRoots keeps the configured roots that exist as directories,
// deduplicated. "." means the working directory here; only dependency
// resolution reads it as the importing file's directory.
func (a *App) watchRoots() []string {
	seen := make(map[string]bool)
	var roots []string
	for _, root := range a.Config.RootPaths {
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	sort.Strings(roots)
	return roots
}

func (a *App) snapshot(document string, duration time.Duration, unresolved int) {
	if a.History == nil {
		return
	}
	stats := a.DB.Stats()
	err := a.History.SaveSnapshot(history.Snapshot{
		Document:    document,
		Files:       stats.Files,
		Definitions: stats.Definitions,
		Modules:     stats.Modules,
		BaseFiles:   stats.BaseFiles,
		Unresolved:  unresolved,
		Duration:    duration,
	})
	if err != nil {
		slog.Warn("failed to save history snapshot", "error", err)
	}
}
