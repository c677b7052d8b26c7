// # cmd/typecov/app.go
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"typecov/internal/config"
	"typecov/internal/coverage"
	"typecov/internal/history"
	"typecov/internal/observability"
	"typecov/internal/report"
	"typecov/internal/watcher"
)

type App struct {
	Config *config.Config
	Store  *history.Store

	out        io.Writer
	watcher    *watcher.Watcher
	limiter    *watcher.RenderLimiter
	teaProgram *tea.Program

	mu           sync.Mutex
	lastSnapshot int64
}

func NewApp(cfg *config.Config, out io.Writer) (*App, error) {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Store:   store,
		out:     out,
		limiter: watcher.NewRenderLimiter(cfg.Watch.RendersPerSecond, cfg.Watch.RenderBurst),
	}, nil
}

func (a *App) Close() error {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	return a.Store.Close()
}

// Report renders one snapshot file as an indented coverage report.
func (a *App) Report(path string) error {
	_, span := observability.Tracer.Start(context.Background(), "app.Report")
	defer span.End()
	timer := prometheus.NewTimer(observability.RenderDuration.WithLabelValues("report"))
	defer timer.ObserveDuration()

	snapshot, err := coverage.FromFile(path)
	if err != nil {
		return err
	}
	observability.SnapshotsLoadedTotal.Inc()

	printer := report.NewSnapshotPrinter(a.out, report.WithColors(a.Config.Report.Colors))
	return printer.PrintSnapshot(snapshot)
}

// Diff renders the delta table between two snapshot files.
func (a *App) Diff(fromPath, toPath string) error {
	_, span := observability.Tracer.Start(context.Background(), "app.Diff")
	defer span.End()
	timer := prometheus.NewTimer(observability.RenderDuration.WithLabelValues("diff"))
	defer timer.ObserveDuration()

	from, err := coverage.FromFile(fromPath)
	if err != nil {
		return err
	}
	to, err := coverage.FromFile(toPath)
	if err != nil {
		return err
	}
	observability.SnapshotsLoadedTotal.Add(2)

	printer := report.NewSnapshotPrinter(a.out, report.WithColors(a.Config.Report.Colors))
	return printer.PrintDiff(from, to)
}

// Record stamps a snapshot file with git metadata and persists it under
// the configured project key.
func (a *App) Record(path string) error {
	_, span := observability.Tracer.Start(context.Background(), "app.Record")
	defer span.End()

	snapshot, err := coverage.FromFile(path)
	if err != nil {
		return err
	}
	observability.SnapshotsLoadedTotal.Inc()
	history.StampSnapshot(snapshot, ".")

	timer := prometheus.NewTimer(observability.StoreWriteDuration)
	defer timer.ObserveDuration()
	if err := a.Store.SaveSnapshot(a.Config.Project, snapshot); err != nil {
		return err
	}
	observability.SnapshotsRecordedTotal.Inc()

	a.mu.Lock()
	a.lastSnapshot = snapshot.Timestamp
	a.mu.Unlock()

	slog.Info("snapshot recorded",
		"project", a.Config.Project,
		"commit", snapshot.CommitSHA,
		"files", snapshot.Files)
	return nil
}

// Timeline renders the recorded snapshot series in the configured format.
func (a *App) Timeline(out io.Writer) error {
	_, span := observability.Tracer.Start(context.Background(), "app.Timeline")
	defer span.End()
	timer := prometheus.NewTimer(observability.RenderDuration.WithLabelValues("timeline"))
	defer timer.ObserveDuration()

	snapshots, err := a.Store.LoadSnapshots(a.Config.Project, time.Time{})
	if err != nil {
		return err
	}

	timelineReport, err := history.BuildTimelineReport(snapshots, a.Config.Timeline.Window)
	if err != nil {
		return err
	}

	var data []byte
	switch a.Config.Timeline.Format {
	case "json":
		data, err = report.RenderTimelineJSON(timelineReport)
	case "tsv":
		data, err = report.RenderTimelineTSV(timelineReport)
	default:
		return fmt.Errorf("unsupported timeline format %q", a.Config.Timeline.Format)
	}
	if err != nil {
		return err
	}

	_, err = out.Write(data)
	return err
}

// StartWatcher begins following the snapshot drop directory.
func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Exclude.Files, a.onSnapshotChange)
	if err != nil {
		return err
	}
	if err := w.Watch(a.Config.SnapshotDir); err != nil {
		_ = w.Close()
		return err
	}
	a.watcher = w
	slog.Info("watching snapshot directory", "dir", a.Config.SnapshotDir)
	return nil
}

func (a *App) onSnapshotChange(paths []string) {
	if !a.limiter.Allow() {
		observability.RendersThrottledTotal.Inc()
		return
	}

	path := newestPath(paths)
	if path == "" {
		return
	}

	snapshot, err := coverage.FromFile(path)
	if err != nil {
		slog.Warn("failed to load changed snapshot", "path", path, "error", err)
		return
	}
	observability.SnapshotsLoadedTotal.Inc()

	a.mu.Lock()
	a.lastSnapshot = snapshot.Timestamp
	a.mu.Unlock()

	if a.teaProgram != nil {
		a.pushUpdate(snapshot)
		return
	}

	a.renderChange(path, snapshot)
}

// renderChange prints the fresh report and, when history has an earlier
// recording, the diff against it.
func (a *App) renderChange(path string, snapshot *coverage.Snapshot) {
	timer := prometheus.NewTimer(observability.RenderDuration.WithLabelValues("watch"))
	defer timer.ObserveDuration()

	fmt.Fprintf(a.out, "--- %s ---\n", filepath.Base(path))
	printer := report.NewSnapshotPrinter(a.out, report.WithColors(a.Config.Report.Colors))
	if err := printer.PrintSnapshot(snapshot); err != nil {
		slog.Error("failed to render snapshot", "path", path, "error", err)
		return
	}

	previous, err := a.Store.Latest(a.Config.Project, 1)
	if err != nil {
		slog.Warn("failed to load previous snapshot", "error", err)
		return
	}
	if len(previous) == 1 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Change against last recording:")
		if err := printer.PrintDiff(previous[0], snapshot); err != nil {
			slog.Error("failed to render diff", "error", err)
		}
	}
}

// HealthStatus reports watch-mode liveness for the observability server.
func (a *App) HealthStatus(ctx context.Context) observability.HealthStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return observability.HealthStatus{Status: "up", LastSnapshot: a.lastSnapshot}
}

func (a *App) pushUpdate(snapshot *coverage.Snapshot) {
	recorded, err := a.Store.Latest(a.Config.Project, 20)
	if err != nil {
		slog.Warn("failed to load recorded snapshots", "error", err)
	}

	var buf bytes.Buffer
	printer := report.NewSnapshotPrinter(&buf, report.WithColors(false))
	if err := printer.PrintSnapshot(snapshot); err != nil {
		slog.Error("failed to render snapshot for UI", "error", err)
	}

	a.teaProgram.Send(updateMsg{
		snapshot: snapshot,
		rendered: buf.String(),
		recorded: recorded,
	})
}

func newestPath(paths []string) string {
	candidates := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		fi, errI := os.Stat(candidates[i])
		fj, errJ := os.Stat(candidates[j])
		if errI != nil || errJ != nil {
			return candidates[i] < candidates[j]
		}
		return fi.ModTime().Before(fj.ModTime())
	})
	return candidates[len(candidates)-1]
}
