// Package logging configures the process-wide slog logger for hook flows.
// Hooks run with their stdout/stderr attached to Claude Code, so structured
// records go to date-partitioned files instead: one file per UTC day under
// the first writable log directory, pruned after a retention window. When no
// directory is writable at all the default stderr logger stays in place; a
// hook losing its log output is still better than a hook failing over it.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dotcommander/claudesink/internal/app"
)

const (
	filePrefix = "claudesink-"
	fileSuffix = ".log"
	dateLayout = "2006-01-02"

	systemLogDir = "/var/log/claudesink"
	tempDirName  = "claudesink-logs"
)

// Setup points the default slog logger at today's log file and returns a
// closer. It never fails: when neither the configured directory, the system
// directory, nor the temp directory is writable, logging falls back to the
// stderr handler installed at startup and the closer is a no-op.
func Setup(flow string, cfg app.LoggingSettings) func() {
	dir, f := openLogFile(cfg.Dir)
	if f == nil {
		slog.Debug("no writable log directory, keeping stderr logging")
		return func() {}
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler).With("flow", flow, "pid", os.Getpid()))

	pruneOldFiles(dir, cfg.EffectiveRetentionDays())

	return func() { _ = f.Close() }
}

// openLogFile opens today's file in the first usable directory. Candidates in
// order: the configured directory, /var/log/claudesink, $TMPDIR/claudesink-logs.
func openLogFile(configured string) (string, *os.File) {
	name := filePrefix + time.Now().UTC().Format(dateLayout) + fileSuffix

	candidates := []string{}
	if configured != "" {
		candidates = append(candidates, configured)
	}
	candidates = append(candidates, systemLogDir, filepath.Join(os.TempDir(), tempDirName))

	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			continue
		}
		return dir, f
	}
	return "", nil
}

// pruneOldFiles removes log files whose date component is older than the
// retention window. Best-effort: removal errors and foreign file names are
// ignored.
func pruneOldFiles(dir string, retentionDays int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		day, ok := fileDate(e.Name())
		if !ok {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}

// fileDate extracts the date from a claudesink-2006-01-02.log file name.
func fileDate(name string) (time.Time, bool) {
	if len(name) != len(filePrefix)+len(dateLayout)+len(fileSuffix) {
		return time.Time{}, false
	}
	if name[:len(filePrefix)] != filePrefix || name[len(name)-len(fileSuffix):] != fileSuffix {
		return time.Time{}, false
	}
	day, err := time.Parse(dateLayout, name[len(filePrefix):len(name)-len(fileSuffix)])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// CurrentLogPath reports where Setup would write today, without opening it.
// Used by doctor.
func CurrentLogPath(cfg app.LoggingSettings) string {
	dir := cfg.Dir
	if dir == "" {
		dir = systemLogDir
	}
	return filepath.Join(dir, fmt.Sprintf("%s%s%s", filePrefix, time.Now().UTC().Format(dateLayout), fileSuffix))
}
