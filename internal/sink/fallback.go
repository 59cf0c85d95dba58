package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/claudesink/internal/models"
)

// fallbackRecord is one YAML sequence item in the fallback file. Appending
// a marshaled single-item sequence keeps the whole file a valid top-level
// sequence without ever rewriting existing bytes.
type fallbackRecord struct {
	CreatedAt  string `yaml:"created_at"`
	SessionID  string `yaml:"session_id,omitempty"`
	Repository string `yaml:"repository,omitempty"`
	Prompt     string `yaml:"prompt"`
}

// FileSink appends records to a local YAML file. It exists for exactly one
// reason: a user prompt is unrecoverable once the hook returns, so when the
// database is unreachable the prompt still has to land somewhere durable.
type FileSink struct {
	Path string

	// lockWait bounds how long Deliver polls for the advisory lock.
	// Shortened in tests.
	lockWait time.Duration
}

// NewFileSink returns a FileSink appending to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path, lockWait: defaultLockWait}
}

func (s *FileSink) Name() string { return "fallback-file" }

// CheckConfig fails only when no path could be resolved at all, which means
// the hook ran without a project directory or working directory.
func (s *FileSink) CheckConfig() error {
	if s.Path == "" {
		return errors.New("no fallback file path resolvable")
	}
	return nil
}

// Deliver appends rec under an exclusive advisory lock. Concurrent hook
// processes serialize on the sidecar lock file so interleaved appends cannot
// shear each other's YAML.
func (s *FileSink) Deliver(_ context.Context, rec models.OutputRecord) error {
	if err := s.CheckConfig(); err != nil {
		return err
	}

	lock, err := acquireLock(s.Path+lockSuffix, s.lockWait)
	if err != nil {
		return fmt.Errorf("fallback lock: %w", err)
	}
	defer releaseLock(lock)

	return appendFallbackRecord(s.Path, rec)
}

func appendFallbackRecord(path string, rec models.OutputRecord) error {
	out, err := yaml.Marshal([]fallbackRecord{{
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
		SessionID:  rec.SessionID,
		Repository: rec.Repository,
		Prompt:     rec.Text,
	}})
	if err != nil {
		return fmt.Errorf("encode fallback record: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create fallback dir: %w", err)
		}
	}

	// A hand-edited file may lack a trailing newline; appending a sequence
	// item onto a dangling line would corrupt both records.
	pad, err := missingTrailingNewline(path)
	if err != nil {
		return fmt.Errorf("inspect fallback file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // G304: path resolved from settings/project dir
	if err != nil {
		return fmt.Errorf("open fallback file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if pad {
		if _, err := f.Write([]byte("\n")); err != nil {
			return fmt.Errorf("pad fallback file: %w", err)
		}
	}
	if _, err := f.Write(out); err != nil {
		return fmt.Errorf("append fallback record: %w", err)
	}
	return nil
}

func missingTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path) //nolint:gosec // G304: same resolved path as the append
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return false, err
	}
	if fi.Size() == 0 {
		return false, nil
	}
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, fi.Size()-1); err != nil {
		return false, err
	}
	return buf[0] != '\n', nil
}
