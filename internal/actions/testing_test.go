package actions

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/claudesink/internal/models"
)

// captureSink stands in for a real destination and records what a flow hands
// to its dispatcher.
type captureSink struct {
	configErr  error
	deliverErr error
	delivered  []models.OutputRecord
}

func (s *captureSink) Name() string       { return "capture" }
func (s *captureSink) CheckConfig() error { return s.configErr }

func (s *captureSink) Deliver(_ context.Context, rec models.OutputRecord) error {
	if s.deliverErr != nil {
		return s.deliverErr
	}
	s.delivered = append(s.delivered, rec)
	return nil
}

// writeHookTranscript writes lines as a JSONL transcript in a temp dir and
// returns its path.
func writeHookTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func assistantLine(text string) string {
	return `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"` + text + `"}]}}`
}
