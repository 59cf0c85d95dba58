// Package transcript reads Claude Code session transcripts: JSONL files with
// one entry per line. The only consumer-facing operation is extracting the
// last assistant message, so the parser stays deliberately narrow and
// tolerant: lines that are not valid JSON are skipped, entry shapes we do not
// recognize are ignored, and only the fields the sinks need are decoded.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Scanner sizing. Assistant entries carry whole tool results inline, so
// individual lines run to megabytes on long sessions.
const (
	initialLineBuf = 1024 * 1024
	maxLineBuf     = 10 * 1024 * 1024
)

// ErrNoAssistantMessage reports a transcript that was readable but contained
// no assistant entry with extractable text.
var ErrNoAssistantMessage = errors.New("no assistant message in transcript")

// Entry is a single transcript line. Claude Code tags lines with a top-level
// type ("user", "assistant", "summary", ...) and nests the API message under
// "message".
type Entry struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

// Message is the API-level message payload of a transcript entry. Content is
// kept raw because assistant entries carry either a plain string or an array
// of typed blocks.
type Message struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   *Usage          `json:"usage"`
}

// Usage is the token accounting block attached to assistant entries.
type Usage struct {
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	ServiceTier  string `json:"service_tier"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the last assistant message of a transcript along with the
// metadata found on the same entry. Usage is nil when the entry carried no
// usage block; Model is only meaningful alongside Usage.
type Result struct {
	Text  string
	Model string
	Usage *Usage
}

// LastAssistantMessage scans the transcript at path and returns the final
// assistant entry that has extractable text. Assistant entries whose content
// yields no text (tool-only turns) do not qualify; an earlier entry with text
// wins over a later one without. Malformed lines are skipped so one corrupt
// write never poisons the rest of the file.
//
// A missing file surfaces as an *os.PathError wrapping fs.ErrNotExist so
// callers can distinguish "no transcript" from "transcript without output".
func LastAssistantMessage(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, initialLineBuf), maxLineBuf)

	var (
		res    Result
		found  bool
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			slog.Debug("skipping malformed transcript line", "line", lineNo, "error", err)
			continue
		}
		if entry.Type != "assistant" {
			continue
		}
		text := extractText(entry.Message.Content)
		if text == "" {
			continue
		}
		res = Result{Text: text, Model: entry.Message.Model, Usage: entry.Message.Usage}
		found = true
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("scan transcript: %w", err)
	}
	if !found {
		return Result{}, ErrNoAssistantMessage
	}
	return res, nil
}

// extractText flattens a message content payload to plain text. String
// content is returned as-is; block arrays contribute their "text" blocks in
// order. Anything else (tool_use blocks, unknown shapes) yields nothing.
func extractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var b strings.Builder
	for _, blk := range blocks {
		if blk.Type == "text" {
			b.WriteString(blk.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
