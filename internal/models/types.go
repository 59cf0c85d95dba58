package models

import "time"

// OutputRecord is the unit every sink consumes. One record is built per hook
// invocation and carries the captured text plus the invocation context that
// was resolvable at capture time. Optional fields stay empty rather than
// failing the capture: a prompt without a repository is still worth saving.
type OutputRecord struct {
	// Text is the captured payload: the user prompt for prompt-submit
	// invocations, the extracted assistant message for stop invocations.
	Text string `json:"text"`

	// CreatedAt is the capture timestamp in UTC, taken fresh per invocation.
	CreatedAt time.Time `json:"created_at"`

	// SessionID is the validated Claude Code session UUID, or empty when the
	// hook input carried none (or carried something that is not a UUID).
	SessionID string `json:"session_id,omitempty"`

	// Repository is the normalized origin identity ("host/owner/repo") of the
	// project the hook fired in, or empty when no usable remote exists.
	Repository string `json:"repository,omitempty"`

	// Usage holds token accounting for assistant outputs. Nil for prompts and
	// for transcripts that expose no usage block; the fields inside are only
	// meaningful as a group.
	Usage *UsageMetadata `json:"usage,omitempty"`
}

// UsageMetadata mirrors the usage block attached to an assistant transcript
// entry. It is persisted as a unit: either the whole group is present or the
// record carries none of it.
type UsageMetadata struct {
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	Model        string `json:"model,omitempty"`
	ServiceTier  string `json:"service_tier,omitempty"`
}
