package models

// Hook event names as Claude Code spells them in hook input and in
// settings.json hook configuration. The handlers match on these when a
// single binary entry point serves several lifecycle events.
const (
	HookEventStop             = "Stop"
	HookEventNotification     = "Notification"
	HookEventUserPromptSubmit = "UserPromptSubmit"
)
