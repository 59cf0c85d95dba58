package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/claudesink/internal/actions"
	"github.com/dotcommander/claudesink/internal/logging"
)

// newHookSavePromptCmd creates the save-prompt hook handler for the
// UserPromptSubmit event.
//
// Register via 'claudesink hook install'.
func newHookSavePromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "save-prompt",
		Short:         "UserPromptSubmit hook: persist the submitted prompt",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := loadHookSettings()
			closeLog := logging.Setup("save-prompt", st.Logging)
			defer closeLog()

			input, err := readHookStdin(cmd.InOrStdin())
			if err != nil {
				// Unlike notify, persistence reports its failures: a prompt
				// that could not even be read is a prompt lost.
				return cmdErr(err)
			}

			slog.Info("save-prompt hook invoked",
				"hook_event", input.HookEventName, "session_id", input.SessionID,
				"prompt_bytes", len(input.Prompt))

			if err := actions.SavePrompt(cmd.Context(), st, input.event()); err != nil {
				return cmdErr(err)
			}
			return nil
		},
	}
}
