package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/claudesink/internal/actions"
	"github.com/dotcommander/claudesink/internal/logging"
)

// newHookSaveOutputCmd creates the save-output hook handler for the Stop
// event.
//
// Register via 'claudesink hook install'.
func newHookSaveOutputCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "save-output",
		Short:         "Stop hook: persist the last assistant message",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := loadHookSettings()
			closeLog := logging.Setup("save-output", st.Logging)
			defer closeLog()

			input, err := readHookStdin(cmd.InOrStdin())
			if err != nil {
				return cmdErr(err)
			}

			slog.Info("save-output hook invoked",
				"hook_event", input.HookEventName, "session_id", input.SessionID,
				"transcript", input.TranscriptPath)

			if err := actions.SaveOutput(cmd.Context(), st, input.event()); err != nil {
				return cmdErr(err)
			}
			return nil
		},
	}
}
