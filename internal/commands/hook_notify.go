package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/claudesink/internal/actions"
	"github.com/dotcommander/claudesink/internal/logging"
)

// newHookNotifyCmd creates the notify hook handler. It serves the Stop and
// Notification events; both send the last assistant message to Telegram.
//
// Register via 'claudesink hook install'.
func newHookNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "notify",
		Short:         "Stop/Notification hook: send the last assistant message to Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := loadHookSettings()
			closeLog := logging.Setup("notify", st.Logging)
			defer closeLog()

			input, err := readHookStdin(cmd.InOrStdin())
			if err != nil {
				// Nothing to notify about without input. Claude Code must
				// not be interrupted over a lost notification.
				slog.Warn("hook input unreadable, skipping notification", "error", err.Error())
				return nil
			}

			slog.Info("notify hook invoked",
				"hook_event", input.HookEventName, "session_id", input.SessionID)

			if err := actions.Notify(cmd.Context(), st, input.event()); err != nil {
				return cmdErr(err)
			}
			return nil
		},
	}
}
