package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/logging"
	"github.com/dotcommander/claudesink/internal/output"
	"github.com/dotcommander/claudesink/internal/sink"
	"github.com/dotcommander/claudesink/internal/store"
)

// NewDoctorCmd creates the doctor command. It reports, without mutating
// anything, which sinks the current configuration would reach.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and sink connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := loadHookSettings()

			configPath, configSource, configErr := app.ResolveConfigDetailed()

			type sinkStatus struct {
				Configured bool     `json:"configured"`
				Missing    []string `json:"missing,omitempty"`
				PingOK     bool     `json:"ping_ok,omitempty"`
				PingErr    string   `json:"ping_error,omitempty"`
			}

			telegram := sinkStatus{Configured: true}
			if err := sink.NewTelegramSink(st.Telegram, "").CheckConfig(); err != nil {
				telegram.Configured = false
				var tcErr *sink.TelegramConfigError
				if errors.As(err, &tcErr) {
					telegram.Missing = tcErr.Missing
				}
			}

			postgres := sinkStatus{}
			if missing := store.MissingConfig(st.Postgres); len(missing) > 0 {
				postgres.Missing = missing
			} else if _, closeDB, err := openDB(cmd.Context()); err != nil {
				postgres.Configured = true
				postgres.PingErr = err.Error()
			} else {
				postgres.Configured = true
				postgres.PingOK = true
				closeDB()
			}

			cwd, _ := os.Getwd()
			workDir := app.WorkDir(st, cwd)

			type resp struct {
				ConfigPath   string     `json:"config_path,omitempty"`
				ConfigSource string     `json:"config_source"`
				ConfigErr    string     `json:"config_error,omitempty"`
				Telegram     sinkStatus `json:"telegram"`
				Postgres     sinkStatus `json:"postgres"`
				FallbackPath string     `json:"fallback_path"`
				LogPath      string     `json:"log_path"`
				Hint         string     `json:"hint,omitempty"`
			}

			r := resp{
				ConfigPath:   configPath,
				ConfigSource: configSource,
				Telegram:     telegram,
				Postgres:     postgres,
				FallbackPath: app.FallbackPath(st, workDir),
				LogPath:      logging.CurrentLogPath(st.Logging),
			}
			if configErr != nil {
				r.ConfigErr = configErr.Error()
			}
			if !telegram.Configured && !postgres.Configured {
				r.Hint = "No sink is configured; hooks will only write prompts to the fallback file."
			}
			return output.PrintSuccess(r)
		},
	}

	return cmd
}
