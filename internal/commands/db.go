package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/claudesink/internal/output"
	"github.com/dotcommander/claudesink/internal/store"
)

// NewDBCmd creates database utilities. Hook handlers never run migrations;
// applying schema changes is an operator action.
func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}

	cmd.AddCommand(newDBMigrateCmd())
	cmd.AddCommand(newDBStatusCmd())
	return cmd
}

func newDBMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *DB) error {
				if err := store.RunMigrations(db); err != nil {
					return err
				}

				current, latest, err := store.SchemaVersion(db)
				if err != nil {
					return err
				}

				type resp struct {
					Version int64 `json:"version"`
					Latest  int64 `json:"latest"`
				}
				return output.PrintSuccess(resp{Version: current, Latest: latest})
			})
		},
	}
}

func newDBStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied vs available schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *DB) error {
				current, latest, err := store.SchemaVersion(db)
				if err != nil {
					return err
				}

				type resp struct {
					Version int64 `json:"version"`
					Latest  int64 `json:"latest"`
					Pending bool  `json:"pending"`
				}
				return output.PrintSuccess(resp{
					Version: current,
					Latest:  latest,
					Pending: current < latest,
				})
			})
		},
	}
}
