package cli

import (
	"fmt"

	"github.com/ashureev/hr-assistant/internal/audit"
	"github.com/ashureev/hr-assistant/internal/config"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/ashureev/hr-assistant/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var dbPath, sessionID, action string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the archived audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dbPath = cfg.DBPath
			}

			var filter domain.Intent
			if action != "" {
				filter = domain.ParseIntent(action)
				if !filter.Mutating() {
					return fmt.Errorf("--action must be one of hire_employee, give_bonus, change_title, terminate_employee")
				}
			}

			repo, err := store.NewSQLite(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			logs, err := repo.ListActionLogs(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if filter != "" {
				kept := logs[:0]
				for _, entry := range logs {
					if entry.Action == filter {
						kept = append(kept, entry)
					}
				}
				logs = kept
			}

			if asJSON {
				if logs == nil {
					logs = []domain.ActionLog{}
				}
				return writeJSON(cmd, logs)
			}
			if len(logs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No actions recorded.")
				return nil
			}
			for _, entry := range logs {
				fmt.Fprintln(cmd.OutOrStdout(), audit.Format(entry))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite archive path (default: DB_PATH)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only show actions from this session")
	cmd.Flags().StringVar(&action, "action", "", "Only show this action type")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
