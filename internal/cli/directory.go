package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ashureev/hr-assistant/internal/config"
	"github.com/ashureev/hr-assistant/internal/directory"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/spf13/cobra"
)

func loadDirectory(seedDir string) (*directory.Directory, error) {
	if seedDir == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		seedDir = cfg.SeedDir
	}
	seed, err := directory.LoadSeed(seedDir)
	if err != nil {
		return nil, err
	}
	return directory.New(seed), nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newEmployeesCmd() *cobra.Command {
	var seedDir, team string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "employees",
		Short: "List employees from the seed data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := loadDirectory(seedDir)
			if err != nil {
				return err
			}

			var employees []domain.Employee
			for _, e := range dir.Employees() {
				if team == "" || strings.EqualFold(e.Team, team) {
					employees = append(employees, e)
				}
			}
			if asJSON {
				return writeJSON(cmd, employees)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTITLE\tTEAM\tCOUNTRY\tSTATUS")
			for _, e := range employees {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Title, e.Team, e.Country, e.Status)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&seedDir, "seed-dir", "", "Directory with employees.yaml, teams.yaml, countries.yaml (default: SEED_DIR or embedded)")
	cmd.Flags().StringVar(&team, "team", "", "Only list this team")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newTeamsCmd() *cobra.Command {
	var seedDir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List teams from the seed data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := loadDirectory(seedDir)
			if err != nil {
				return err
			}
			teams := dir.Teams()
			if asJSON {
				return writeJSON(cmd, teams)
			}

			active := map[string]int{}
			for _, e := range dir.Employees() {
				if e.Status == domain.StatusActive {
					active[strings.ToLower(e.Team)]++
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDEPARTMENT\tMANAGER\tACTIVE")
			for _, t := range teams {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.Name, t.Department, t.Manager, active[strings.ToLower(t.Name)])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&seedDir, "seed-dir", "", "Directory with seed YAML files (default: SEED_DIR or embedded)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
