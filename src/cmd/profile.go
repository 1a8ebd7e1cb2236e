package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perplext/cipherhoneypot/src/profile"
	"github.com/perplext/cipherhoneypot/src/reporting"
)

var profileExportFormat string
var profileExportOut string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect sender profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known sender profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Open(cfg.Profile.DatabaseDSN)
		if err != nil {
			return err
		}
		profiles, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("%-30s %-14s %-8s %-6s %s", "SENDER", "ENGAGEMENTS", "TURNS", "RISK", "STATUS")))
		for _, p := range profiles {
			row := fmt.Sprintf("%-30s %-14d %-8d %-6.2f %s",
				p.Sender, p.TotalEngagements, p.TotalTurns, p.RiskScore, p.Status)
			fmt.Println(riskStyle(p.RiskScore).Render(row))
		}
		return nil
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sender profiles as CSV or Excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Open(cfg.Profile.DatabaseDSN)
		if err != nil {
			return err
		}
		profiles, err := store.List(cmd.Context())
		if err != nil {
			return err
		}

		out := os.Stdout
		if profileExportOut != "" {
			f, err := os.Create(profileExportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		switch profileExportFormat {
		case "csv":
			return reporting.WriteProfilesCSV(out, profiles)
		case "xlsx", "excel":
			return reporting.WriteProfilesExcel(out, profiles)
		default:
			return fmt.Errorf("unsupported export format %q (want csv or xlsx)", profileExportFormat)
		}
	},
}

func init() {
	profileExportCmd.Flags().StringVar(&profileExportFormat, "format", "csv", "export format: csv or xlsx")
	profileExportCmd.Flags().StringVar(&profileExportOut, "out", "", "output file path (default stdout; required for xlsx)")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileExportCmd)
	rootCmd.AddCommand(profileCmd)
}
