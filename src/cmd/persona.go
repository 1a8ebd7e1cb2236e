package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perplext/cipherhoneypot/src/persona"
)

var (
	personaSyncOwner string
	personaSyncRepo  string
	personaSyncPath  string
	personaSyncToken string
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage persona definitions",
}

var personaSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the persona pack from its configured remote source",
	Long: `sync downloads every persona yaml file from the configured
GitHub (or GitLab, via --gitlab) source into the local persona
directory, overwriting local copies of the same name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		useGitLab, _ := cmd.Flags().GetBool("gitlab")

		var (
			n   int
			err error
		)
		if useGitLab {
			n, err = persona.SyncFromGitLab(personaSyncRepo, personaSyncPath, personaSyncToken, cfg.Persona.Dir)
		} else {
			n, err = persona.SyncFromGitHub(cmd.Context(), personaSyncOwner, personaSyncRepo, personaSyncPath, personaSyncToken, cfg.Persona.Dir)
		}
		if err != nil {
			return err
		}
		fmt.Printf("synced %d persona file(s) into %s\n", n, cfg.Persona.Dir)
		return nil
	},
}

func init() {
	personaSyncCmd.Flags().StringVar(&personaSyncOwner, "owner", "", "GitHub repository owner")
	personaSyncCmd.Flags().StringVar(&personaSyncRepo, "repo", "", "repository name (GitHub) or project ID (GitLab)")
	personaSyncCmd.Flags().StringVar(&personaSyncPath, "path", "personas", "path within the repository holding persona yaml files")
	personaSyncCmd.Flags().StringVar(&personaSyncToken, "token", "", "access token, falls back to an unauthenticated request if empty")
	personaSyncCmd.Flags().Bool("gitlab", false, "use GitLab instead of GitHub")

	personaCmd.AddCommand(personaSyncCmd)
	rootCmd.AddCommand(personaCmd)
}
