package cmd

import (
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/perplext/cipherhoneypot/src/reporting"
	"github.com/perplext/cipherhoneypot/src/session"
)

var sessionInspectPDFOut string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect in-flight or completed engagement sessions",
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a session's state, score, and extracted intelligence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := session.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.SessionTTL(), logger)

		sessionID := args[0]
		sess, found := store.Get(cmd.Context(), sessionID)
		if !found {
			return fmt.Errorf("session %q not found", sessionID)
		}

		fmt.Printf("session:    %s\n", sess.SessionID)
		fmt.Printf("persona:    %s\n", sess.PersonaID)
		fmt.Printf("state:      %s\n", sess.State)
		fmt.Printf("is_scam:    %v\n", sess.IsScam)
		fmt.Printf("scam_score: %.2f\n", sess.ScamScore)
		fmt.Printf("turn:       %d\n", sess.TurnNumber)

		snapshot := sess.IntelBuffer.Snapshot()
		fmt.Println("intelligence:")
		for cat, values := range snapshot {
			fmt.Printf("  %s: %v\n", cat, values)
		}

		if sessionInspectPDFOut != "" {
			f, err := os.Create(sessionInspectPDFOut)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := reporting.WriteIncidentPDF(f, sess); err != nil {
				return err
			}
			fmt.Printf("wrote incident report to %s\n", sessionInspectPDFOut)
		}
		return nil
	},
}

func init() {
	sessionInspectCmd.Flags().StringVar(&sessionInspectPDFOut, "pdf", "", "also write a one-page incident PDF to this path")
	sessionCmd.AddCommand(sessionInspectCmd)
	rootCmd.AddCommand(sessionCmd)
}
