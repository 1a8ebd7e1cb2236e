package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage local configuration",
}

var configSetAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key [key]",
	Short: "Print a bcrypt hash of an API key for use as CIPHER_API_API_KEY_HASH",
	Long: `set-api-key hashes the given key with bcrypt and prints the
result. The hash is never written to disk: export it as
CIPHER_API_API_KEY_HASH (or set api.api_key_hash in ~/.cipher.yaml) so
the API server's auth middleware can verify bearer tokens against it.

When invoked with no argument and stdin is a terminal, the key is read
via a masked prompt instead of appearing in shell history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := resolveAPIKey(args)
		if err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Println(string(hash))
		return nil
	},
}

func resolveAPIKey(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("set-api-key requires a key argument when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "API key: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading masked api key: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("api key must not be empty")
	}
	return string(raw), nil
}

func init() {
	configCmd.AddCommand(configSetAPIKeyCmd)
	rootCmd.AddCommand(configCmd)
}
