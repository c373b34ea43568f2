package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harakeke-dev/harakeke/internal/credstore"
	"github.com/harakeke-dev/harakeke/internal/ui"
	"github.com/harakeke-dev/harakeke/internal/utils"
	"github.com/harakeke-dev/harakeke/internal/vault"
)

var (
	credsKeyDir string
	credsFile   string
	credsID     string
	credsToken  string
	credsReveal bool

	credsCmd = &cobra.Command{
		Use:   "creds",
		Short: "Manage the encrypted API credential pair",
	}
)

func resetCredsState() {
	credsKeyDir = ""
	credsFile = ""
	credsID = ""
	credsToken = ""
	credsReveal = false
}

// resolveCredsFile picks the credential file path: explicit flag first,
// then the selected profile's path.
func resolveCredsFile(profileCredsFile string) (string, error) {
	if credsFile != "" {
		return credsFile, nil
	}
	if profileCredsFile != "" {
		return profileCredsFile, nil
	}
	return "", fmt.Errorf("no credential file configured (use --file or select a profile with --profile)")
}

var credsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an API id/token pair, encrypted",
	Long: `Writes the credential pair to the configured credential file as an
encrypted blob. The token is read from the terminal without echo when not
given with --token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, profileCredsFile, err := resolveEngine(string(vault.ModeRSA), credsKeyDir)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open keys: %v", err)
		}

		path, err := resolveCredsFile(profileCredsFile)
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		if credsID == "" {
			return Logger.ErrorfAndReturn("--id is required")
		}

		token := credsToken
		if token == "" {
			secret, err := utils.ReadSecret("API token: ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read token: %v", err)
			}
			token = strings.TrimSpace(string(secret))
		}
		if token == "" {
			return Logger.ErrorfAndReturn("token must not be empty")
		}

		spinner, cleanup := startSpinner("Encrypting credentials...")
		defer cleanup()

		creds := &credstore.Credentials{ID: credsID, Token: token}
		if err := credstore.Write(engine, path, creds); err != nil {
			return Logger.ErrorfAndReturn("failed to write credentials: %v", err)
		}

		spinner.FinalMSG = ui.Success() + " Credentials encrypted to " + color.YellowString(path)
		return nil
	},
}

var credsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored credential pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, profileCredsFile, err := resolveEngine(string(vault.ModeRSA), credsKeyDir)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open keys: %v", err)
		}

		path, err := resolveCredsFile(profileCredsFile)
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		creds, err := credstore.Read(engine, path)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read credentials: %v", err)
		}

		if !creds.WasEncrypted {
			Logger.WarnfAlways("Credential file %s is still plaintext; run 'harakeke creds set' to encrypt it", path)
		}

		token := maskToken(creds.Token)
		if credsReveal {
			token = creds.Token
		}
		fmt.Printf("%s=%s\n", credstore.KeyAPIID, creds.ID)
		fmt.Printf("%s=%s\n", credstore.KeyAPIToken, token)
		return nil
	},
}

// maskToken keeps just enough of the token to recognize it.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

func init() {
	credsCmd.PersistentFlags().StringVarP(&credsKeyDir, "key-dir", "k", "", "directory holding key material (default from config)")
	credsCmd.PersistentFlags().StringVarP(&credsFile, "file", "f", "", "credential file path (default from profile)")

	credsSetCmd.Flags().StringVar(&credsID, "id", "", "API key id")
	credsSetCmd.Flags().StringVar(&credsToken, "token", "", "API token (prompted without echo when omitted)")
	credsShowCmd.Flags().BoolVar(&credsReveal, "reveal", false, "print the token in full")

	credsCmd.AddCommand(credsSetCmd)
	credsCmd.AddCommand(credsShowCmd)
}
