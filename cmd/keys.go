package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harakeke-dev/harakeke/internal/ui"
	"github.com/harakeke-dev/harakeke/internal/utils"
	"github.com/harakeke-dev/harakeke/internal/vault"
)

var (
	keysMode   string
	keysKeyDir string

	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Manage the key material used to encrypt configurations",
	}
)

func resetKeysState() {
	keysMode = ""
	keysKeyDir = ""
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate key material if it does not exist yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, cleanup := startSpinner("Preparing key material...")
		defer cleanup()

		engine, _, err := resolveEngine(keysMode, keysKeyDir)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to initialize keys: %v", err)
		}

		finalMessage := ui.Success() + " Key material ready in " + color.YellowString(engine.KeyDir()) +
			utils.FormatPaths(engine.KeyFiles()) +
			ui.Hint() + " Keep " + color.YellowString("private.pem") + " out of version control"
		if engine.Mode() == vault.ModeFernet {
			finalMessage = ui.Success() + " Key material ready in " + color.YellowString(engine.KeyDir()) +
				utils.FormatPaths(engine.KeyFiles())
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}

var keysStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the state and permissions of the key files",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := resolveEngine(keysMode, keysKeyDir)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open keys: %v", err)
		}

		for _, path := range engine.KeyFiles() {
			info, err := os.Stat(path)
			if err != nil {
				fmt.Printf("%s %s: missing\n", ui.Failure(), path)
				continue
			}
			fmt.Printf("%s %s: %d bytes, mode %o\n", ui.Success(), path, info.Size(), info.Mode().Perm())
		}

		// The private key must never be group or world readable.
		if engine.Mode() == vault.ModeRSA {
			privatePath := engine.KeyFiles()[1]
			if info, err := os.Stat(privatePath); err == nil && info.Mode().Perm()&0077 != 0 {
				Logger.WarnfAlways("Private key file has overly permissive permissions (%o), consider running 'chmod 600 %s'",
					info.Mode().Perm(), privatePath)
			}
		}

		return nil
	},
}

var keysImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an existing RSA private key from stdin",
	Long: `Reads a PEM-encoded RSA private key from stdin (PKCS#1, PKCS#8, or
OpenSSH format) and installs it as the vault key pair. Files encrypted with
the previous key pair must be decrypted before importing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pemBytes, err := utils.ReadStdin()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read private key: %v", err)
		}

		spinner, cleanup := startSpinner("Importing private key...")
		defer cleanup()

		engine, _, err := resolveEngine(string(vault.ModeRSA), keysKeyDir)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open keys: %v", err)
		}

		if err := engine.ImportPrivateKey(pemBytes); err != nil {
			Logger.Errorf("Failed to import private key: %v", err)
			spinner.FinalMSG = ui.Failure() + " Failed to import private key\n" +
				color.RedString("Error: ") + err.Error()
			return nil
		}

		spinner.FinalMSG = ui.Success() + " Private key imported into " + color.YellowString(engine.KeyDir()) +
			"\n" + ui.Hint() + " Re-encrypt any files that were encrypted with the previous key"
		return nil
	},
}

func init() {
	addKeyFlags(keysCmd.PersistentFlags(), &keysMode, &keysKeyDir)

	keysCmd.AddCommand(keysInitCmd)
	keysCmd.AddCommand(keysStatusCmd)
	keysCmd.AddCommand(keysImportCmd)
}
