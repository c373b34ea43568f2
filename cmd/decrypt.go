package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harakeke-dev/harakeke/internal/vault"
)

var (
	decryptKeyDir string
	decryptStrict bool

	decryptCmd = &cobra.Command{
		Use:   "decrypt <file>",
		Short: "Decrypt an encrypted configuration file to stdout",
		Long: `Decrypts a file produced by 'harakeke encrypt' and prints the
plaintext to stdout. A file that predates encryption is printed as-is
unless --strict is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := resolveEngine(string(vault.ModeRSA), decryptKeyDir)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to open keys: %v", err)
			}

			if decryptStrict {
				plaintext, err := engine.DecryptFile(args[0])
				if err != nil {
					return Logger.ErrorfAndReturn("failed to decrypt %s: %v", args[0], err)
				}
				fmt.Print(plaintext)
				return nil
			}

			file, err := engine.ReadConfigFile(args[0])
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read %s: %v", args[0], err)
			}
			if file.Format == vault.FormatPlaintext {
				Logger.WarnfAlways("%s is not encrypted; printing it unchanged", args[0])
			}
			fmt.Print(file.Text)
			return nil
		},
	}
)

func resetDecryptState() {
	decryptKeyDir = ""
	decryptStrict = false
}

func init() {
	decryptCmd.Flags().StringVarP(&decryptKeyDir, "key-dir", "k", "", "directory holding key material (default from config)")
	decryptCmd.Flags().BoolVar(&decryptStrict, "strict", false, "fail instead of falling back to plaintext passthrough")
}
