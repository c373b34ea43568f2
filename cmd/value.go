package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harakeke-dev/harakeke/internal/vault"
)

var (
	valueKeyDir string
	valueStrict bool

	valueCmd = &cobra.Command{
		Use:   "value",
		Short: "Encrypt and decrypt individual values with the Fernet key",
	}
)

func resetValueState() {
	valueKeyDir = ""
	valueStrict = false
}

var valueEncryptCmd = &cobra.Command{
	Use:   "encrypt <value>",
	Short: "Encrypt a single value into a Fernet token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := resolveEngine(string(vault.ModeFernet), valueKeyDir)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open keys: %v", err)
		}

		token, err := engine.EncryptString(args[0])
		if err != nil {
			return Logger.ErrorfAndReturn("failed to encrypt value: %v", err)
		}
		fmt.Println(token)
		return nil
	},
}

var valueDecryptCmd = &cobra.Command{
	Use:   "decrypt <token>",
	Short: "Decrypt a Fernet token back into its value",
	Long: `Decrypts a token produced by 'harakeke value encrypt'. A value that
was never encrypted is printed unchanged unless --strict is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := resolveEngine(string(vault.ModeFernet), valueKeyDir)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open keys: %v", err)
		}

		plaintext, wasDecrypted := engine.DecryptStringStrict(args[0])
		if !wasDecrypted {
			if valueStrict {
				return Logger.ErrorfAndReturn("value is not a valid token for this key")
			}
			Logger.Warnf("Value is not a valid token; printing it unchanged")
		}
		fmt.Println(plaintext)
		return nil
	},
}

func init() {
	valueCmd.PersistentFlags().StringVarP(&valueKeyDir, "key-dir", "k", "", "directory holding key material (default from config)")
	valueDecryptCmd.Flags().BoolVar(&valueStrict, "strict", false, "fail instead of falling back to plaintext passthrough")

	valueCmd.AddCommand(valueEncryptCmd)
	valueCmd.AddCommand(valueDecryptCmd)
}
