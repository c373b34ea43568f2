package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harakeke-dev/harakeke/internal/ui"
	"github.com/harakeke-dev/harakeke/internal/utils"
	"github.com/harakeke-dev/harakeke/internal/vault"
)

var (
	encryptKeyDir string
	encryptString string
	encryptOut    string

	encryptCmd = &cobra.Command{
		Use:   "encrypt [paths or globs]",
		Short: "Encrypt configuration files (or a literal string) with the RSA key pair",
		Long: `Encrypts each matching file into <name>_encrypted<ext> next to the
original, or into --out when a single input is given. With --string the
given value is encrypted instead of a file; --out is then required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			Logger.Infof("Starting encrypt command")
			spinner, cleanup := startSpinner("Encrypting configuration...")
			defer cleanup()

			engine, _, err := resolveEngine(string(vault.ModeRSA), encryptKeyDir)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to open keys: %v", err)
			}

			if encryptString != "" {
				if encryptOut == "" {
					return Logger.ErrorfAndReturn("--out is required with --string")
				}
				written, err := engine.EncryptStringTo(encryptString, encryptOut)
				if err != nil {
					return Logger.ErrorfAndReturn("failed to encrypt string: %v", err)
				}
				spinner.FinalMSG = ui.Success() + " Encrypted value written to " + color.YellowString(written)
				return nil
			}

			if len(args) == 0 {
				spinner.FinalMSG = ui.Failure() + " Nothing to encrypt\n" +
					ui.Hint() + " Pass file paths or globs, or use " + color.YellowString("--string")
				return nil
			}

			workingDir, err := os.Getwd()
			if err != nil {
				return Logger.ErrorfAndReturn("failed to get working directory: %v", err)
			}

			files, err := utils.ExpandGlobs(args, workingDir)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to resolve input files: %v", err)
			}

			// Outputs of a previous run match globs like configs/*; don't
			// encrypt them twice.
			inputs := files[:0]
			for _, f := range files {
				if vault.IsEncryptedPath(f) {
					Logger.Debugf("Skipping already-encrypted file %s", f)
					continue
				}
				inputs = append(inputs, f)
			}

			if len(inputs) == 0 {
				spinner.FinalMSG = ui.Failure() + " No files matched"
				return nil
			}
			if len(inputs) > 1 && encryptOut != "" {
				return Logger.ErrorfAndReturn("--out cannot be used with multiple input files")
			}

			Logger.Infof("Encrypting %d files", len(inputs))
			var written []string
			for _, input := range inputs {
				out, err := engine.EncryptFileTo(input, encryptOut)
				if err != nil {
					return Logger.ErrorfAndReturn("failed to encrypt %s: %v", input, err)
				}
				written = append(written, out)
			}

			spinner.FinalMSG = ui.Success() + " Configuration encrypted successfully!\n" +
				"The following files were created: " + utils.FormatPaths(written) +
				ui.Hint() + " You can now remove the plaintext originals"
			return nil
		},
	}
)

func resetEncryptState() {
	encryptKeyDir = ""
	encryptString = ""
	encryptOut = ""
}

func init() {
	encryptCmd.Flags().StringVarP(&encryptKeyDir, "key-dir", "k", "", "directory holding key material (default from config)")
	encryptCmd.Flags().StringVarP(&encryptString, "string", "s", "", "encrypt this literal value instead of a file")
	encryptCmd.Flags().StringVarP(&encryptOut, "out", "o", "", "output path for the encrypted file")
}
