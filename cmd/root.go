package cmd

import (
	logger "github.com/harakeke-dev/harakeke/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	profile string
	Logger  logger.Logger

	RootCmd = &cobra.Command{
		Use:   "harakeke",
		Short: "Harakeke - keep CLI credentials and script configuration encrypted at rest",
		Long: `Harakeke protects the credentials and configuration files your
observability scripts keep on disk. Configuration files are encrypted with a
local RSA key pair; individual values can be encrypted with a Fernet key.
Key material is generated on first use.

Run 'harakeke help <command>' for more details on a specific command.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing command with verbose=%t, debug=%t, profile=%q", verbose, debug, profile)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "named profile to resolve keys and credentials from")

	RootCmd.AddCommand(keysCmd)
	RootCmd.AddCommand(encryptCmd)
	RootCmd.AddCommand(decryptCmd)
	RootCmd.AddCommand(valueCmd)
	RootCmd.AddCommand(credsCmd)
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	profile = ""
	resetEncryptState()
	resetDecryptState()
	resetKeysState()
	resetValueState()
	resetCredsState()
}
