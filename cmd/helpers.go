package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/pflag"

	"github.com/harakeke-dev/harakeke/internal/configs"
	"github.com/harakeke-dev/harakeke/internal/ui"
	"github.com/harakeke-dev/harakeke/internal/vault"
)

// addKeyFlags registers the flags shared by every command that opens the
// vault engine.
func addKeyFlags(flags *pflag.FlagSet, mode, keyDir *string) {
	flags.StringVarP(mode, "mode", "m", "", "encryption mode: rsa or fernet (default from config)")
	flags.StringVarP(keyDir, "key-dir", "k", "", "directory holding key material (default from config)")
}

// resolveEngine builds the vault engine for a command, resolving mode and
// key directory from flags, the selected profile, and the config defaults,
// in that order. Returns the engine and the profile's credential file path
// (empty when no profile is selected).
func resolveEngine(modeFlag, keyDirFlag string) (*vault.Engine, string, error) {
	config, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, "", err
	}

	keyDir, credsFile, err := config.ResolveProfile(profile)
	if err != nil {
		return nil, "", err
	}

	modeName := config.Defaults.Mode
	if modeFlag != "" {
		modeName = modeFlag
	}
	if keyDirFlag != "" {
		keyDir = keyDirFlag
	}

	mode, err := vault.ParseMode(modeName)
	if err != nil {
		return nil, "", err
	}

	Logger.Debugf("Opening vault engine: mode=%s key-dir=%s", mode, keyDir)
	engine, err := vault.New(mode, keyDir)
	if err != nil {
		return nil, "", err
	}
	return engine, credsFile, nil
}

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. Returns the spinner and a function that should
// be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines; the cleanup
// function runs ui.EnsureNewline on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Discard log output while the spinner owns the line.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if !verbose && !debug {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}
