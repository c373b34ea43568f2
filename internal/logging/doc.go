// Package logger provides leveled, colored logging for Harakeke commands.
//
// Verbosity is controlled by two flags:
//
//   - --verbose: shows info and warning messages
//   - --debug: shows all messages including debug details
//
// Without flags, only critical warnings and errors are shown.
//
// Commands create a logger in their PersistentPreRun and pass it to
// internal functions:
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Encrypting %d files", count)
package logger
