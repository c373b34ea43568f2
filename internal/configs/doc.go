// Package configs manages Harakeke's own configuration file.
//
// The CLI keeps a TOML file at ~/.harakeke/config.toml (overridable with
// HARAKEKE_CONFIG_DIR) recording the install UUID, the default encryption
// mode and key directory, and named profiles. A profile binds an
// environment (say "prod" or "staging") to its own key directory and
// encrypted credential file, mirroring how teams keep one key set per
// deployment of the observability platform.
package configs
