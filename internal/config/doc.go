// Package config loads and validates the TOML configuration used by the
// atlastag CLI. Loading always starts from Default() so a missing file or
// missing keys never leave zero values behind.
package config
