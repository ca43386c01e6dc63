// Package file provides file-based implementations of driven port interfaces.
// These adapters read configuration from the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML application settings
//   - ProjectLoader: per-project TOML or YAML configuration merged over a default
package file
