// Package file provides filesystem-backed implementations of driven ports.
//
// ConfigStore persists settings as TOML under ~/.loreweave. Watcher reloads
// that file on change so a long-running server picks up edited settings.
package file
