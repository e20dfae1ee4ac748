// Package file persists settings as TOML, by default in ~/.agenda/config.toml.
package file
