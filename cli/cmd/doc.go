// Package cmd implements the maillist subcommands: evaluating expressions,
// formatting registries, the interactive console, the HTTP server and
// configuration initialization.
package cmd

import "github.com/ardnew/maillist/server"

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

// Vars returns the kong variables referenced by the command definitions.
func Vars() map[string]string {
	return map[string]string{
		"serveAddr": server.DefaultAddr,
	}
}
