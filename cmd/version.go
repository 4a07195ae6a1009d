// File: cmd/version.go
package cmd

// Version is the CLI version, overridable at build time via
// -ldflags "-X github.com/autoedu/autoedu-cli/cmd.Version=...".
var Version = "1.0.0"
