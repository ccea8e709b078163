// Package cli constructs the depfetch command-line interface, wiring the Cobra
// command hierarchy, the layered configuration loader, and zap logging around
// the install command. Running the root command without a subcommand performs
// an install with the configured defaults.
package cli
