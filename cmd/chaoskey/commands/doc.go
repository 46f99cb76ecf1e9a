// Package commands defines the chaoskey CLI.
//
// Commands
//
//   - serve  Listen for initiators and log every deciphered message
//   - send   Dial a peer and send one message per argument (or stdin line)
//
// # Implementation
//
// The root command loads the config file and environment, then builds the
// logger before any subcommand runs. Flags given on the command line win
// over both.
package commands
