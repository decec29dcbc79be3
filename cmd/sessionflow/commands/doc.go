// Package commands defines the sessionflow CLI.
//
// Commands
//
//   - tui          Interactive session in the terminal
//   - run          Run one action, answering sheets from flags
//   - actions      List the available actions by group
//   - state show   Print the stored session record
//   - state clear  Reset the stored session record
//   - config init  Write a config file with the defaults
//
// The root command loads configuration and builds the logger before any
// subcommand runs. Subcommands that touch the session open storage
// themselves so that listing actions works without a backend.
package commands
