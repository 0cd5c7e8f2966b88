// Package commands implements the ldapwiredump CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/oba-ldap/ldapwire/obalog"
)

var (
	// logLevel is the global --log-level flag value.
	logLevel string

	// sink is the zerolog-backed trace sink every subcommand installs on
	// the decoders it drives. cmd/ldapwiredump is the only package in
	// this module permitted to construct a concrete obalog.Sink.
	sink *obalog.Sink
)

var rootCmd = &cobra.Command{
	Use:   "ldapwiredump",
	Short: "Inspect and round-trip LDAP wire encodings",
	Long: `ldapwiredump is a thin command-line shim over the ldapwire library.

Each subcommand decodes or encodes one piece of the LDAP wire protocol and
prints the round-tripped form, so the library's codecs can be exercised
without writing a Go program.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		sink = obalog.NewConsoleSink(obalog.Config{Level: logLevel})
	},
}

// Execute runs the root command. Called from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace sink log level (debug, info, warn, error)")

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(dnCmd)
	rootCmd.AddCommand(filterCmd)
}
