package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oba-ldap/ldapwire/dn"
)

var dnCmd = &cobra.Command{
	Use:   "dn",
	Short: "Work with distinguished names",
}

var dnParseCmd = &cobra.Command{
	Use:   "parse <dn-string>",
	Short: "Parse a DN string and print its RFC 4514 form",
	Args:  cobra.ExactArgs(1),
	RunE:  runDNParse,
}

func init() {
	dnCmd.AddCommand(dnParseCmd)
}

func runDNParse(cmd *cobra.Command, args []string) error {
	parsed, err := dn.Parse(args[0])
	if err != nil {
		sink.Event("warn", "dn parse failed", map[string]any{"input": args[0], "error": err.Error()})
		return fmt.Errorf("parse dn: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rdns:  %d\n", len(parsed.RDNs))
	fmt.Fprintf(out, "round-trip: %s\n", parsed.String())
	return nil
}
