package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oba-ldap/ldapwire/ber"
	"github.com/oba-ldap/ldapwire/filterexpr"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Work with LDAP search filters",
}

var filterParseCmd = &cobra.Command{
	Use:   "parse <filter-string>",
	Short: "Parse an RFC 4515 filter string and print its BER encoding",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterParse,
}

func init() {
	filterCmd.AddCommand(filterParseCmd)
}

func runFilterParse(cmd *cobra.Command, args []string) error {
	f, err := filterexpr.Parse(args[0])
	if err != nil {
		sink.Event("warn", "filter parse failed", map[string]any{"input": args[0], "error": err.Error()})
		return fmt.Errorf("parse filter: %w", err)
	}

	buf := ber.NewAsn1Buffer(128)
	filterexpr.Encode(buf, f)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "round-trip: %s\n", filterexpr.Format(f))
	fmt.Fprintf(out, "ber:        %x\n", buf.Bytes())
	return nil
}
