package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oba-ldap/ldapwire/ldapmsg"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode an LDAP operation to its wire form",
}

var encodeAbandonCmd = &cobra.Command{
	Use:   "abandon <message-id>",
	Short: "Encode an AbandonRequest wrapped in an LDAPMessage envelope",
	Args:  cobra.ExactArgs(1),
	RunE:  runEncodeAbandon,
}

func init() {
	encodeCmd.AddCommand(encodeAbandonCmd)
}

func runEncodeAbandon(cmd *cobra.Command, args []string) error {
	abandoned, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", args[0], err)
	}

	body, err := (&ldapmsg.AbandonRequest{MessageID: abandoned}).Encode()
	if err != nil {
		return fmt.Errorf("encode abandon request: %w", err)
	}

	msg := &ldapmsg.LDAPMessage{
		MessageID: 1,
		Operation: &ldapmsg.RawOperation{Tag: ldapmsg.ApplicationAbandonRequest, Data: body},
	}
	wire, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	sink.Event("info", "encoded abandon request", map[string]any{"messageID": abandoned, "bytes": len(wire)})
	fmt.Fprintf(cmd.OutOrStdout(), "%x\n", wire)
	return nil
}
