package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oba-ldap/ldapwire/ber"
	"github.com/oba-ldap/ldapwire/ldapmsg"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode one LDAPMessage envelope from its hex wire form",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	wire, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("invalid hex input: %w", err)
	}

	dec := ldapmsg.NewEnvelopeDecoder()
	dec.SetSink(sink.WithDecodeID())

	outcome, err := dec.Decode(wire)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if outcome != ber.OutcomePDUComplete {
		return fmt.Errorf("truncated message: decoder wants more bytes")
	}

	msg, err := dec.Message()
	if err != nil {
		return fmt.Errorf("assemble message: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "messageID: %d\n", msg.MessageID)
	fmt.Fprintf(out, "operation: %s\n", msg.OperationType())
	fmt.Fprintf(out, "controls:  %d\n", len(msg.Controls))

	return printOperationBody(out, msg)
}
