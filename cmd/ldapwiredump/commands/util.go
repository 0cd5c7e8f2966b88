package commands

import (
	"fmt"
	"io"

	"github.com/oba-ldap/ldapwire/ldapmsg"
)

// printOperationBody prints a short summary of the decoded operation body.
// It covers the operations exercised by the demo subcommands; anything
// else falls back to a raw byte count so decode never refuses a valid
// envelope just because this CLI doesn't special-case its operation.
func printOperationBody(out io.Writer, msg *ldapmsg.LDAPMessage) error {
	switch msg.OperationType() {
	case ldapmsg.ApplicationAbandonRequest:
		req, err := ldapmsg.ParseAbandonRequest(msg.Operation.Data)
		if err != nil {
			return fmt.Errorf("parse abandon request: %w", err)
		}
		fmt.Fprintf(out, "abandoned messageID: %d\n", req.MessageID)

	case ldapmsg.ApplicationBindRequest:
		req, err := ldapmsg.ParseBindRequest(msg.Operation.Data)
		if err != nil {
			return fmt.Errorf("parse bind request: %w", err)
		}
		fmt.Fprintf(out, "bind version: %d\n", req.Version)
		fmt.Fprintf(out, "bind name:    %s\n", req.Name)
		fmt.Fprintf(out, "bind method:  %s\n", req.AuthMethod)

	case ldapmsg.ApplicationSearchRequest:
		req, err := ldapmsg.ParseSearchRequest(msg.Operation.Data)
		if err != nil {
			return fmt.Errorf("parse search request: %w", err)
		}
		fmt.Fprintf(out, "search base:  %s\n", req.BaseObject)
		fmt.Fprintf(out, "search scope: %s\n", req.Scope)
		fmt.Fprintf(out, "attributes:   %v\n", req.Attributes)

	case ldapmsg.ApplicationUnbindRequest:
		fmt.Fprintln(out, "unbind request (no body)")

	case ldapmsg.ApplicationExtendedRequest:
		req, err := ldapmsg.ParseExtendedRequest(msg.Operation.Data)
		if err != nil {
			return fmt.Errorf("parse extended request: %w", err)
		}
		fmt.Fprintf(out, "extended OID: %s\n", req.OID)
		if req.Value != nil {
			fmt.Fprintf(out, "extended value: %d bytes\n", len(req.Value))
		}

	case ldapmsg.ApplicationExtendedResponse:
		resp, err := ldapmsg.ParseExtendedResponse(msg.Operation.Data)
		if err != nil {
			return fmt.Errorf("parse extended response: %w", err)
		}
		fmt.Fprintf(out, "extended result: %s\n", resp.ResultCode)
		if resp.OID != "" {
			fmt.Fprintf(out, "extended OID: %s\n", resp.OID)
		}

	case ldapmsg.ApplicationIntermediateResponse:
		resp, err := ldapmsg.ParseIntermediateResponse(msg.Operation.Data)
		if err != nil {
			return fmt.Errorf("parse intermediate response: %w", err)
		}
		fmt.Fprintf(out, "intermediate OID: %s\n", resp.OID)

	default:
		fmt.Fprintf(out, "operation body: %d bytes\n", len(msg.Operation.Data))
	}
	return nil
}
