package ldapmsg

import (
	"bytes"
	"testing"

	"github.com/oba-ldap/ldapwire/ber"
)

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	bindBody, err := (&BindRequest{Version: 3, Name: "", AuthMethod: AuthMethodSimple}).Encode()
	if err != nil {
		t.Fatalf("encode bind body: %v", err)
	}

	msg := &LDAPMessage{
		MessageID: 1,
		Operation: &RawOperation{Tag: ApplicationBindRequest, Data: bindBody},
	}

	encoded, err := msg.Encode()
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	decoded, err := ParseLDAPMessage(encoded)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if decoded.MessageID != 1 {
		t.Fatalf("messageID = %d, want 1", decoded.MessageID)
	}
	if decoded.OperationType() != ApplicationBindRequest {
		t.Fatalf("operation type = %v, want BindRequest", decoded.OperationType())
	}

	req, err := ParseBindRequest(decoded.Operation.Data)
	if err != nil {
		t.Fatalf("parse bind request: %v", err)
	}
	if !req.IsAnonymous() {
		t.Fatalf("expected anonymous bind, got %+v", req)
	}
}

func TestMessageWithControls(t *testing.T) {
	msg := &LDAPMessage{
		MessageID: 7,
		Operation: &RawOperation{Tag: ApplicationUnbindRequest, Data: []byte{}},
		Controls: []Control{
			{OID: "1.2.3.4", Criticality: true, Value: []byte("x")},
		},
	}

	encoded, err := msg.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := ParseLDAPMessage(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(decoded.Controls) != 1 {
		t.Fatalf("controls = %d, want 1", len(decoded.Controls))
	}
	c := decoded.Controls[0]
	if c.OID != "1.2.3.4" || !c.Criticality || string(c.Value) != "x" {
		t.Fatalf("control = %+v", c)
	}
}

// TestAbandonRequestWireFormat covers RFC 4511's AbandonRequest — a bare
// APPLICATION 16 INTEGER, with no SEQUENCE wrapper around its body.
func TestAbandonRequestWireFormat(t *testing.T) {
	wire := []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x50, 0x01, 0x07}

	msg, err := ParseLDAPMessage(wire)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.MessageID != 5 {
		t.Fatalf("messageID = %d, want 5", msg.MessageID)
	}
	if msg.OperationType() != ApplicationAbandonRequest {
		t.Fatalf("operation type = %v, want AbandonRequest", msg.OperationType())
	}

	abandon, err := ParseAbandonRequest(msg.Operation.Data)
	if err != nil {
		t.Fatalf("parse abandon: %v", err)
	}
	if abandon.MessageID != 7 {
		t.Fatalf("abandoned messageID = %d, want 7", abandon.MessageID)
	}

	body, err := abandon.Encode()
	if err != nil {
		t.Fatalf("encode abandon: %v", err)
	}
	out, err := (&LDAPMessage{MessageID: 5, Operation: &RawOperation{Tag: ApplicationAbandonRequest, Data: body}}).Encode()
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	if !bytes.Equal(out, wire) {
		t.Fatalf("re-encoded = % x, want % x", out, wire)
	}
}

// TestUnbindRequestWireFormat covers RFC 4511's UnbindRequest — a bare
// APPLICATION 2 NULL, with an empty body.
func TestUnbindRequestWireFormat(t *testing.T) {
	wire := []byte{0x30, 0x05, 0x02, 0x01, 0x09, 0x42, 0x00}

	msg, err := ParseLDAPMessage(wire)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.MessageID != 9 {
		t.Fatalf("messageID = %d, want 9", msg.MessageID)
	}
	if msg.OperationType() != ApplicationUnbindRequest {
		t.Fatalf("operation type = %v, want UnbindRequest", msg.OperationType())
	}
	if len(msg.Operation.Data) != 0 {
		t.Fatalf("unbind body = % x, want empty", msg.Operation.Data)
	}

	out, err := (&LDAPMessage{MessageID: 9, Operation: &RawOperation{Tag: ApplicationUnbindRequest, Data: []byte{}}}).Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(out, wire) {
		t.Fatalf("re-encoded = % x, want % x", out, wire)
	}
}

// TestChunkedSearchResultEntryDecode exercises the envelope decoder's
// resumability: a SearchResultEntry message must decode identically no
// matter where the input is split across Decode calls.
func TestChunkedSearchResultEntryDecode(t *testing.T) {
	entry := &SearchResultEntry{
		ObjectName: "uid=alice,dc=example,dc=com",
		Attributes: []PartialAttribute{
			{Type: "cn", Values: [][]byte{[]byte("Alice")}},
			{Type: "mail", Values: [][]byte{[]byte("alice@example.com"), []byte("a@example.com")}},
		},
	}
	body, err := entry.Encode()
	if err != nil {
		t.Fatalf("encode entry: %v", err)
	}
	wire, err := (&LDAPMessage{MessageID: 42, Operation: &RawOperation{Tag: ApplicationSearchResultEntry, Data: body}}).Encode()
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	for split := 1; split < len(wire); split++ {
		dec := NewEnvelopeDecoder()

		if _, err := dec.Decode(wire[:split]); err != nil {
			t.Fatalf("split %d: first chunk: %v", split, err)
		}

		outcome, err := dec.Decode(wire[split:])
		if err != nil {
			t.Fatalf("split %d: second chunk: %v", split, err)
		}
		if outcome != ber.OutcomePDUComplete {
			t.Fatalf("split %d: outcome = %v, want complete", split, outcome)
		}

		msg, err := dec.Message()
		if err != nil {
			t.Fatalf("split %d: message: %v", split, err)
		}
		if msg.MessageID != 42 {
			t.Fatalf("split %d: messageID = %d, want 42", split, msg.MessageID)
		}

		got, err := ParseSearchResultEntry(msg.Operation.Data)
		if err != nil {
			t.Fatalf("split %d: parse entry: %v", split, err)
		}
		if got.ObjectName != entry.ObjectName || len(got.Attributes) != len(entry.Attributes) {
			t.Fatalf("split %d: entry = %+v", split, got)
		}
	}
}

func TestParseLDAPMessageRejectsEmpty(t *testing.T) {
	if _, err := ParseLDAPMessage(nil); err != ErrEmptyMessage {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestParseLDAPMessageRejectsTrailingBytes(t *testing.T) {
	wire := []byte{0x30, 0x05, 0x02, 0x01, 0x09, 0x42, 0x00}
	trailed := append(append([]byte(nil), wire...), 0xFF)
	if _, err := ParseLDAPMessage(trailed); err == nil {
		t.Fatalf("expected error for trailing bytes")
	}
}

func TestLDAPMessageEncodeRejectsInvalidMessageID(t *testing.T) {
	msg := &LDAPMessage{MessageID: -1, Operation: &RawOperation{Tag: ApplicationUnbindRequest, Data: []byte{}}}
	if _, err := msg.Encode(); err != ErrInvalidMessageID {
		t.Fatalf("err = %v, want ErrInvalidMessageID", err)
	}
}

func TestLDAPMessageEncodeRejectsMissingOperation(t *testing.T) {
	msg := &LDAPMessage{MessageID: 1}
	if _, err := msg.Encode(); err != ErrMissingOperation {
		t.Fatalf("err = %v, want ErrMissingOperation", err)
	}
}
