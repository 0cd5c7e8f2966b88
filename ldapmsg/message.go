package ldapmsg

import (
	"github.com/oba-ldap/ldapwire/ber"
)

// The envelope — LDAPMessage ::= SEQUENCE { messageID, protocolOp,
// controls [0] OPTIONAL } — is the one part of this package decoded
// through the resumable ber.Container rather than a flat byte slice,
// so that a SearchResultEntry (or any other PDU) arriving split across
// arbitrary read boundaries decodes identically regardless of where
// the splits fall. Once the envelope grammar below has captured the
// protocolOp and controls fields as opaque blobs, each operation's own
// body is already a single fully-buffered slice and is parsed with the
// plain slice-based TLV reads in codec.go and the per-operation files.

const (
	stEnvelopeStart = iota
	stAfterEnvelopeOpen
	stAfterMessageID
	stAfterOperation
	stAfterControls
)

// rawEnvelope is the Container.Message the envelope grammar populates.
type rawEnvelope struct {
	messageID   int
	operation   *RawOperation
	controls    []byte
	hasControls bool
}

var envelopeGrammar = buildEnvelopeGrammar()

func buildEnvelopeGrammar() *ber.Grammar {
	g := ber.NewGrammar("ldap-envelope", []ber.GrammarState{
		{Name: "start"},
		{Name: "after-envelope-open"},
		{Name: "after-message-id"},
		{Name: "after-operation"},
		{Name: "after-controls"},
	}, stEnvelopeStart)

	envelopeTag := byte(ber.ClassUniversal | ber.TypeConstructed | ber.TagSequence)
	g.AddTransition(stEnvelopeStart, envelopeTag, ber.Transition{ToState: stAfterEnvelopeOpen})

	g.AddTransition(stAfterEnvelopeOpen, ber.TagInteger, ber.Transition{
		ToState: stAfterMessageID,
		Action: func(c *ber.Container) error {
			n, err := ber.DecodeInteger(c.CurrentValue())
			if err != nil {
				return err
			}
			if n < MinMessageID || n > MaxMessageID {
				return ErrInvalidMessageID
			}
			env := c.Message.(*rawEnvelope)
			env.messageID = int(n)
			// From here on, the operation and controls TLVs are
			// captured whole rather than recursed into: they are
			// parsed separately, off the already-buffered slice,
			// once this container hands them over.
			c.SetGathering(true)
			return nil
		},
	})

	for _, op := range operationTags {
		tagByte := applicationTagByte(op)
		opTag := op
		g.AddTransition(stAfterMessageID, tagByte, ber.Transition{
			ToState: stAfterOperation,
			// Controls are optional: a PDU with no controls SEQUENCE
			// is already complete once the operation is captured.
			FollowUp: ber.FollowUpOptional,
			Action: func(c *ber.Container) error {
				env := c.Message.(*rawEnvelope)
				env.operation = &RawOperation{
					Tag:  opTag,
					Data: append([]byte(nil), c.CurrentValue()...),
				}
				return nil
			},
		})
	}

	controlsTag := byte(ber.ClassContextSpecific | ber.TypeConstructed | ContextTagControls)
	g.AddTransition(stAfterOperation, controlsTag, ber.Transition{
		ToState: stAfterControls,
		// Nothing follows controls in the envelope grammar, so the
		// PDU is always complete once this transition fires.
		FollowUp: ber.FollowUpOptional,
		Action: func(c *ber.Container) error {
			env := c.Message.(*rawEnvelope)
			env.controls = append([]byte(nil), c.CurrentValue()...)
			env.hasControls = true
			return nil
		},
	})

	return g
}

// operationTags lists every APPLICATION tag number the envelope
// grammar recognizes as a protocolOp choice, per RFC 4511 Section 4.2.
var operationTags = []int{
	ApplicationBindRequest, ApplicationBindResponse, ApplicationUnbindRequest,
	ApplicationSearchRequest, ApplicationSearchResultEntry, ApplicationSearchResultDone,
	ApplicationModifyRequest, ApplicationModifyResponse,
	ApplicationAddRequest, ApplicationAddResponse,
	ApplicationDelRequest, ApplicationDelResponse,
	ApplicationModifyDNRequest, ApplicationModifyDNResponse,
	ApplicationCompareRequest, ApplicationCompareResponse,
	ApplicationAbandonRequest,
	ApplicationSearchResultReference,
	ApplicationExtendedRequest, ApplicationExtendedResponse, ApplicationIntermediateResponse,
}

func applicationTagByte(number int) byte {
	kind := byte(ber.TypeConstructed)
	if primitiveOperations[number] {
		kind = ber.TypePrimitive
	}
	return byte(ber.ClassApplication) | kind | byte(number)
}

// ParseLDAPMessage decodes one complete LDAPMessage envelope from data,
// which must hold exactly one PDU (trailing bytes are rejected). Use
// NewEnvelopeDecoder for a stream where messages may arrive in
// arbitrary chunks.
func ParseLDAPMessage(data []byte) (*LDAPMessage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}
	dec := NewEnvelopeDecoder()
	outcome, err := dec.Decode(data)
	if err != nil {
		return nil, err
	}
	if outcome != ber.OutcomePDUComplete {
		return nil, NewParseError(len(data), "truncated LDAP message", nil)
	}
	if len(dec.Remaining()) > 0 {
		return nil, NewParseError(len(data)-len(dec.Remaining()), "trailing bytes after message", ber.ErrTrailingBytesAfterPDU)
	}
	return dec.Message()
}

// EnvelopeDecoder drives the resumable envelope Container across
// however many Decode calls a caller's input chunking requires,
// yielding one fully-parsed LDAPMessage per completed PDU.
type EnvelopeDecoder struct {
	container *ber.Container
	env       rawEnvelope
}

// NewEnvelopeDecoder creates a decoder ready for one LDAPMessage PDU,
// using ber.DefaultOptions().
func NewEnvelopeDecoder() *EnvelopeDecoder {
	return NewEnvelopeDecoderWithOptions(ber.DefaultOptions())
}

// NewEnvelopeDecoderWithOptions is NewEnvelopeDecoder with caller-supplied
// decoder limits (e.g. a tighter MaxPDUSize).
func NewEnvelopeDecoderWithOptions(opts ber.DecoderOptions) *EnvelopeDecoder {
	d := &EnvelopeDecoder{container: ber.NewContainer(envelopeGrammar, opts)}
	d.container.Message = &d.env
	return d
}

// SetSink installs a trace sink that receives structured diagnostics for
// every TLV this decoder processes — grammar failures, malformed BER, and
// policy violations. The default is ber.NopSink; package obalog adapts
// this to zerolog with a per-decode correlation ID.
func (d *EnvelopeDecoder) SetSink(sink ber.TraceSink) {
	d.container.Sink = sink
}

// Decode feeds data into the envelope container. See ber.Container.Decode
// for the Outcome contract.
func (d *EnvelopeDecoder) Decode(data []byte) (ber.Outcome, error) {
	return d.container.Decode(data)
}

// Remaining reports bytes buffered but not yet consumed — trailing
// input after a completed PDU, belonging to the next one.
func (d *EnvelopeDecoder) Remaining() []byte { return d.container.Remaining() }

// Message converts the completed decode into an *LDAPMessage,
// including parsing the controls blob (if any) into Control values.
func (d *EnvelopeDecoder) Message() (*LDAPMessage, error) {
	if d.env.operation == nil {
		return nil, ErrMissingOperation
	}
	msg := &LDAPMessage{
		MessageID: d.env.messageID,
		Operation: d.env.operation,
	}
	if d.env.hasControls {
		controls, err := parseControls(d.env.controls)
		if err != nil {
			return nil, err
		}
		msg.Controls = controls
	}
	return msg, nil
}

// Reset prepares the decoder to parse another PDU from the same
// underlying container, preserving any already-buffered trailing bytes.
func (d *EnvelopeDecoder) Reset() {
	d.container.Clean()
	d.env = rawEnvelope{}
}

// parseControls walks a Controls SEQUENCE's already-captured raw
// content bytes as a flat list of Control SEQUENCEs.
func parseControls(data []byte) ([]Control, error) {
	var controls []Control
	for len(data) > 0 {
		t, err := readTLV(data)
		if err != nil {
			return nil, ErrInvalidControlSequence
		}
		ctrl, err := parseControl(t.value)
		if err != nil {
			return nil, err
		}
		controls = append(controls, ctrl)
		data = data[t.consumed:]
	}
	return controls, nil
}

func parseControl(data []byte) (Control, error) {
	var c Control

	oidTLV, err := readTLV(data)
	if err != nil {
		return c, ErrInvalidControlOID
	}
	c.OID = string(oidTLV.value)
	rest := data[oidTLV.consumed:]

	if len(rest) > 0 {
		next, err := readTLV(rest)
		if err == nil && next.tag == ber.TagBoolean {
			crit, berr := ber.DecodeBoolean(next.value)
			if berr != nil {
				return c, berr
			}
			c.Criticality = crit
			rest = rest[next.consumed:]
		}
	}

	if len(rest) > 0 {
		valTLV, err := readTLV(rest)
		if err != nil {
			return c, ErrInvalidControlSequence
		}
		c.Value = valTLV.value
	}

	return c, nil
}

// Encode serializes the message as a complete LDAPMessage envelope.
func (m *LDAPMessage) Encode() ([]byte, error) {
	if m.Operation == nil {
		return nil, ErrMissingOperation
	}
	if m.MessageID < MinMessageID || m.MessageID > MaxMessageID {
		return nil, ErrInvalidMessageID
	}

	buf := ber.NewAsn1Buffer(len(m.Operation.Data) + 64)
	start := buf.BeginSequence()

	if len(m.Controls) > 0 {
		encodeControlsInto(buf, m.Controls)
	}

	opStart := buf.Position()
	buf.EncodeRaw(m.Operation.Data)
	if primitiveOperations[m.Operation.Tag] {
		buf.EndApplicationTagPrimitive(opStart, byte(m.Operation.Tag))
	} else {
		buf.EndApplicationTag(opStart, byte(m.Operation.Tag))
	}

	buf.EncodeInteger(int64(m.MessageID))
	buf.EndSequence(start)

	return buf.Bytes(), nil
}

func encodeControlsInto(buf *ber.Asn1Buffer, controls []Control) {
	start := buf.Position()
	for i := len(controls) - 1; i >= 0; i-- {
		encodeControl(buf, controls[i])
	}
	buf.EndContextTag(start, ContextTagControls)
}

func encodeControl(buf *ber.Asn1Buffer, c Control) {
	start := buf.Position()
	if c.Value != nil {
		buf.EncodeOctetString(c.Value)
	}
	if c.Criticality {
		buf.EncodeBoolean(true)
	}
	buf.EncodeOctetString([]byte(c.OID))
	buf.EndSequence(start)
}
