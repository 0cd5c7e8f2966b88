package ldapmsg

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
)

// Operation bodies arrive already sliced out of their enclosing
// LDAPMessage envelope (see message.go), with their size known up
// front, so encoding and decoding work directly against byte slices
// rather than through the resumable ber.Container state machine used
// for the envelope itself.

// ErrTruncatedOperation is returned when an operation's encoded length
// claims more bytes than are actually present.
var ErrTruncatedOperation = errors.New("ldapmsg: truncated operation encoding")

// tlv is a single parsed tag/value pair, with consumed giving the total
// number of input bytes (tag + length octets + value) it occupied.
type tlv struct {
	tag      byte
	value    []byte
	consumed int
}

func readTLV(data []byte) (tlv, error) {
	if len(data) == 0 {
		return tlv{}, ErrTruncatedOperation
	}
	tag := data[0]
	length, lenBytes, err := ber.DecodeLength(data[1:])
	if err != nil {
		return tlv{}, err
	}
	start := 1 + lenBytes
	if start+length > len(data) {
		return tlv{}, ErrTruncatedOperation
	}
	return tlv{tag: tag, value: data[start : start+length], consumed: start + length}, nil
}

// encodeAttributeLike appends a PartialAttribute(WITH VALUES)-shaped
// SEQUENCE { type OCTET STRING, vals SET OF OCTET STRING } — the wire
// shape shared by AddRequest's attributes, ModifyRequest's changes, and
// SearchResultEntry's attributes.
func encodeAttributeLike(buf *ber.Asn1Buffer, typ string, values [][]byte) {
	start := buf.Position()
	valsStart := buf.BeginSet()
	for i := len(values) - 1; i >= 0; i-- {
		buf.EncodeOctetString(values[i])
	}
	buf.EndSet(valsStart)
	buf.EncodeOctetString([]byte(typ))
	buf.EndSequence(start)
}

// decodeAttributeLike parses one attribute-shaped SEQUENCE (tag and
// length included) from the front of data.
func decodeAttributeLike(data []byte) (typ string, values [][]byte, consumed int, err error) {
	t, err := readTLV(data)
	if err != nil {
		return "", nil, 0, err
	}
	rest := t.value
	typTLV, err := readTLV(rest)
	if err != nil {
		return "", nil, 0, err
	}
	typ = string(typTLV.value)
	rest = rest[typTLV.consumed:]

	setTLV, err := readTLV(rest)
	if err != nil {
		return "", nil, 0, err
	}
	vals := setTLV.value
	for len(vals) > 0 {
		v, verr := readTLV(vals)
		if verr != nil {
			return "", nil, 0, verr
		}
		values = append(values, v.value)
		vals = vals[v.consumed:]
	}
	return typ, values, t.consumed, nil
}

// encodeLDAPResult appends an LDAPResult's fields (resultCode,
// matchedDN, diagnosticMessage, optional referral) without any
// enclosing tag of its own — per RFC 4511, LDAPResult's components are
// spliced directly into the SEQUENCE of whichever response APPLICATION
// tag embeds it ("COMPONENTS OF LDAPResult").
func encodeLDAPResult(buf *ber.Asn1Buffer, r LDAPResult) {
	if len(r.Referral) > 0 {
		start := buf.Position()
		for i := len(r.Referral) - 1; i >= 0; i-- {
			buf.EncodeOctetString([]byte(r.Referral[i]))
		}
		buf.EndContextTag(start, ContextTagReferral)
	}
	buf.EncodeOctetString([]byte(r.DiagnosticMessage))
	buf.EncodeOctetString([]byte(r.MatchedDN))
	buf.EncodeEnumerated(int64(r.ResultCode))
}

func decodeLDAPResult(data []byte) (LDAPResult, int, error) {
	var r LDAPResult

	codeTLV, err := readTLV(data)
	if err != nil {
		return r, 0, err
	}
	code, err := ber.DecodeEnumerated(codeTLV.value)
	if err != nil {
		return r, 0, err
	}
	r.ResultCode = ResultCode(code)
	consumed := codeTLV.consumed
	rest := data[consumed:]

	dnTLV, err := readTLV(rest)
	if err != nil {
		return r, 0, err
	}
	r.MatchedDN = string(dnTLV.value)
	consumed += dnTLV.consumed
	rest = rest[dnTLV.consumed:]

	msgTLV, err := readTLV(rest)
	if err != nil {
		return r, 0, err
	}
	r.DiagnosticMessage = string(msgTLV.value)
	consumed += msgTLV.consumed
	rest = rest[msgTLV.consumed:]

	if len(rest) > 0 {
		referralTag := ber.ClassContextSpecific | ber.TypeConstructed | ContextTagReferral
		if rest[0] == byte(referralTag) {
			refTLV, err := readTLV(rest)
			if err != nil {
				return r, 0, err
			}
			vals := refTLV.value
			for len(vals) > 0 {
				v, verr := readTLV(vals)
				if verr != nil {
					return r, 0, verr
				}
				r.Referral = append(r.Referral, string(v.value))
				vals = vals[v.consumed:]
			}
			consumed += refTLV.consumed
		}
	}

	return r, consumed, nil
}
