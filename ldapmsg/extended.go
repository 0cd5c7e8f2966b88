package ldapmsg

import (
	"errors"
	"sync"

	"github.com/oba-ldap/ldapwire/ber"
)

// Context-specific tags for ExtendedRequest/ExtendedResponse/
// IntermediateResponse, per RFC 4511 Section 4.12.
const (
	ContextTagExtendedRequestName   = 0  // requestName [0] LDAPOID
	ContextTagExtendedRequestValue  = 1  // requestValue [1] OCTET STRING OPTIONAL
	ContextTagExtendedResponseName  = 10 // responseName [10] LDAPOID OPTIONAL
	ContextTagExtendedResponseValue = 11 // responseValue [11] OCTET STRING OPTIONAL
	ContextTagIntermediateName      = 0  // responseName [0] LDAPOID OPTIONAL
	ContextTagIntermediateValue     = 1  // responseValue [1] OCTET STRING OPTIONAL
)

// Well-known extended operation OIDs this package ships a factory for.
const (
	OIDStartTLS       = "1.3.6.1.4.1.1466.20037"  // RFC 4511 Appendix B
	OIDWhoAmI         = "1.3.6.1.4.1.4203.1.11.3" // RFC 4532
	OIDPasswordModify = "1.3.6.1.4.1.4203.1.11.1" // RFC 3062
)

// ErrInvalidExtendedValue is returned when a registered
// ExtendedOperationFactory is handed a Go value of the wrong type to encode.
var ErrInvalidExtendedValue = errors.New("ldapmsg: value does not match the extended operation factory registered for this OID")

// ExtendedRequest represents an LDAP Extended Request.
// ExtendedRequest ::= [APPLICATION 23] SEQUENCE {
//
//	requestName      [0] LDAPOID,
//	requestValue     [1] OCTET STRING OPTIONAL
//
// }
type ExtendedRequest struct {
	// OID identifies the extended operation.
	OID string
	// Value is the opaque requestValue bytes, or nil if absent. Use
	// DecodeValue to interpret it through the factory registered for OID.
	Value []byte
}

// ParseExtendedRequest parses an ExtendedRequest from raw operation data —
// the contents of the APPLICATION 23 tag, without the tag and length.
func ParseExtendedRequest(data []byte) (*ExtendedRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty extended request data", nil)
	}

	nameTLV, err := readTLV(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read requestName", err)
	}
	if nameTLV.tag != byte(ber.ClassContextSpecific|ber.TypePrimitive|ContextTagExtendedRequestName) {
		return nil, NewParseError(0, "unexpected tag for requestName", ErrInvalidOperation)
	}
	req := &ExtendedRequest{OID: string(nameTLV.value)}

	if rest := data[nameTLV.consumed:]; len(rest) > 0 {
		valTLV, err := readTLV(rest)
		if err != nil {
			return nil, NewParseError(nameTLV.consumed, "failed to read requestValue", err)
		}
		req.Value = valTLV.value
	}

	return req, nil
}

// Encode encodes the ExtendedRequest to BER format (without the
// APPLICATION tag).
func (r *ExtendedRequest) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(32 + len(r.Value) + len(r.OID))
	if r.Value != nil {
		buf.EncodeTaggedOctetString(r.Value, byte(ber.ClassContextSpecific|ber.TypePrimitive|ContextTagExtendedRequestValue))
	}
	buf.EncodeTaggedOctetString([]byte(r.OID), byte(ber.ClassContextSpecific|ber.TypePrimitive|ContextTagExtendedRequestName))
	return buf.Bytes(), nil
}

// DecodeValue interprets r.Value through the ExtendedOperationFactory
// registered for r.OID. With no factory registered, it returns the raw
// opaque bytes unchanged, per spec.md §4.4.
func (r *ExtendedRequest) DecodeValue() (any, error) {
	f, ok := LookupExtendedOperationFactory(r.OID)
	if !ok {
		return r.Value, nil
	}
	return f.DecodeRequestValue(r.Value)
}

// ExtendedResponse represents an LDAP Extended Response.
// ExtendedResponse ::= [APPLICATION 24] SEQUENCE {
//
//	COMPONENTS OF LDAPResult,
//	responseName     [10] LDAPOID OPTIONAL,
//	responseValue    [11] OCTET STRING OPTIONAL
//
// }
type ExtendedResponse struct {
	LDAPResult
	// OID is the responseName, or "" if absent.
	OID string
	// Value is the opaque responseValue bytes, or nil if absent.
	Value []byte
}

// ParseExtendedResponse parses an ExtendedResponse from raw operation
// data — the contents of the APPLICATION 24 tag, without the tag and
// length.
func ParseExtendedResponse(data []byte) (*ExtendedResponse, error) {
	result, consumed, err := decodeLDAPResult(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read extended result", err)
	}
	resp := &ExtendedResponse{LDAPResult: result}

	rest := data[consumed:]
	for len(rest) > 0 {
		t, err := readTLV(rest)
		if err != nil {
			return nil, NewParseError(len(data)-len(rest), "failed to read extended response field", err)
		}
		switch t.tag {
		case byte(ber.ClassContextSpecific | ber.TypePrimitive | ContextTagExtendedResponseName):
			resp.OID = string(t.value)
		case byte(ber.ClassContextSpecific | ber.TypePrimitive | ContextTagExtendedResponseValue):
			resp.Value = t.value
		}
		rest = rest[t.consumed:]
	}

	return resp, nil
}

// Encode encodes the ExtendedResponse to BER format (without the
// APPLICATION tag).
func (r *ExtendedResponse) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(64 + len(r.Value) + len(r.OID))
	if r.Value != nil {
		buf.EncodeTaggedOctetString(r.Value, byte(ber.ClassContextSpecific|ber.TypePrimitive|ContextTagExtendedResponseValue))
	}
	if r.OID != "" {
		buf.EncodeTaggedOctetString([]byte(r.OID), byte(ber.ClassContextSpecific|ber.TypePrimitive|ContextTagExtendedResponseName))
	}
	encodeLDAPResult(buf, r.LDAPResult)
	return buf.Bytes(), nil
}

// DecodeValue interprets r.Value through the ExtendedOperationFactory
// registered for r.OID, falling back to the opaque bytes with no factory
// registered.
func (r *ExtendedResponse) DecodeValue() (any, error) {
	f, ok := LookupExtendedOperationFactory(r.OID)
	if !ok {
		return r.Value, nil
	}
	return f.DecodeResponseValue(r.Value)
}

// IntermediateResponse represents an LDAP Intermediate Response, per RFC
// 4511 Section 4.13.
// IntermediateResponse ::= [APPLICATION 25] SEQUENCE {
//
//	responseName     [0] LDAPOID OPTIONAL,
//	responseValue    [1] OCTET STRING OPTIONAL
//
// }
type IntermediateResponse struct {
	// OID is the responseName, or "" if absent.
	OID string
	// Value is the opaque responseValue bytes, or nil if absent.
	Value []byte
}

// ParseIntermediateResponse parses an IntermediateResponse from raw
// operation data — the contents of the APPLICATION 25 tag, without the
// tag and length.
func ParseIntermediateResponse(data []byte) (*IntermediateResponse, error) {
	resp := &IntermediateResponse{}
	rest := data
	for len(rest) > 0 {
		t, err := readTLV(rest)
		if err != nil {
			return nil, NewParseError(len(data)-len(rest), "failed to read intermediate response field", err)
		}
		switch t.tag {
		case byte(ber.ClassContextSpecific | ber.TypePrimitive | ContextTagIntermediateName):
			resp.OID = string(t.value)
		case byte(ber.ClassContextSpecific | ber.TypePrimitive | ContextTagIntermediateValue):
			resp.Value = t.value
		}
		rest = rest[t.consumed:]
	}
	return resp, nil
}

// Encode encodes the IntermediateResponse to BER format (without the
// APPLICATION tag).
func (r *IntermediateResponse) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(32 + len(r.Value) + len(r.OID))
	if r.Value != nil {
		buf.EncodeTaggedOctetString(r.Value, byte(ber.ClassContextSpecific|ber.TypePrimitive|ContextTagIntermediateValue))
	}
	if r.OID != "" {
		buf.EncodeTaggedOctetString([]byte(r.OID), byte(ber.ClassContextSpecific|ber.TypePrimitive|ContextTagIntermediateName))
	}
	return buf.Bytes(), nil
}

// DecodeValue interprets r.Value through the ExtendedOperationFactory
// registered for r.OID, falling back to the opaque bytes with no factory
// registered.
func (r *IntermediateResponse) DecodeValue() (any, error) {
	f, ok := LookupExtendedOperationFactory(r.OID)
	if !ok {
		return r.Value, nil
	}
	return f.DecodeResponseValue(r.Value)
}

// ExtendedOperationFactory decodes and encodes the opaque request/response
// value an extended operation carries, once its OID identifies which
// operation it is. Per spec.md §4.4, an OID with no registered factory
// falls back to opaque passthrough rather than failing the decode.
type ExtendedOperationFactory interface {
	DecodeRequestValue(value []byte) (any, error)
	EncodeRequestValue(v any) ([]byte, error)
	DecodeResponseValue(value []byte) (any, error)
	EncodeResponseValue(v any) ([]byte, error)
}

var (
	extendedFactoriesMu sync.RWMutex
	extendedFactories   = map[string]ExtendedOperationFactory{}
)

// RegisterExtendedOperationFactory registers f as the factory for oid,
// replacing any factory previously registered for it. Per spec.md §5 this
// registry is a process-wide read-mostly map: registration is safe to call
// at any time, but callers should finish registering before decoders that
// look OIDs up start running concurrently.
func RegisterExtendedOperationFactory(oid string, f ExtendedOperationFactory) {
	extendedFactoriesMu.Lock()
	defer extendedFactoriesMu.Unlock()
	extendedFactories[oid] = f
}

// LookupExtendedOperationFactory returns the factory registered for oid, if any.
func LookupExtendedOperationFactory(oid string) (ExtendedOperationFactory, bool) {
	extendedFactoriesMu.RLock()
	defer extendedFactoriesMu.RUnlock()
	f, ok := extendedFactories[oid]
	return f, ok
}

func init() {
	RegisterExtendedOperationFactory(OIDStartTLS, startTLSFactory{})
	RegisterExtendedOperationFactory(OIDWhoAmI, whoAmIFactory{})
	RegisterExtendedOperationFactory(OIDPasswordModify, passwordModifyFactory{})
}

// startTLSFactory handles the StartTLS extended operation (RFC 4511
// Appendix B), which carries no request or response value at all.
type startTLSFactory struct{}

func (startTLSFactory) DecodeRequestValue([]byte) (any, error)  { return nil, nil }
func (startTLSFactory) EncodeRequestValue(any) ([]byte, error)  { return nil, nil }
func (startTLSFactory) DecodeResponseValue([]byte) (any, error) { return nil, nil }
func (startTLSFactory) EncodeResponseValue(any) ([]byte, error) { return nil, nil }

// whoAmIFactory handles the "Who am I?" extended operation (RFC 4532): an
// empty request, and a response value that is the raw authzId string with
// no further BER structure around it.
type whoAmIFactory struct{}

func (whoAmIFactory) DecodeRequestValue([]byte) (any, error) { return nil, nil }
func (whoAmIFactory) EncodeRequestValue(any) ([]byte, error) { return nil, nil }

func (whoAmIFactory) DecodeResponseValue(value []byte) (any, error) {
	return string(value), nil
}

func (whoAmIFactory) EncodeResponseValue(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, ErrInvalidExtendedValue
	}
	return []byte(s), nil
}

// PasswordModifyRequest is the Password Modify extended operation's
// request value, per RFC 3062:
// PasswdModifyRequestValue ::= SEQUENCE {
//
//	userIdentity    [0] OCTET STRING OPTIONAL,
//	oldPasswd       [1] OCTET STRING OPTIONAL,
//	newPasswd       [2] OCTET STRING OPTIONAL
//
// }
type PasswordModifyRequest struct {
	UserIdentity []byte
	OldPassword  []byte
	NewPassword  []byte
}

// PasswordModifyResponse is the Password Modify extended operation's
// response value, per RFC 3062:
// PasswdModifyResponseValue ::= SEQUENCE {
//
//	genPasswd       [0] OCTET STRING OPTIONAL
//
// }
type PasswordModifyResponse struct {
	GenPassword []byte
}

type passwordModifyFactory struct{}

const (
	tagPasswordUserIdentity = 0
	tagPasswordOld          = 1
	tagPasswordNew          = 2
	tagPasswordGenerated    = 0
)

func (passwordModifyFactory) DecodeRequestValue(value []byte) (any, error) {
	req := &PasswordModifyRequest{}
	if len(value) == 0 {
		return req, nil
	}
	outer, err := readTLV(value)
	if err != nil {
		return nil, err
	}
	rest := outer.value
	for len(rest) > 0 {
		f, err := readTLV(rest)
		if err != nil {
			return nil, err
		}
		switch f.tag {
		case byte(ber.ClassContextSpecific | ber.TypePrimitive | tagPasswordUserIdentity):
			req.UserIdentity = f.value
		case byte(ber.ClassContextSpecific | ber.TypePrimitive | tagPasswordOld):
			req.OldPassword = f.value
		case byte(ber.ClassContextSpecific | ber.TypePrimitive | tagPasswordNew):
			req.NewPassword = f.value
		}
		rest = rest[f.consumed:]
	}
	return req, nil
}

func (passwordModifyFactory) EncodeRequestValue(v any) ([]byte, error) {
	req, ok := v.(*PasswordModifyRequest)
	if !ok {
		return nil, ErrInvalidExtendedValue
	}
	buf := ber.NewAsn1Buffer(64)
	start := buf.Position()
	if len(req.NewPassword) > 0 {
		buf.EncodeTaggedOctetString(req.NewPassword, byte(ber.ClassContextSpecific|ber.TypePrimitive|tagPasswordNew))
	}
	if len(req.OldPassword) > 0 {
		buf.EncodeTaggedOctetString(req.OldPassword, byte(ber.ClassContextSpecific|ber.TypePrimitive|tagPasswordOld))
	}
	if len(req.UserIdentity) > 0 {
		buf.EncodeTaggedOctetString(req.UserIdentity, byte(ber.ClassContextSpecific|ber.TypePrimitive|tagPasswordUserIdentity))
	}
	buf.EndSequence(start)
	return buf.Bytes(), nil
}

func (passwordModifyFactory) DecodeResponseValue(value []byte) (any, error) {
	resp := &PasswordModifyResponse{}
	if len(value) == 0 {
		return resp, nil
	}
	outer, err := readTLV(value)
	if err != nil {
		return nil, err
	}
	if len(outer.value) > 0 {
		f, err := readTLV(outer.value)
		if err != nil {
			return nil, err
		}
		if f.tag == byte(ber.ClassContextSpecific|ber.TypePrimitive|tagPasswordGenerated) {
			resp.GenPassword = f.value
		}
	}
	return resp, nil
}

func (passwordModifyFactory) EncodeResponseValue(v any) ([]byte, error) {
	resp, ok := v.(*PasswordModifyResponse)
	if !ok {
		return nil, ErrInvalidExtendedValue
	}
	if len(resp.GenPassword) == 0 {
		return nil, nil
	}
	buf := ber.NewAsn1Buffer(32)
	start := buf.Position()
	buf.EncodeTaggedOctetString(resp.GenPassword, byte(ber.ClassContextSpecific|ber.TypePrimitive|tagPasswordGenerated))
	buf.EndSequence(start)
	return buf.Bytes(), nil
}
