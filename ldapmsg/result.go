package ldapmsg

import (
	"github.com/oba-ldap/ldapwire/ber"
)

// Context-specific tags for response fields
const (
	// ContextTagReferral is the tag for referral URIs in LDAPResult [3]
	ContextTagReferral = 3
	// ContextTagServerSASLCreds is the tag for server SASL credentials in BindResponse [7]
	ContextTagServerSASLCreds = 7
)

// LDAPResult represents the common result structure used in most LDAP
// responses. Per RFC 4511 Section 4.1.9:
// LDAPResult ::= SEQUENCE {
//
//	resultCode         ENUMERATED { ... },
//	matchedDN          LDAPDN,
//	diagnosticMessage  LDAPString,
//	referral           [3] Referral OPTIONAL
//
// }
//
// LDAPResult never appears on the wire with a tag of its own — every
// response type below splices its fields directly ("COMPONENTS OF
// LDAPResult") into its own APPLICATION-tagged SEQUENCE, via
// encodeLDAPResult/decodeLDAPResult in codec.go.
type LDAPResult struct {
	// ResultCode indicates the outcome of the operation
	ResultCode ResultCode
	// MatchedDN contains the DN of the last entry matched during processing
	MatchedDN string
	// DiagnosticMessage contains additional diagnostic information
	DiagnosticMessage string
	// Referral contains URIs to other servers (optional)
	Referral []string
}

// BindResponse represents an LDAP Bind response.
// BindResponse ::= [APPLICATION 1] SEQUENCE {
//
//	COMPONENTS OF LDAPResult,
//	serverSaslCreds    [7] OCTET STRING OPTIONAL
//
// }
type BindResponse struct {
	LDAPResult
	// ServerSASLCreds contains server SASL credentials (optional)
	ServerSASLCreds []byte
}

// ParseBindResponse parses a BindResponse from raw operation data — the
// contents of the APPLICATION 1 tag, without the tag and length.
func ParseBindResponse(data []byte) (*BindResponse, error) {
	result, consumed, err := decodeLDAPResult(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read bind result", err)
	}
	resp := &BindResponse{LDAPResult: result}

	if rest := data[consumed:]; len(rest) > 0 {
		credsTag := byte(ber.ClassContextSpecific | ber.TypePrimitive | ContextTagServerSASLCreds)
		if rest[0] == credsTag {
			t, err := readTLV(rest)
			if err != nil {
				return nil, NewParseError(consumed, "failed to read serverSaslCreds", err)
			}
			resp.ServerSASLCreds = t.value
		}
	}

	return resp, nil
}

// Encode encodes the BindResponse to BER format (without the APPLICATION tag).
func (r *BindResponse) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(128)

	if len(r.ServerSASLCreds) > 0 {
		buf.EncodeTaggedOctetString(r.ServerSASLCreds, byte(ber.ClassContextSpecific|ber.TypePrimitive|ContextTagServerSASLCreds))
	}

	encodeLDAPResult(buf, r.LDAPResult)

	return buf.Bytes(), nil
}

// PartialAttribute represents an attribute with its values.
// PartialAttribute ::= SEQUENCE {
//
//	type       AttributeDescription,
//	vals       SET OF value AttributeValue
//
// }
type PartialAttribute struct {
	// Type is the attribute description (name or OID)
	Type string
	// Values contains the attribute values
	Values [][]byte
}

// SearchResultEntry represents a search result entry.
// SearchResultEntry ::= [APPLICATION 4] SEQUENCE {
//
//	objectName      LDAPDN,
//	attributes      PartialAttributeList
//
// }
type SearchResultEntry struct {
	// ObjectName is the DN of the entry
	ObjectName string
	// Attributes contains the entry's attributes
	Attributes []PartialAttribute
}

// ParseSearchResultEntry parses a SearchResultEntry from raw operation
// data — the contents of the APPLICATION 4 tag, without the tag and length.
func ParseSearchResultEntry(data []byte) (*SearchResultEntry, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty search result entry data", nil)
	}

	nameTLV, err := readTLV(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read objectName", err)
	}
	entry := &SearchResultEntry{ObjectName: string(nameTLV.value)}

	listTLV, err := readTLV(data[nameTLV.consumed:])
	if err != nil {
		return nil, NewParseError(nameTLV.consumed, "failed to read attributes sequence", err)
	}

	var attrs []PartialAttribute
	remaining := listTLV.value
	for len(remaining) > 0 {
		typ, values, consumed, err := decodeAttributeLike(remaining)
		if err != nil {
			return nil, NewParseError(0, "failed to read attribute", err)
		}
		attrs = append(attrs, PartialAttribute{Type: typ, Values: values})
		remaining = remaining[consumed:]
	}
	entry.Attributes = attrs

	return entry, nil
}

// Encode encodes the SearchResultEntry to BER format (without the APPLICATION tag).
func (r *SearchResultEntry) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(256)

	listStart := buf.Position()
	for i := len(r.Attributes) - 1; i >= 0; i-- {
		encodeAttributeLike(buf, r.Attributes[i].Type, r.Attributes[i].Values)
	}
	buf.EndSequence(listStart)

	buf.EncodeOctetString([]byte(r.ObjectName))

	return buf.Bytes(), nil
}

// SearchResultDone represents the final response to a search operation.
// SearchResultDone ::= [APPLICATION 5] LDAPResult
type SearchResultDone struct {
	LDAPResult
}

// ParseSearchResultDone parses a SearchResultDone from raw operation data.
func ParseSearchResultDone(data []byte) (*SearchResultDone, error) {
	result, _, err := decodeLDAPResult(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read search result done", err)
	}
	return &SearchResultDone{LDAPResult: result}, nil
}

// Encode encodes the SearchResultDone to BER format (without the APPLICATION tag).
func (r *SearchResultDone) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(64)
	encodeLDAPResult(buf, r.LDAPResult)
	return buf.Bytes(), nil
}

// ModifyResponse represents the response to a modify operation.
// ModifyResponse ::= [APPLICATION 7] LDAPResult
type ModifyResponse struct {
	LDAPResult
}

// ParseModifyResponse parses a ModifyResponse from raw operation data.
func ParseModifyResponse(data []byte) (*ModifyResponse, error) {
	result, _, err := decodeLDAPResult(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read modify response", err)
	}
	return &ModifyResponse{LDAPResult: result}, nil
}

// Encode encodes the ModifyResponse to BER format (without the APPLICATION tag).
func (r *ModifyResponse) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(64)
	encodeLDAPResult(buf, r.LDAPResult)
	return buf.Bytes(), nil
}

// AddResponse represents the response to an add operation.
// AddResponse ::= [APPLICATION 9] LDAPResult
type AddResponse struct {
	LDAPResult
}

// ParseAddResponse parses an AddResponse from raw operation data.
func ParseAddResponse(data []byte) (*AddResponse, error) {
	result, _, err := decodeLDAPResult(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read add response", err)
	}
	return &AddResponse{LDAPResult: result}, nil
}

// Encode encodes the AddResponse to BER format (without the APPLICATION tag).
func (r *AddResponse) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(64)
	encodeLDAPResult(buf, r.LDAPResult)
	return buf.Bytes(), nil
}

// DeleteResponse represents the response to a delete operation.
// DelResponse ::= [APPLICATION 11] LDAPResult
type DeleteResponse struct {
	LDAPResult
}

// ParseDeleteResponse parses a DeleteResponse from raw operation data.
func ParseDeleteResponse(data []byte) (*DeleteResponse, error) {
	result, _, err := decodeLDAPResult(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read delete response", err)
	}
	return &DeleteResponse{LDAPResult: result}, nil
}

// Encode encodes the DeleteResponse to BER format (without the APPLICATION tag).
func (r *DeleteResponse) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(64)
	encodeLDAPResult(buf, r.LDAPResult)
	return buf.Bytes(), nil
}

// ModifyDNResponse represents the response to a modify DN operation.
// ModifyDNResponse ::= [APPLICATION 13] LDAPResult
type ModifyDNResponse struct {
	LDAPResult
}

// ParseModifyDNResponse parses a ModifyDNResponse from raw operation data.
func ParseModifyDNResponse(data []byte) (*ModifyDNResponse, error) {
	result, _, err := decodeLDAPResult(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read modifydn response", err)
	}
	return &ModifyDNResponse{LDAPResult: result}, nil
}

// Encode encodes the ModifyDNResponse to BER format (without the APPLICATION tag).
func (r *ModifyDNResponse) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(64)
	encodeLDAPResult(buf, r.LDAPResult)
	return buf.Bytes(), nil
}

// CompareResponse represents the response to a compare operation.
// CompareResponse ::= [APPLICATION 15] LDAPResult
type CompareResponse struct {
	LDAPResult
}

// ParseCompareResponse parses a CompareResponse from raw operation data.
func ParseCompareResponse(data []byte) (*CompareResponse, error) {
	result, _, err := decodeLDAPResult(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read compare response", err)
	}
	return &CompareResponse{LDAPResult: result}, nil
}

// Encode encodes the CompareResponse to BER format (without the APPLICATION tag).
func (r *CompareResponse) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(64)
	encodeLDAPResult(buf, r.LDAPResult)
	return buf.Bytes(), nil
}

// NewSuccessResult creates a new LDAPResult with success status.
func NewSuccessResult() LDAPResult {
	return LDAPResult{
		ResultCode:        ResultSuccess,
		MatchedDN:         "",
		DiagnosticMessage: "",
	}
}

// NewErrorResult creates a new LDAPResult with the specified error.
func NewErrorResult(code ResultCode, message string) LDAPResult {
	return LDAPResult{
		ResultCode:        code,
		MatchedDN:         "",
		DiagnosticMessage: message,
	}
}

// NewErrorResultWithDN creates a new LDAPResult with error and matched DN.
func NewErrorResultWithDN(code ResultCode, matchedDN, message string) LDAPResult {
	return LDAPResult{
		ResultCode:        code,
		MatchedDN:         matchedDN,
		DiagnosticMessage: message,
	}
}
