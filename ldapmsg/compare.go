package ldapmsg

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
)

// CompareRequest represents an LDAP Compare Request.
// CompareRequest ::= [APPLICATION 14] SEQUENCE {
//
//	entry           LDAPDN,
//	ava             AttributeValueAssertion
//
// }
type CompareRequest struct {
	// DN is the distinguished name of the entry to compare
	DN string
	// Attribute is the attribute type to compare
	Attribute string
	// Value is the assertion value to compare against
	Value []byte
}

// Errors for CompareRequest parsing
var (
	// ErrEmptyCompareDN is returned when the DN to compare is empty
	ErrEmptyCompareDN = errors.New("ldapmsg: compare DN cannot be empty")
	// ErrEmptyCompareAttribute is returned when the attribute to compare is empty
	ErrEmptyCompareAttribute = errors.New("ldapmsg: compare attribute cannot be empty")
)

// ParseCompareRequest parses a CompareRequest from raw operation data —
// the contents of the APPLICATION 14 tag, without the tag and length.
func ParseCompareRequest(data []byte) (*CompareRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty compare request data", nil)
	}

	dnTLV, err := readTLV(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read entry DN", err)
	}
	req := &CompareRequest{DN: string(dnTLV.value)}

	avaTLV, err := readTLV(data[dnTLV.consumed:])
	if err != nil {
		return nil, NewParseError(dnTLV.consumed, "failed to read AttributeValueAssertion", err)
	}

	attrTLV, err := readTLV(avaTLV.value)
	if err != nil {
		return nil, NewParseError(0, "failed to read attribute description", err)
	}
	req.Attribute = string(attrTLV.value)

	valueTLV, err := readTLV(avaTLV.value[attrTLV.consumed:])
	if err != nil {
		return nil, NewParseError(0, "failed to read assertion value", err)
	}
	req.Value = valueTLV.value

	return req, nil
}

// Encode encodes the CompareRequest to BER format (without the APPLICATION tag).
func (r *CompareRequest) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(128)

	avaStart := buf.Position()
	buf.EncodeOctetString(r.Value)
	buf.EncodeOctetString([]byte(r.Attribute))
	buf.EndSequence(avaStart)

	buf.EncodeOctetString([]byte(r.DN))

	return buf.Bytes(), nil
}

// Validate validates the CompareRequest.
func (r *CompareRequest) Validate() error {
	if r.DN == "" {
		return ErrEmptyCompareDN
	}
	if r.Attribute == "" {
		return ErrEmptyCompareAttribute
	}
	return nil
}
