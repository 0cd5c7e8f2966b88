package ldapmsg

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
)

// Attribute represents an LDAP attribute with its values
type Attribute struct {
	// Type is the attribute type name
	Type string
	// Values contains the attribute values
	Values [][]byte
}

// AddRequest represents an LDAP Add Request.
// AddRequest ::= [APPLICATION 8] SEQUENCE {
//
//	entry           LDAPDN,
//	attributes      AttributeList
//
// }
// AttributeList ::= SEQUENCE OF attribute Attribute
type AddRequest struct {
	// Entry is the DN of the entry to add
	Entry string
	// Attributes contains the attributes for the new entry
	Attributes []Attribute
}

// Errors for AddRequest parsing
var (
	// ErrEmptyEntry is returned when the entry DN is empty
	ErrEmptyEntry = errors.New("ldapmsg: entry DN cannot be empty")
	// ErrInvalidAttribute is returned when an attribute is malformed
	ErrInvalidAttribute = errors.New("ldapmsg: invalid attribute")
	// ErrEmptyAttributeValues is returned when an attribute has no values
	ErrEmptyAttributeValues = errors.New("ldapmsg: attribute must have at least one value")
)

// ParseAddRequest parses an AddRequest from raw operation data — the
// contents of the APPLICATION 8 tag, without the tag and length.
func ParseAddRequest(data []byte) (*AddRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty add request data", nil)
	}

	entryTLV, err := readTLV(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read entry DN", err)
	}
	req := &AddRequest{Entry: string(entryTLV.value)}
	rest := data[entryTLV.consumed:]

	listTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(entryTLV.consumed, "failed to read attributes sequence", err)
	}

	var attributes []Attribute
	remaining := listTLV.value
	for len(remaining) > 0 {
		typ, values, consumed, err := decodeAttributeLike(remaining)
		if err != nil {
			return nil, NewParseError(0, "failed to read attribute", err)
		}
		attributes = append(attributes, Attribute{Type: typ, Values: values})
		remaining = remaining[consumed:]
	}

	req.Attributes = attributes
	return req, nil
}

// Encode encodes the AddRequest to BER format (without the APPLICATION tag).
func (r *AddRequest) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(256)

	listStart := buf.Position()
	for i := len(r.Attributes) - 1; i >= 0; i-- {
		encodeAttributeLike(buf, r.Attributes[i].Type, r.Attributes[i].Values)
	}
	buf.EndSequence(listStart)

	buf.EncodeOctetString([]byte(r.Entry))

	return buf.Bytes(), nil
}

// GetAttribute returns the first attribute with the given type name, or nil if not found.
func (r *AddRequest) GetAttribute(attrType string) *Attribute {
	for i := range r.Attributes {
		if r.Attributes[i].Type == attrType {
			return &r.Attributes[i]
		}
	}
	return nil
}

// GetAttributeValues returns all values for the given attribute type, or nil if not found.
func (r *AddRequest) GetAttributeValues(attrType string) [][]byte {
	attr := r.GetAttribute(attrType)
	if attr == nil {
		return nil
	}
	return attr.Values
}

// GetAttributeStringValues returns all values for the given attribute type as strings.
func (r *AddRequest) GetAttributeStringValues(attrType string) []string {
	values := r.GetAttributeValues(attrType)
	if values == nil {
		return nil
	}
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = string(v)
	}
	return result
}
