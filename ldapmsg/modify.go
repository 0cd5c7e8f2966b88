package ldapmsg

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
)

// ModifyOperation represents the type of modification operation
type ModifyOperation int

const (
	// ModifyOperationAdd adds values to an attribute
	ModifyOperationAdd ModifyOperation = 0
	// ModifyOperationDelete deletes values from an attribute
	ModifyOperationDelete ModifyOperation = 1
	// ModifyOperationReplace replaces all values of an attribute
	ModifyOperationReplace ModifyOperation = 2
)

// String returns the string representation of the modify operation
func (m ModifyOperation) String() string {
	switch m {
	case ModifyOperationAdd:
		return "Add"
	case ModifyOperationDelete:
		return "Delete"
	case ModifyOperationReplace:
		return "Replace"
	default:
		return "Unknown"
	}
}

// Modification represents a single modification in a ModifyRequest.
// Change ::= SEQUENCE {
//
//	operation       ENUMERATED { add(0), delete(1), replace(2) },
//	modification    PartialAttribute
//
// }
type Modification struct {
	// Operation is the type of modification
	Operation ModifyOperation
	// Attribute contains the attribute type and values for the modification
	Attribute Attribute
}

// ModifyRequest represents an LDAP Modify Request.
// ModifyRequest ::= [APPLICATION 6] SEQUENCE {
//
//	object          LDAPDN,
//	changes         SEQUENCE OF change Change
//
// }
type ModifyRequest struct {
	// Object is the DN of the entry to modify
	Object string
	// Changes contains the list of modifications to apply
	Changes []Modification
}

// Errors for ModifyRequest parsing
var (
	// ErrEmptyModifyObject is returned when the object DN is empty
	ErrEmptyModifyObject = errors.New("ldapmsg: modify object DN cannot be empty")
	// ErrInvalidModifyOperation is returned when the modify operation is invalid
	ErrInvalidModifyOperation = errors.New("ldapmsg: invalid modify operation")
	// ErrEmptyModifications is returned when there are no modifications
	ErrEmptyModifications = errors.New("ldapmsg: modify request must have at least one modification")
)

// ParseModifyRequest parses a ModifyRequest from raw operation data — the
// contents of the APPLICATION 6 tag, without the tag and length.
func ParseModifyRequest(data []byte) (*ModifyRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty modify request data", nil)
	}

	objectTLV, err := readTLV(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read object DN", err)
	}
	req := &ModifyRequest{Object: string(objectTLV.value)}

	changesTLV, err := readTLV(data[objectTLV.consumed:])
	if err != nil {
		return nil, NewParseError(objectTLV.consumed, "failed to read changes sequence", err)
	}

	var changes []Modification
	remaining := changesTLV.value
	for len(remaining) > 0 {
		mod, consumed, err := parseModification(remaining)
		if err != nil {
			return nil, err
		}
		changes = append(changes, mod)
		remaining = remaining[consumed:]
	}

	req.Changes = changes
	return req, nil
}

// parseModification parses a single Change SEQUENCE from the front of data.
func parseModification(data []byte) (Modification, int, error) {
	var mod Modification

	changeTLV, err := readTLV(data)
	if err != nil {
		return mod, 0, NewParseError(0, "failed to read change sequence", err)
	}

	opTLV, err := readTLV(changeTLV.value)
	if err != nil {
		return mod, 0, NewParseError(0, "failed to read operation", err)
	}
	op, err := ber.DecodeEnumerated(opTLV.value)
	if err != nil {
		return mod, 0, NewParseError(0, "failed to read operation", err)
	}
	if op < 0 || op > 2 {
		return mod, 0, ErrInvalidModifyOperation
	}
	mod.Operation = ModifyOperation(op)

	typ, values, _, err := decodeAttributeLike(changeTLV.value[opTLV.consumed:])
	if err != nil {
		return mod, 0, NewParseError(0, "failed to read partial attribute", err)
	}
	mod.Attribute = Attribute{Type: typ, Values: values}

	return mod, changeTLV.consumed, nil
}

// Encode encodes the ModifyRequest to BER format (without the APPLICATION tag).
func (r *ModifyRequest) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(256)

	changesStart := buf.Position()
	for i := len(r.Changes) - 1; i >= 0; i-- {
		encodeModification(buf, r.Changes[i])
	}
	buf.EndSequence(changesStart)

	buf.EncodeOctetString([]byte(r.Object))

	return buf.Bytes(), nil
}

// encodeModification encodes a single Change SEQUENCE.
func encodeModification(buf *ber.Asn1Buffer, mod Modification) {
	start := buf.Position()
	encodeAttributeLike(buf, mod.Attribute.Type, mod.Attribute.Values)
	buf.EncodeEnumerated(int64(mod.Operation))
	buf.EndSequence(start)
}

// Validate validates the ModifyRequest.
func (r *ModifyRequest) Validate() error {
	if r.Object == "" {
		return ErrEmptyModifyObject
	}
	if len(r.Changes) == 0 {
		return ErrEmptyModifications
	}
	for _, change := range r.Changes {
		if change.Operation < 0 || change.Operation > 2 {
			return ErrInvalidModifyOperation
		}
	}
	return nil
}

// AddModification adds a modification to the request.
func (r *ModifyRequest) AddModification(op ModifyOperation, attrType string, values ...[]byte) {
	r.Changes = append(r.Changes, Modification{
		Operation: op,
		Attribute: Attribute{
			Type:   attrType,
			Values: values,
		},
	})
}

// AddStringModification adds a modification with string values to the request.
func (r *ModifyRequest) AddStringModification(op ModifyOperation, attrType string, values ...string) {
	byteValues := make([][]byte, len(values))
	for i, v := range values {
		byteValues[i] = []byte(v)
	}
	r.AddModification(op, attrType, byteValues...)
}
