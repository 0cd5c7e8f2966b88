package ldapmsg

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
)

// ModifyDNRequest represents an LDAP ModifyDN Request.
// ModifyDNRequest ::= [APPLICATION 12] SEQUENCE {
//
//	entry           LDAPDN,
//	newrdn          RelativeLDAPDN,
//	deleteoldrdn    BOOLEAN,
//	newSuperior     [0] LDAPDN OPTIONAL
//
// }
type ModifyDNRequest struct {
	// Entry is the DN of the entry to rename/move
	Entry string
	// NewRDN is the new relative distinguished name
	NewRDN string
	// DeleteOldRDN indicates whether to delete the old RDN attribute values
	DeleteOldRDN bool
	// NewSuperior is the optional new parent DN (for moving entries)
	NewSuperior string
}

// Errors for ModifyDNRequest parsing
var (
	// ErrEmptyModifyDNEntry is returned when the entry DN is empty
	ErrEmptyModifyDNEntry = errors.New("ldapmsg: modifydn entry DN cannot be empty")
	// ErrEmptyNewRDN is returned when the new RDN is empty
	ErrEmptyNewRDN = errors.New("ldapmsg: modifydn new RDN cannot be empty")
)

const newSuperiorTag = 0

// ParseModifyDNRequest parses a ModifyDNRequest from raw operation data — the
// contents of the APPLICATION 12 tag, without the tag and length.
func ParseModifyDNRequest(data []byte) (*ModifyDNRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty modifydn request data", nil)
	}

	entryTLV, err := readTLV(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read entry DN", err)
	}
	req := &ModifyDNRequest{Entry: string(entryTLV.value)}
	rest := data[entryTLV.consumed:]

	newRDNTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(entryTLV.consumed, "failed to read new RDN", err)
	}
	req.NewRDN = string(newRDNTLV.value)
	rest = rest[newRDNTLV.consumed:]

	deleteOldTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(len(data)-len(rest), "failed to read deleteoldrdn", err)
	}
	deleteOld, err := ber.DecodeBoolean(deleteOldTLV.value)
	if err != nil {
		return nil, NewParseError(len(data)-len(rest), "failed to read deleteoldrdn", err)
	}
	req.DeleteOldRDN = deleteOld
	rest = rest[deleteOldTLV.consumed:]

	if len(rest) > 0 {
		newSuperiorTagByte := byte(ber.ClassContextSpecific | ber.TypePrimitive | newSuperiorTag)
		if rest[0] == newSuperiorTagByte {
			superiorTLV, err := readTLV(rest)
			if err != nil {
				return nil, NewParseError(len(data)-len(rest), "failed to read newSuperior", err)
			}
			req.NewSuperior = string(superiorTLV.value)
		}
	}

	return req, nil
}

// Encode encodes the ModifyDNRequest to BER format (without the APPLICATION tag).
func (r *ModifyDNRequest) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(256)

	if r.NewSuperior != "" {
		buf.EncodeTaggedOctetString([]byte(r.NewSuperior), byte(ber.ClassContextSpecific|ber.TypePrimitive|newSuperiorTag))
	}

	buf.EncodeBoolean(r.DeleteOldRDN)
	buf.EncodeOctetString([]byte(r.NewRDN))
	buf.EncodeOctetString([]byte(r.Entry))

	return buf.Bytes(), nil
}

// Validate validates the ModifyDNRequest.
func (r *ModifyDNRequest) Validate() error {
	if r.Entry == "" {
		return ErrEmptyModifyDNEntry
	}
	if r.NewRDN == "" {
		return ErrEmptyNewRDN
	}
	return nil
}

// HasNewSuperior returns true if a new superior (parent) DN is specified.
func (r *ModifyDNRequest) HasNewSuperior() bool {
	return r.NewSuperior != ""
}
