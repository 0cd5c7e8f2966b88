package ldapmsg

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
)

// DeleteRequest represents an LDAP Delete Request.
// DelRequest ::= [APPLICATION 10] LDAPDN
// DelRequest is primitive — just an LDAPDN, not a SEQUENCE.
type DeleteRequest struct {
	// DN is the distinguished name of the entry to delete
	DN string
}

// Errors for DeleteRequest parsing
var (
	// ErrEmptyDeleteDN is returned when the DN to delete is empty
	ErrEmptyDeleteDN = errors.New("ldapmsg: delete DN cannot be empty")
)

// ParseDeleteRequest parses a DeleteRequest from raw operation data — the
// contents of the APPLICATION 10 tag, which is the DN bytes directly.
func ParseDeleteRequest(data []byte) (*DeleteRequest, error) {
	return &DeleteRequest{DN: string(data)}, nil
}

// Encode encodes the DeleteRequest to BER format (without the APPLICATION tag).
func (r *DeleteRequest) Encode() ([]byte, error) {
	return []byte(r.DN), nil
}

// Validate validates the DeleteRequest.
func (r *DeleteRequest) Validate() error {
	if r.DN == "" {
		return ErrEmptyDeleteDN
	}
	return nil
}

// UnbindRequest represents an LDAP Unbind Request.
// UnbindRequest ::= [APPLICATION 2] NULL
type UnbindRequest struct{}

// ParseUnbindRequest parses an UnbindRequest from raw operation data,
// which is empty since UnbindRequest is NULL. Any data is accepted.
func ParseUnbindRequest(data []byte) (*UnbindRequest, error) {
	return &UnbindRequest{}, nil
}

// Encode encodes the UnbindRequest to BER format (without the APPLICATION tag).
func (r *UnbindRequest) Encode() ([]byte, error) {
	return []byte{}, nil
}

// AbandonRequest represents an LDAP Abandon Request.
// AbandonRequest ::= [APPLICATION 16] MessageID
// AbandonRequest is primitive — a bare INTEGER, not a SEQUENCE.
type AbandonRequest struct {
	// MessageID is the ID of the message to abandon
	MessageID int
}

// ParseAbandonRequest parses an AbandonRequest from raw operation data — the
// contents of the APPLICATION 16 tag, which are the INTEGER's value bytes.
func ParseAbandonRequest(data []byte) (*AbandonRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty abandon request data", nil)
	}
	msgID, err := ber.DecodeInteger(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read message ID", err)
	}
	return &AbandonRequest{MessageID: int(msgID)}, nil
}

// Encode encodes the AbandonRequest to BER format (without the APPLICATION
// tag) — the minimal two's-complement value bytes of the MessageID.
func (r *AbandonRequest) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(8)
	buf.EncodeInteger(int64(r.MessageID))
	t, err := readTLV(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return t.value, nil
}
