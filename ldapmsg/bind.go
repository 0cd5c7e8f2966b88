package ldapmsg

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
)

// Authentication method tags (context-specific)
const (
	// AuthSimple is the tag for simple authentication [0]
	AuthSimple = 0
	// AuthSASL is the tag for SASL authentication [3]
	AuthSASL = 3
)

// AuthMethod represents the authentication method used in a BindRequest
type AuthMethod int

const (
	// AuthMethodSimple indicates simple (password) authentication
	AuthMethodSimple AuthMethod = iota
	// AuthMethodSASL indicates SASL authentication
	AuthMethodSASL
)

// String returns the string representation of the authentication method
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodSimple:
		return "Simple"
	case AuthMethodSASL:
		return "SASL"
	default:
		return "Unknown"
	}
}

// SASLCredentials represents SASL authentication credentials.
// SaslCredentials ::= SEQUENCE {
//
//	mechanism               LDAPString,
//	credentials             OCTET STRING OPTIONAL
//
// }
type SASLCredentials struct {
	// Mechanism is the SASL mechanism name (e.g., "PLAIN", "GSSAPI")
	Mechanism string
	// Credentials is the optional SASL credentials
	Credentials []byte
}

// BindRequest represents an LDAP Bind Request.
// BindRequest ::= [APPLICATION 0] SEQUENCE {
//
//	version                 INTEGER (1 .. 127),
//	name                    LDAPDN,
//	authentication          AuthenticationChoice
//
// }
// AuthenticationChoice ::= CHOICE {
//
//	simple                  [0] OCTET STRING,
//	sasl                    [3] SaslCredentials
//
// }
type BindRequest struct {
	// Version is the LDAP protocol version (typically 3)
	Version int
	// Name is the DN of the user binding
	Name string
	// AuthMethod indicates the authentication method used
	AuthMethod AuthMethod
	// SimplePassword contains the password for simple authentication
	SimplePassword []byte
	// SASLCredentials contains SASL credentials for SASL authentication
	SASLCredentials *SASLCredentials
}

// Errors for BindRequest parsing
var (
	// ErrInvalidBindVersion is returned when the bind version is out of range
	ErrInvalidBindVersion = errors.New("ldapmsg: bind version must be between 1 and 127")
	// ErrUnknownAuthMethod is returned when the authentication method is unknown
	ErrUnknownAuthMethod = errors.New("ldapmsg: unknown authentication method")
	// ErrInvalidSASLCredentials is returned when SASL credentials are malformed
	ErrInvalidSASLCredentials = errors.New("ldapmsg: invalid SASL credentials")
)

// ParseBindRequest parses a BindRequest from raw operation data — the
// contents of the APPLICATION 0 tag, without the tag and length.
func ParseBindRequest(data []byte) (*BindRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty bind request data", nil)
	}

	versionTLV, err := readTLV(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read bind version", err)
	}
	version, err := ber.DecodeInteger(versionTLV.value)
	if err != nil {
		return nil, NewParseError(0, "failed to read bind version", err)
	}
	if version < 1 || version > 127 {
		return nil, ErrInvalidBindVersion
	}
	rest := data[versionTLV.consumed:]
	req := &BindRequest{Version: int(version)}

	nameTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(versionTLV.consumed, "failed to read bind name", err)
	}
	req.Name = string(nameTLV.value)
	rest = rest[nameTLV.consumed:]

	authTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(len(data)-len(rest), "failed to read authentication", err)
	}

	switch authTLV.tag {
	case byte(ber.ClassContextSpecific | ber.TypePrimitive | AuthSimple):
		req.AuthMethod = AuthMethodSimple
		req.SimplePassword = authTLV.value

	case byte(ber.ClassContextSpecific | ber.TypeConstructed | AuthSASL):
		saslCreds := &SASLCredentials{}
		mechTLV, err := readTLV(authTLV.value)
		if err != nil {
			return nil, NewParseError(0, "failed to read SASL mechanism", err)
		}
		saslCreds.Mechanism = string(mechTLV.value)

		if credRest := authTLV.value[mechTLV.consumed:]; len(credRest) > 0 {
			credTLV, err := readTLV(credRest)
			if err != nil {
				return nil, NewParseError(0, "failed to read SASL credentials", err)
			}
			saslCreds.Credentials = credTLV.value
		}

		req.AuthMethod = AuthMethodSASL
		req.SASLCredentials = saslCreds

	default:
		return nil, NewParseError(len(data)-len(rest), "unknown authentication method tag", ErrUnknownAuthMethod)
	}

	return req, nil
}

// Encode encodes the BindRequest to BER format (without the APPLICATION tag).
func (r *BindRequest) Encode() ([]byte, error) {
	buf := ber.NewAsn1Buffer(128)

	switch r.AuthMethod {
	case AuthMethodSimple:
		buf.EncodeTaggedOctetString(r.SimplePassword, byte(ber.ClassContextSpecific|ber.TypePrimitive|AuthSimple))
	case AuthMethodSASL:
		saslStart := buf.Position()
		if len(r.SASLCredentials.Credentials) > 0 {
			buf.EncodeOctetString(r.SASLCredentials.Credentials)
		}
		buf.EncodeOctetString([]byte(r.SASLCredentials.Mechanism))
		buf.EndContextTag(saslStart, AuthSASL)
	default:
		return nil, ErrUnknownAuthMethod
	}

	buf.EncodeOctetString([]byte(r.Name))
	buf.EncodeInteger(int64(r.Version))

	return buf.Bytes(), nil
}

// Validate validates the BindRequest: the version must be 1..127 and a
// SASL bind must name a mechanism.
func (r *BindRequest) Validate() error {
	if r.Version < 1 || r.Version > 127 {
		return ErrInvalidBindVersion
	}
	if r.AuthMethod == AuthMethodSASL && (r.SASLCredentials == nil || r.SASLCredentials.Mechanism == "") {
		return ErrInvalidSASLCredentials
	}
	if r.AuthMethod != AuthMethodSimple && r.AuthMethod != AuthMethodSASL {
		return ErrUnknownAuthMethod
	}
	return nil
}

// IsAnonymous returns true if this is an anonymous bind request. An
// anonymous bind has an empty name and empty simple password.
func (r *BindRequest) IsAnonymous() bool {
	return r.Name == "" && r.AuthMethod == AuthMethodSimple && len(r.SimplePassword) == 0
}
