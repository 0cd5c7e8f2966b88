package ldapmsg

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
	"github.com/oba-ldap/ldapwire/filterexpr"
)

// SearchScope represents the scope of an LDAP search operation
type SearchScope int

const (
	// ScopeBaseObject searches only the base object
	ScopeBaseObject SearchScope = 0
	// ScopeSingleLevel searches one level below the base object
	ScopeSingleLevel SearchScope = 1
	// ScopeWholeSubtree searches the entire subtree
	ScopeWholeSubtree SearchScope = 2
)

// String returns the string representation of the search scope
func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "BaseObject"
	case ScopeSingleLevel:
		return "SingleLevel"
	case ScopeWholeSubtree:
		return "WholeSubtree"
	default:
		return "Unknown"
	}
}

// DerefAliases represents how aliases should be dereferenced during search
type DerefAliases int

const (
	// DerefNever never dereferences aliases
	DerefNever DerefAliases = 0
	// DerefInSearching dereferences aliases when searching subordinates
	DerefInSearching DerefAliases = 1
	// DerefFindingBaseObj dereferences aliases when finding the base object
	DerefFindingBaseObj DerefAliases = 2
	// DerefAlways always dereferences aliases
	DerefAlways DerefAliases = 3
)

// String returns the string representation of the deref aliases setting
func (d DerefAliases) String() string {
	switch d {
	case DerefNever:
		return "NeverDerefAliases"
	case DerefInSearching:
		return "DerefInSearching"
	case DerefFindingBaseObj:
		return "DerefFindingBaseObj"
	case DerefAlways:
		return "DerefAlways"
	default:
		return "Unknown"
	}
}

// SearchRequest represents an LDAP Search Request.
// SearchRequest ::= [APPLICATION 3] SEQUENCE {
//
//	baseObject      LDAPDN,
//	scope           ENUMERATED { baseObject(0), singleLevel(1), wholeSubtree(2) },
//	derefAliases    ENUMERATED { neverDerefAliases(0), derefInSearching(1),
//	                             derefFindingBaseObj(2), derefAlways(3) },
//	sizeLimit       INTEGER (0 .. maxInt),
//	timeLimit       INTEGER (0 .. maxInt),
//	typesOnly       BOOLEAN,
//	filter          Filter,
//	attributes      AttributeSelection
//
// }
//
// The filter field is the filterexpr package's Filter tree directly —
// ldapmsg does not keep a second copy of the filter CHOICE's BER shape.
type SearchRequest struct {
	// BaseObject is the base DN for the search
	BaseObject string
	// Scope is the search scope
	Scope SearchScope
	// DerefAliases specifies how aliases should be dereferenced
	DerefAliases DerefAliases
	// SizeLimit is the maximum number of entries to return (0 = no limit)
	SizeLimit int
	// TimeLimit is the maximum time in seconds (0 = no limit)
	TimeLimit int
	// TypesOnly if true, only attribute types are returned (no values)
	TypesOnly bool
	// Filter is the search filter
	Filter *filterexpr.Filter
	// Attributes is the list of attributes to return (empty = all user attributes)
	Attributes []string
}

// Errors for SearchRequest parsing
var (
	// ErrInvalidSearchScope is returned when the search scope is invalid
	ErrInvalidSearchScope = errors.New("ldapmsg: invalid search scope")
	// ErrInvalidDerefAliases is returned when the deref aliases value is invalid
	ErrInvalidDerefAliases = errors.New("ldapmsg: invalid deref aliases value")
	// ErrInvalidFilter is returned when the filter is malformed
	ErrInvalidFilter = errors.New("ldapmsg: invalid search filter")
)

// ParseSearchRequest parses a SearchRequest from raw operation data — the
// contents of the APPLICATION 3 tag, without the tag and length.
func ParseSearchRequest(data []byte) (*SearchRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty search request data", nil)
	}

	baseTLV, err := readTLV(data)
	if err != nil {
		return nil, NewParseError(0, "failed to read baseObject", err)
	}
	req := &SearchRequest{BaseObject: string(baseTLV.value)}
	rest := data[baseTLV.consumed:]
	offset := baseTLV.consumed

	scopeTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(offset, "failed to read scope", err)
	}
	scope, err := ber.DecodeEnumerated(scopeTLV.value)
	if err != nil {
		return nil, NewParseError(offset, "failed to read scope", err)
	}
	if scope < 0 || scope > 2 {
		return nil, ErrInvalidSearchScope
	}
	req.Scope = SearchScope(scope)
	rest = rest[scopeTLV.consumed:]
	offset += scopeTLV.consumed

	derefTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(offset, "failed to read derefAliases", err)
	}
	deref, err := ber.DecodeEnumerated(derefTLV.value)
	if err != nil {
		return nil, NewParseError(offset, "failed to read derefAliases", err)
	}
	if deref < 0 || deref > 3 {
		return nil, ErrInvalidDerefAliases
	}
	req.DerefAliases = DerefAliases(deref)
	rest = rest[derefTLV.consumed:]
	offset += derefTLV.consumed

	sizeLimitTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(offset, "failed to read sizeLimit", err)
	}
	sizeLimit, err := ber.DecodeInteger(sizeLimitTLV.value)
	if err != nil {
		return nil, NewParseError(offset, "failed to read sizeLimit", err)
	}
	req.SizeLimit = int(sizeLimit)
	rest = rest[sizeLimitTLV.consumed:]
	offset += sizeLimitTLV.consumed

	timeLimitTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(offset, "failed to read timeLimit", err)
	}
	timeLimit, err := ber.DecodeInteger(timeLimitTLV.value)
	if err != nil {
		return nil, NewParseError(offset, "failed to read timeLimit", err)
	}
	req.TimeLimit = int(timeLimit)
	rest = rest[timeLimitTLV.consumed:]
	offset += timeLimitTLV.consumed

	typesOnlyTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(offset, "failed to read typesOnly", err)
	}
	typesOnly, err := ber.DecodeBoolean(typesOnlyTLV.value)
	if err != nil {
		return nil, NewParseError(offset, "failed to read typesOnly", err)
	}
	req.TypesOnly = typesOnly
	rest = rest[typesOnlyTLV.consumed:]
	offset += typesOnlyTLV.consumed

	filter, consumed, err := filterexpr.Decode(rest)
	if err != nil {
		return nil, NewParseError(offset, "failed to read filter", err)
	}
	req.Filter = filter
	rest = rest[consumed:]
	offset += consumed

	attrListTLV, err := readTLV(rest)
	if err != nil {
		return nil, NewParseError(offset, "failed to read attributes sequence", err)
	}

	var attributes []string
	remaining := attrListTLV.value
	for len(remaining) > 0 {
		attrTLV, err := readTLV(remaining)
		if err != nil {
			return nil, NewParseError(offset, "failed to read attribute", err)
		}
		attributes = append(attributes, string(attrTLV.value))
		remaining = remaining[attrTLV.consumed:]
	}
	req.Attributes = attributes

	return req, nil
}

// Encode encodes the SearchRequest to BER format (without the APPLICATION tag).
func (r *SearchRequest) Encode() ([]byte, error) {
	if r.Filter == nil {
		return nil, ErrInvalidFilter
	}

	buf := ber.NewAsn1Buffer(256)

	attrStart := buf.Position()
	for i := len(r.Attributes) - 1; i >= 0; i-- {
		buf.EncodeOctetString([]byte(r.Attributes[i]))
	}
	buf.EndSequence(attrStart)

	filterexpr.Encode(buf, r.Filter)

	buf.EncodeBoolean(r.TypesOnly)
	buf.EncodeInteger(int64(r.TimeLimit))
	buf.EncodeInteger(int64(r.SizeLimit))
	buf.EncodeEnumerated(int64(r.DerefAliases))
	buf.EncodeEnumerated(int64(r.Scope))
	buf.EncodeOctetString([]byte(r.BaseObject))

	return buf.Bytes(), nil
}
