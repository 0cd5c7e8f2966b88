// Package dn implements the RFC 4514 (and lenient RFC 2253) string
// representation of LDAP Distinguished Names: parsing into a structured
// form, schema-aware normalization, and re-formatting to the strict
// RFC 4514 text form.
//
// The escaping rules (decodeString/encodeString's special-character set,
// the hex-escape form, the '#hexhex...' binary-value form, and the
// trailing-space-vs-escaped-space rule) are grounded on the reference
// RFC 4514 implementation pattern used across the go-ldap ecosystem.
package dn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oba-ldap/ldapwire/schema"
)

// AttributeTypeAndValue is a single AVA: an attribute type (descriptor or
// dotted-decimal OID, exactly as the user wrote it) paired with its
// unescaped value.
type AttributeTypeAndValue struct {
	Type  string
	Value string
}

func (a AttributeTypeAndValue) String() string {
	return encodeString(a.Type, false) + "=" + encodeString(a.Value, true)
}

// RDN is a non-empty, ordered (as parsed) set of AVAs bound by '+'.
type RDN struct {
	Attributes []AttributeTypeAndValue
}

func (r RDN) String() string {
	parts := make([]string, len(r.Attributes))
	for i, a := range r.Attributes {
		parts[i] = a.String()
	}
	return strings.Join(parts, "+")
}

// DN is an ordered sequence of RDNs, least-significant first as written
// (matching the wire and conventional string order).
type DN struct {
	RDNs []RDN
}

// String renders the DN in RFC 4514 form.
func (d *DN) String() string {
	if d == nil || len(d.RDNs) == 0 {
		return ""
	}
	parts := make([]string, len(d.RDNs))
	for i, r := range d.RDNs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// ParseError reports a DN syntax error with the offending substring, per
// the DomainParse error kind.
type ParseError struct {
	Input   string
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dn: %s at offset %d in %q", e.Message, e.Offset, e.Input)
}

var specialChars = " \"#+,;<=>\\"

func isSpecial(b byte) bool { return strings.IndexByte(specialChars, b) >= 0 }

func isDescriptorStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDescriptorChar(b byte) bool {
	return isDescriptorStart(b) || (b >= '0' && b <= '9') || b == '-' || b == '_'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Parse accepts both RFC 4514 and the more permissive RFC 2253 form
// (quoted values, ';' RDN separators, '\NN' hex-escapes) and returns the
// structured DN. The empty string is a valid DN with zero RDNs.
func Parse(input string) (*DN, error) {
	if input == "" {
		return &DN{}, nil
	}
	p := &parser{input: input}
	dn, err := p.parseDN()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.input) {
		return nil, &ParseError{Input: input, Offset: p.pos, Message: "unexpected trailing input"}
	}
	return dn, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Input: p.input, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseDN() (*DN, error) {
	dn := &DN{}
	for {
		rdn, err := p.parseRDN()
		if err != nil {
			return nil, err
		}
		dn.RDNs = append(dn.RDNs, *rdn)
		if p.pos < len(p.input) && (p.input[p.pos] == ',' || p.input[p.pos] == ';') {
			p.pos++
			continue
		}
		break
	}
	return dn, nil
}

func (p *parser) parseRDN() (*RDN, error) {
	rdn := &RDN{}
	for {
		ava, err := p.parseAVA()
		if err != nil {
			return nil, err
		}
		rdn.Attributes = append(rdn.Attributes, *ava)
		if p.pos < len(p.input) && p.input[p.pos] == '+' {
			p.pos++
			continue
		}
		break
	}
	return rdn, nil
}

func (p *parser) parseAVA() (*AttributeTypeAndValue, error) {
	typ, err := p.parseAttributeType()
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.input) || p.input[p.pos] != '=' {
		return nil, p.errf("attribute-value assertion missing '='")
	}
	p.pos++
	val, err := p.parseAttributeValue()
	if err != nil {
		return nil, err
	}
	return &AttributeTypeAndValue{Type: typ, Value: val}, nil
}

func (p *parser) parseAttributeType() (string, error) {
	start := p.pos
	if p.pos >= len(p.input) {
		return "", p.errf("empty attribute type")
	}
	if isDigit(p.input[p.pos]) {
		for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
			p.pos++
		}
	} else if isDescriptorStart(p.input[p.pos]) {
		p.pos++
		for p.pos < len(p.input) && isDescriptorChar(p.input[p.pos]) {
			p.pos++
		}
	} else {
		return "", p.errf("illegal attribute type")
	}
	if p.pos == start {
		return "", p.errf("empty attribute type")
	}
	typ := p.input[start:p.pos]
	const oidPrefix = "oid."
	if len(typ) > len(oidPrefix) && strings.EqualFold(typ[:len(oidPrefix)], oidPrefix) {
		typ = typ[len(oidPrefix):]
	}
	return typ, nil
}

func (p *parser) parseAttributeValue() (string, error) {
	if p.pos < len(p.input) && p.input[p.pos] == '"' {
		return p.parseQuotedValue()
	}
	if p.pos < len(p.input) && p.input[p.pos] == '#' {
		return p.parseHexValue()
	}
	return p.parseStringValue()
}

func (p *parser) parseQuotedValue() (string, error) {
	p.pos++ // opening quote
	start := p.pos
	var out strings.Builder
	for {
		if p.pos >= len(p.input) {
			return "", p.errf("unterminated quoted value")
		}
		c := p.input[p.pos]
		if c == '"' {
			out.WriteString(p.input[start:p.pos])
			p.pos++
			return out.String(), nil
		}
		if c == '\\' {
			out.WriteString(p.input[start:p.pos])
			unesc, n, err := unescapeOne(p.input[p.pos:])
			if err != nil {
				return "", p.errf("%v", err)
			}
			out.WriteByte(unesc)
			p.pos += n
			start = p.pos
			continue
		}
		p.pos++
	}
}

func (p *parser) parseHexValue() (string, error) {
	start := p.pos
	p.pos++ // '#'
	hexStart := p.pos
	for p.pos < len(p.input) && isHexDigit(p.input[p.pos]) {
		p.pos++
	}
	hex := p.input[hexStart:p.pos]
	if len(hex) == 0 || len(hex)%2 != 0 {
		return "", p.errf("illegal hex pair in binary value")
	}
	raw, err := decodeHex(hex)
	if err != nil {
		return "", p.errf("%v", err)
	}
	_ = start
	return string(raw), nil
}

func (p *parser) parseStringValue() (string, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '\\' {
			if p.pos+1 >= len(p.input) {
				return "", p.errf("trailing backslash")
			}
			if isHexDigit(p.input[p.pos+1]) {
				if p.pos+2 >= len(p.input) || !isHexDigit(p.input[p.pos+2]) {
					return "", p.errf("illegal hex pair")
				}
				p.pos += 3
				continue
			}
			p.pos += 2
			continue
		}
		if c == ',' || c == '+' || c == ';' {
			break
		}
		p.pos++
	}
	raw := p.input[start:p.pos]
	trimmed := trimRawValue(raw)
	return unescapeAll(trimmed)
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func decodeHex(s string) ([]byte, error) {
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := hexNibble(s[2*i])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[2*i+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("illegal hex digit %q", b)
	}
}

// unescapeOne decodes the escape sequence at the start of s (which must
// begin with '\\'), returning the decoded byte and the number of input
// bytes it consumed (2 for a literal-char escape, 3 for a hex-pair
// escape).
func unescapeOne(s string) (byte, int, error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("trailing backslash")
	}
	next := s[1]
	if isSpecial(next) {
		return next, 2, nil
	}
	if len(s) >= 3 && isHexDigit(next) && isHexDigit(s[2]) {
		b, err := decodeHex(s[1:3])
		if err != nil {
			return 0, 0, err
		}
		return b[0], 3, nil
	}
	return 0, 0, fmt.Errorf("illegal escape sequence")
}

func unescapeAll(s string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '\\' {
			b, n, err := unescapeOne(s[i:])
			if err != nil {
				return "", err
			}
			out.WriteByte(b)
			i += n
			continue
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String(), nil
}

// trimRawValue strips unescaped leading and trailing spaces from a raw
// (still-escaped) attribute value. Trailing spaces are removed only up
// to (exclusive of) the position of the last escaped space — an
// unambiguous resolution of the source's subtle trailing-space-vs-
// escaped-space interaction.
func trimRawValue(raw string) string {
	i := 0
	for i < len(raw) && raw[i] == ' ' {
		i++
	}
	raw = raw[i:]

	lastEscapedSpace := -1
	for j := 0; j+1 < len(raw); j++ {
		if raw[j] == '\\' && raw[j+1] == ' ' {
			lastEscapedSpace = j + 1
			j++ // the escaped space itself can't start a new escape
		}
	}

	end := len(raw)
	for end-1 > lastEscapedSpace && end > 0 && raw[end-1] == ' ' && (end < 2 || raw[end-2] != '\\') {
		end--
	}
	return raw[:end]
}

// encodeString renders a type (isValue=false) or value (isValue=true)
// back to its RFC 4514 escaped form.
func encodeString(s string, isValue bool) string {
	if !isValue {
		return s
	}
	if s == "" {
		return ""
	}
	var out strings.Builder
	runes := []byte(s)
	for i, b := range runes {
		switch {
		case i == 0 && b == ' ':
			out.WriteByte('\\')
			out.WriteByte(b)
		case i == 0 && b == '#':
			out.WriteByte('\\')
			out.WriteByte(b)
		case i == len(runes)-1 && b == ' ':
			out.WriteByte('\\')
			out.WriteByte(b)
		case b == '"' || b == '+' || b == ',' || b == ';' || b == '<' || b == '>' || b == '\\':
			out.WriteByte('\\')
			out.WriteByte(b)
		case b == '=':
			out.WriteByte('\\')
			out.WriteByte(b)
		case b < 0x20 || b == 0x7F:
			out.WriteString(fmt.Sprintf("\\%02X", b))
		default:
			out.WriteByte(b)
		}
	}
	return out.String()
}

// Normalize returns the canonical equality-comparison form of the DN:
// within each RDN, AVAs are sorted by attribute-type OID (resolved via
// view when non-nil, else the lowercased type as written); attribute
// types are OID-substituted and lowercased, and values are passed
// through the attribute type's equality normalizer. Two DNs compare
// equal (Equal returns true) iff their normalized forms match.
func (d *DN) Normalize(view schema.View) string {
	if d == nil || len(d.RDNs) == 0 {
		return ""
	}
	parts := make([]string, len(d.RDNs))
	for i, r := range d.RDNs {
		parts[i] = normalizeRDN(r, view)
	}
	return strings.Join(parts, ",")
}

func normalizeRDN(r RDN, view schema.View) string {
	type keyed struct {
		key string
		ava string
	}
	entries := make([]keyed, len(r.Attributes))
	for i, a := range r.Attributes {
		oid, typeKey := resolveSortKey(a.Type, view)
		value := a.Value
		if view != nil {
			value = view.EqualityNormalizer(a.Type)(value)
		} else {
			value = strings.ToLower(strings.Join(strings.Fields(value), " "))
		}
		entries[i] = keyed{key: typeKey, ava: oid + "=" + encodeString(value, true)}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.ava
	}
	return strings.Join(parts, "+")
}

func resolveSortKey(typ string, view schema.View) (oidOrType string, sortKey string) {
	if view != nil {
		if oid, ok := view.ResolveAttributeOID(typ); ok {
			return oid, oid
		}
	}
	lower := strings.ToLower(typ)
	return lower, lower
}

// Equal reports whether a and b designate the same entry: their
// normalized forms match, regardless of RDN component order, descriptor
// case, or descriptor-vs-OID spelling.
func Equal(a, b *DN, view schema.View) bool {
	return a.Normalize(view) == b.Normalize(view)
}
