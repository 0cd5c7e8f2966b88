// Package filterexpr provides LDAP search filter data structures,
// RFC 4515 text-form parsing/formatting, and BER wire encoding/decoding.
//
// # Overview
//
// The filterexpr package implements LDAP search filter parsing and
// representation as defined in RFC 4515 (text form) and RFC 4511 §4.5.1
// (wire form). It supports all ten filter types:
//
//   - AND (&): Logical conjunction of filters
//   - OR (|): Logical disjunction of filters
//   - NOT (!): Logical negation of a filter
//   - Equality (=): Exact attribute value match
//   - Substring (*): Pattern matching with wildcards
//   - Greater-or-Equal (>=): Comparison filter
//   - Less-or-Equal (<=): Comparison filter
//   - Present (=*): Attribute existence check
//   - Approximate (~=): Fuzzy matching
//   - Extensible Match (:=): Matching-rule-driven comparison
//
// # Text Form
//
// Parse converts an RFC 4515 string to a Filter tree; Format converts it
// back:
//
//	f, err := filterexpr.Parse("(&(objectClass=person)(uid=alice))")
//	s := filterexpr.Format(f) // "(&(objectClass=person)(uid=alice))"
//
// Hex-escaped octets ("\2a" for a literal '*', etc.) are unescaped during
// parsing and re-escaped during formatting.
//
// # Filter Construction
//
// Filters can also be constructed programmatically:
//
//	// Simple equality filter: (uid=alice)
//	f := filterexpr.NewEqualityFilter("uid", []byte("alice"))
//
//	// Presence filter: (mail=*)
//	f := filterexpr.NewPresentFilter("mail")
//
//	// AND filter: (&(objectClass=person)(uid=alice))
//	f := filterexpr.NewAndFilter(
//	    filterexpr.NewEqualityFilter("objectClass", []byte("person")),
//	    filterexpr.NewEqualityFilter("uid", []byte("alice")),
//	)
//
// # Substring Filters
//
// Substring filters support initial, any, and final components:
//
//	// (cn=John*)
//	sf := &filterexpr.SubstringFilter{Attribute: "cn", Initial: []byte("John")}
//	f := filterexpr.NewSubstringFilter(sf)
//
// # Wire Form
//
// Encode appends a filter's BER encoding to a ber.Asn1Buffer; Decode
// parses one filter CHOICE item back out of a byte slice already sliced
// from its enclosing SearchRequest:
//
//	buf := ber.NewAsn1Buffer(0)
//	filterexpr.Encode(buf, f)
//
//	decoded, consumed, err := filterexpr.Decode(buf.Bytes())
package filterexpr
