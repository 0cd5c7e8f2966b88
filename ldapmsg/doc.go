// Package ldapmsg implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
//
// This package provides types and functions for working with LDAP protocol
// messages, including request parsing, response encoding, and result codes.
//
// # Message Structure
//
// All LDAP messages follow the LDAPMessage envelope structure:
//
//	LDAPMessage ::= SEQUENCE {
//	    messageID       MessageID,
//	    protocolOp      CHOICE { ... },
//	    controls        [0] Controls OPTIONAL
//	}
//
// Use ParseLDAPMessage to decode a single complete PDU, or NewEnvelopeDecoder
// when input may arrive split across arbitrary chunk boundaries:
//
//	msg, err := ldapmsg.ParseLDAPMessage(data)
//	if err != nil {
//	    // handle error
//	}
//	switch msg.OperationType() {
//	case ldapmsg.ApplicationBindRequest:
//	    req, err := ldapmsg.ParseBindRequest(msg.Operation.Data)
//	    // handle bind request
//	case ldapmsg.ApplicationSearchRequest:
//	    req, err := ldapmsg.ParseSearchRequest(msg.Operation.Data)
//	    // handle search request
//	}
//
// # Supported Operations
//
// The package supports all core LDAP operations:
//
//   - Bind (APPLICATION 0/1): Authentication
//   - Unbind (APPLICATION 2): Connection termination
//   - Search (APPLICATION 3/4/5): Entry lookup
//   - Modify (APPLICATION 6/7): Entry modification
//   - Add (APPLICATION 8/9): Entry creation
//   - Delete (APPLICATION 10/11): Entry removal
//   - ModifyDN (APPLICATION 12/13): Entry rename/move
//   - Compare (APPLICATION 14/15): Attribute value comparison
//   - Abandon (APPLICATION 16): Operation cancellation
//
// # Result Codes
//
// LDAP operations return standardized result codes defined in RFC 4511:
//
//	result := ldapmsg.ResultSuccess           // Operation succeeded
//	result := ldapmsg.ResultInvalidCredentials // Authentication failed
//	result := ldapmsg.ResultNoSuchObject      // Entry not found
//
// # Search Filters
//
// A SearchRequest's Filter field is a *filterexpr.Filter, built with that
// package's constructors and walked with its own Decode/Encode:
//
//	// Equality filter: (uid=alice)
//	filter := filterexpr.NewEqualityFilter("uid", []byte("alice"))
//
//	// AND filter: (&(objectClass=person)(uid=alice))
//	filter := filterexpr.NewAndFilter(
//	    filterexpr.NewEqualityFilter("objectClass", []byte("person")),
//	    filterexpr.NewEqualityFilter("uid", []byte("alice")),
//	)
//
// # References
//
//   - RFC 4511: LDAP Protocol
//   - RFC 4512: LDAP Directory Information Models
//   - RFC 4513: LDAP Authentication Methods
package ldapmsg
