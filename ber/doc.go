// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding and
// decoding as specified in ITU-T X.690, restricted to the subset LDAP
// (RFC 4511) uses.
//
// BER is the wire format used by LDAP for all protocol messages. This
// package provides the low-level protocol machinery other packages build
// on: tag/length primitives, a resumable TLV decoder driven by a
// table-driven grammar, and a reverse (tail-to-head) encoder.
//
// # Tag classes
//
// BER uses four tag classes to identify data types:
//
//   - Universal (0x00): Standard ASN.1 types like INTEGER, BOOLEAN, SEQUENCE
//   - Application (0x40): Protocol-specific types (LDAP operations)
//   - Context-specific (0x80): Context-dependent types within a structure
//   - Private (0xC0): Organization-specific types
//
// # Encoding
//
// Asn1Buffer writes from tail to head so that a SEQUENCE's length can be
// prefixed once its members are known, without a two-pass length
// computation:
//
//	buf := ber.NewAsn1Buffer(256)
//	start := buf.BeginSequence()
//	buf.EncodeInteger(2)
//	buf.EncodeOctetString([]byte("hello"))
//	buf.EndSequence(start)
//	data := buf.Bytes()
//
// # Decoding
//
// Container drives a Grammar over a byte stream, tolerating partial
// input: each call to Decode consumes as much as it can and reports
// whether it wants more bytes, has finished a PDU, or hit a fatal error.
//
//	c := ber.NewContainer(someGrammar, ber.DefaultOptions())
//	c.Message = &myMessage{}
//	outcome, err := c.Decode(chunk)
//
// # Universal tags
//
// The package defines constants for the universal tags LDAP uses:
//
//   - TagBoolean (0x01): Boolean values
//   - TagInteger (0x02): Integer values
//   - TagOctetString (0x04): Byte strings
//   - TagNull (0x05): Null value
//   - TagOID (0x06): Object identifiers
//   - TagEnumerated (0x0A): Enumerated values
//   - TagSequence (0x10): Ordered collection
//   - TagSet (0x11): Unordered collection
//
// # References
//
//   - ITU-T X.690: ASN.1 encoding rules
//   - RFC 4511: LDAP Protocol (uses BER encoding)
package ber
