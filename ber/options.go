package ber

import "math"

// DecoderOptions are the caller-configurable limits every Container
// enforces.
type DecoderOptions struct {
	// MaxPDUSize upper-bounds any decoded PDU in bytes. Zero means
	// unbounded (the type's maximum positive integer).
	MaxPDUSize int

	// IndefiniteLengthAllowed is not read by the decoder: the
	// indefinite-length form (0x80) is rejected on decode whether or
	// not it is set.
	IndefiniteLengthAllowed bool

	// MaxTagLength hard-caps the number of tag octets. LDAP never
	// needs multi-byte (high-tag-number form) tags, so this decoder
	// only implements the default of 1.
	MaxTagLength int

	// MaxLengthLength hard-caps the number of long-form length octets
	// following the initial length byte. Default 1.
	MaxLengthLength int
}

func (o DecoderOptions) maxPDUSize() int {
	if o.MaxPDUSize <= 0 {
		return math.MaxInt32
	}
	return o.MaxPDUSize
}

func (o DecoderOptions) maxLengthLength() int {
	if o.MaxLengthLength <= 0 {
		return 1
	}
	return o.MaxLengthLength
}

// DefaultOptions returns the spec-mandated defaults: unbounded PDU size,
// indefinite length rejected, single-octet tag and length-length caps.
func DefaultOptions() DecoderOptions {
	return DecoderOptions{MaxTagLength: 1, MaxLengthLength: 1}
}
