package ber

// This file holds the C1 primitives that do not require the resumable
// decoder or the reverse encoder: the length round-trip helpers (used by
// the TLV decoder's LengthStart/LengthPending states and independently
// testable per the length round-trip property) and the value codecs for
// BOOLEAN/INTEGER/ENUMERATED that operate on an already-buffered value.

// EncodeLength returns the BER length octets for n using the minimum
// number of bytes: short form for n <= 127, long form otherwise. The
// 0xFF extension octet is never produced.
func EncodeLength(n int) []byte {
	if n < 0 {
		panic("ber: negative length")
	}
	if n <= MaxShortFormLength {
		return []byte{byte(n)}
	}
	var tmp [8]byte
	i := len(tmp)
	v := uint64(n)
	for v > 0 {
		i--
		tmp[i] = byte(v)
		v >>= 8
	}
	nb := len(tmp) - i
	out := make([]byte, 0, nb+1)
	out = append(out, LengthLongFormBit|byte(nb))
	out = append(out, tmp[i:]...)
	return out
}

// DecodeLength reads a complete (non-streaming) BER length from buf,
// returning the decoded length and the number of octets consumed. It
// rejects the indefinite-length form and the reserved 0xFF extension
// octet. Used for direct unit testing of the length round-trip
// property; the resumable decoder implements the same rules
// incrementally in its LengthStart/LengthPending states.
func DecodeLength(buf []byte) (length int, consumed int, err error) {
	if len(buf) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	first := buf[0]
	if first&LengthLongFormBit == 0 {
		return int(first), 1, nil
	}
	if first == 0xFF {
		return 0, 0, ErrLengthExtensionReserved
	}
	n := int(first &^ LengthLongFormBit)
	if n == 0 {
		return 0, 0, ErrIndefiniteLength
	}
	if n > 4 {
		return 0, 0, ErrLengthOverflow
	}
	if len(buf) < 1+n {
		return 0, 0, ErrUnexpectedEOF
	}
	for i := 0; i < n; i++ {
		length = length<<8 | int(buf[1+i])
		if length < 0 {
			return 0, 0, ErrLengthOverflow
		}
	}
	return length, 1 + n, nil
}

// DecodeBoolean interprets a one-octet BOOLEAN value: 0x00 is false,
// anything else is true.
func DecodeBoolean(value []byte) (bool, error) {
	if len(value) != 1 {
		return false, ErrInvalidBoolean
	}
	return value[0] != 0x00, nil
}

// DecodeInteger decodes a two's-complement big-endian INTEGER value of
// up to 8 octets.
func DecodeInteger(value []byte) (int64, error) {
	if len(value) == 0 || len(value) > 8 {
		return 0, ErrInvalidInteger
	}
	n := int64(int8(value[0]))
	for _, b := range value[1:] {
		n = n<<8 | int64(b)
	}
	return n, nil
}

// DecodeEnumerated decodes an ENUMERATED value; on the wire it is
// indistinguishable from INTEGER apart from its tag.
func DecodeEnumerated(value []byte) (int64, error) {
	return DecodeInteger(value)
}
