package filterexpr

import (
	"errors"

	"github.com/oba-ldap/ldapwire/ber"
)

// Filter trees arrive already sliced out of their enclosing
// SearchRequest PDU, with their size known up front, so encoding and
// decoding work directly against byte slices rather than through the
// resumable ber.Container state machine used for outer PDU framing.

var (
	// ErrUnknownFilterTag is returned when a filter CHOICE tag byte
	// does not match any of the ten arms RFC 4511 defines.
	ErrUnknownFilterTag = errors.New("filterexpr: unknown filter tag")
	// ErrTruncatedFilter is returned when a filter's encoded length
	// claims more bytes than are actually present.
	ErrTruncatedFilter = errors.New("filterexpr: truncated filter encoding")
)

// Encode appends f's BER encoding to buf. buf is a reverse (tail-to-head)
// writer, so composite filters encode their children in reverse order —
// see ber.Asn1Buffer's doc comment for why.
func Encode(buf *ber.Asn1Buffer, f *Filter) {
	switch f.Type {
	case FilterAnd:
		encodeChoiceSet(buf, f.Children, TagAnd&0x1F)
	case FilterOr:
		encodeChoiceSet(buf, f.Children, TagOr&0x1F)
	case FilterNot:
		start := buf.Position()
		Encode(buf, f.Child)
		buf.EndContextTag(start, TagNot&0x1F)
	case FilterEquality:
		encodeAVA(buf, f.Attribute, f.Value, TagEquality&0x1F)
	case FilterGreaterOrEqual:
		encodeAVA(buf, f.Attribute, f.Value, TagGreaterOrEqual&0x1F)
	case FilterLessOrEqual:
		encodeAVA(buf, f.Attribute, f.Value, TagLessOrEqual&0x1F)
	case FilterApproxMatch:
		encodeAVA(buf, f.Attribute, f.Value, TagApproxMatch&0x1F)
	case FilterPresent:
		buf.EncodeTaggedOctetString([]byte(f.Attribute), TagPresent)
	case FilterSubstring:
		encodeSubstring(buf, f.Substring)
	case FilterExtensibleMatch:
		encodeExtensibleMatch(buf, f.Extensible)
	}
}

func encodeChoiceSet(buf *ber.Asn1Buffer, children []*Filter, number byte) {
	start := buf.Position()
	for i := len(children) - 1; i >= 0; i-- {
		Encode(buf, children[i])
	}
	buf.EndContextTag(start, number)
}

func encodeAVA(buf *ber.Asn1Buffer, attr string, value []byte, number byte) {
	start := buf.Position()
	buf.EncodeOctetString(value)
	buf.EncodeOctetString([]byte(attr))
	buf.EndContextTag(start, number)
}

func encodeSubstring(buf *ber.Asn1Buffer, sf *SubstringFilter) {
	start := buf.Position()

	seqStart := buf.Position()
	if sf.Final != nil {
		buf.EncodeTaggedOctetString(sf.Final, SubstringFinal)
	}
	for i := len(sf.Any) - 1; i >= 0; i-- {
		buf.EncodeTaggedOctetString(sf.Any[i], SubstringAny)
	}
	if sf.Initial != nil {
		buf.EncodeTaggedOctetString(sf.Initial, SubstringInitial)
	}
	buf.EndSequence(seqStart)

	buf.EncodeOctetString([]byte(sf.Attribute))
	buf.EndContextTag(start, TagSubstring&0x1F)
}

func encodeExtensibleMatch(buf *ber.Asn1Buffer, e *ExtensibleMatch) {
	start := buf.Position()
	if e.DNAttributes {
		buf.WriteByte(0xFF)
		buf.WriteByte(1)
		buf.WriteByte(ExtDNAttributes)
	}
	buf.EncodeTaggedOctetString(e.MatchValue, ExtMatchValue)
	if e.Type != "" {
		buf.EncodeTaggedOctetString([]byte(e.Type), ExtType)
	}
	if e.MatchingRule != "" {
		buf.EncodeTaggedOctetString([]byte(e.MatchingRule), ExtMatchingRule)
	}
	buf.EndContextTag(start, TagExtensibleMatch&0x1F)
}

// tlv is a single parsed tag/value pair, with consumed giving the total
// number of input bytes (tag + length octets + value) it occupied.
type tlv struct {
	tag      byte
	value    []byte
	consumed int
}

func readTLV(data []byte) (tlv, error) {
	if len(data) == 0 {
		return tlv{}, ErrTruncatedFilter
	}
	tag := data[0]
	length, lenBytes, err := ber.DecodeLength(data[1:])
	if err != nil {
		return tlv{}, err
	}
	start := 1 + lenBytes
	if start+length > len(data) {
		return tlv{}, ErrTruncatedFilter
	}
	return tlv{tag: tag, value: data[start : start+length], consumed: start + length}, nil
}

// Decode parses one filter CHOICE item from the front of data, returning
// the Filter and the number of bytes it consumed.
func Decode(data []byte) (*Filter, int, error) {
	t, err := readTLV(data)
	if err != nil {
		return nil, 0, err
	}

	var f *Filter
	switch t.tag {
	case TagAnd:
		children, err := decodeFilterList(t.value)
		if err != nil {
			return nil, 0, err
		}
		f = NewAndFilter(children...)
	case TagOr:
		children, err := decodeFilterList(t.value)
		if err != nil {
			return nil, 0, err
		}
		f = NewOrFilter(children...)
	case TagNot:
		child, _, err := Decode(t.value)
		if err != nil {
			return nil, 0, err
		}
		f = NewNotFilter(child)
	case TagEquality, TagGreaterOrEqual, TagLessOrEqual, TagApproxMatch:
		attr, value, err := decodeAVA(t.value)
		if err != nil {
			return nil, 0, err
		}
		f = newAVAFilter(t.tag, attr, value)
	case TagPresent:
		f = NewPresentFilter(string(t.value))
	case TagSubstring:
		f, err = decodeSubstring(t.value)
		if err != nil {
			return nil, 0, err
		}
	case TagExtensibleMatch:
		f, err = decodeExtensibleMatch(t.value)
		if err != nil {
			return nil, 0, err
		}
	default:
		return nil, 0, ErrUnknownFilterTag
	}

	return f, t.consumed, nil
}

func newAVAFilter(tag byte, attr string, value []byte) *Filter {
	switch tag {
	case TagEquality:
		return NewEqualityFilter(attr, value)
	case TagGreaterOrEqual:
		return NewGreaterOrEqualFilter(attr, value)
	case TagLessOrEqual:
		return NewLessOrEqualFilter(attr, value)
	default: // TagApproxMatch
		return NewApproxMatchFilter(attr, value)
	}
}

func decodeFilterList(data []byte) ([]*Filter, error) {
	var filters []*Filter
	for len(data) > 0 {
		f, n, err := Decode(data)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
		data = data[n:]
	}
	return filters, nil
}

func decodeAVA(data []byte) (string, []byte, error) {
	attrTLV, err := readTLV(data)
	if err != nil {
		return "", nil, err
	}
	valueTLV, err := readTLV(data[attrTLV.consumed:])
	if err != nil {
		return "", nil, err
	}
	return string(attrTLV.value), valueTLV.value, nil
}

func decodeSubstring(data []byte) (*Filter, error) {
	attrTLV, err := readTLV(data)
	if err != nil {
		return nil, err
	}
	seqTLV, err := readTLV(data[attrTLV.consumed:])
	if err != nil {
		return nil, err
	}

	sf := &SubstringFilter{Attribute: string(attrTLV.value)}
	rest := seqTLV.value
	for len(rest) > 0 {
		part, err := readTLV(rest)
		if err != nil {
			return nil, err
		}
		switch part.tag {
		case SubstringInitial:
			sf.Initial = part.value
		case SubstringAny:
			sf.Any = append(sf.Any, part.value)
		case SubstringFinal:
			sf.Final = part.value
		default:
			return nil, ErrUnknownFilterTag
		}
		rest = rest[part.consumed:]
	}
	return NewSubstringFilter(sf), nil
}

func decodeExtensibleMatch(data []byte) (*Filter, error) {
	e := &ExtensibleMatch{}
	for len(data) > 0 {
		part, err := readTLV(data)
		if err != nil {
			return nil, err
		}
		switch part.tag {
		case ExtMatchingRule:
			e.MatchingRule = string(part.value)
		case ExtType:
			e.Type = string(part.value)
		case ExtMatchValue:
			e.MatchValue = part.value
		case ExtDNAttributes:
			b, err := ber.DecodeBoolean(part.value)
			if err != nil {
				return nil, err
			}
			e.DNAttributes = b
		default:
			return nil, ErrUnknownFilterTag
		}
		data = data[part.consumed:]
	}
	return NewExtensibleMatchFilter(e), nil
}
