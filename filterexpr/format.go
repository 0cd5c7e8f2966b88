package filterexpr

import "strings"

// Format renders f back to its RFC 4515 text form, parenthesized at
// every level. Escapable octets ('*', '(', ')', '\\', and NUL) are
// written as their "\XX" hex-escape form; every other byte is copied
// through unescaped.
func Format(f *Filter) string {
	var b strings.Builder
	writeFilter(&b, f)
	return b.String()
}

func writeFilter(b *strings.Builder, f *Filter) {
	b.WriteByte('(')
	switch f.Type {
	case FilterAnd:
		b.WriteByte('&')
		for _, c := range f.Children {
			writeFilter(b, c)
		}
	case FilterOr:
		b.WriteByte('|')
		for _, c := range f.Children {
			writeFilter(b, c)
		}
	case FilterNot:
		b.WriteByte('!')
		writeFilter(b, f.Child)
	case FilterEquality:
		b.WriteString(f.Attribute)
		b.WriteByte('=')
		b.WriteString(escapeFilterValue(f.Value))
	case FilterGreaterOrEqual:
		b.WriteString(f.Attribute)
		b.WriteString(">=")
		b.WriteString(escapeFilterValue(f.Value))
	case FilterLessOrEqual:
		b.WriteString(f.Attribute)
		b.WriteString("<=")
		b.WriteString(escapeFilterValue(f.Value))
	case FilterApproxMatch:
		b.WriteString(f.Attribute)
		b.WriteString("~=")
		b.WriteString(escapeFilterValue(f.Value))
	case FilterPresent:
		b.WriteString(f.Attribute)
		b.WriteString("=*")
	case FilterSubstring:
		b.WriteString(f.Attribute)
		b.WriteByte('=')
		writeSubstringValue(b, f.Substring)
	case FilterExtensibleMatch:
		writeExtensibleMatch(b, f.Extensible)
	}
	b.WriteByte(')')
}

func writeSubstringValue(b *strings.Builder, sf *SubstringFilter) {
	if sf.Initial != nil {
		b.WriteString(escapeFilterValue(sf.Initial))
	}
	b.WriteByte('*')
	for _, any := range sf.Any {
		b.WriteString(escapeFilterValue(any))
		b.WriteByte('*')
	}
	if sf.Final != nil {
		b.WriteString(escapeFilterValue(sf.Final))
	}
}

func writeExtensibleMatch(b *strings.Builder, e *ExtensibleMatch) {
	if e.Type != "" {
		b.WriteString(e.Type)
	}
	if e.DNAttributes {
		b.WriteString(":dn")
	}
	if e.MatchingRule != "" {
		b.WriteByte(':')
		b.WriteString(e.MatchingRule)
	}
	b.WriteString(":=")
	b.WriteString(escapeFilterValue(e.MatchValue))
}

func escapeFilterValue(value []byte) string {
	var b strings.Builder
	for _, c := range value {
		switch c {
		case '*', '(', ')', '\\', 0:
			b.WriteByte('\\')
			b.WriteString(hexByte(c))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

const hexDigits = "0123456789abcdef"

func hexByte(c byte) string {
	return string([]byte{hexDigits[c>>4], hexDigits[c&0x0F]})
}
