// Package schema defines the narrow read-only view the DN normalizer
// consults for schema-aware normalization, plus a small in-memory
// implementation of it.
//
// The full attribute-type / object-class / matching-rule registries a
// real directory server needs are explicitly out of scope here: this
// package answers exactly two questions the core cares about — "what OID
// does this descriptor mean" and "how do I normalize this value for
// equality" — and nothing else.
package schema

import "strings"

// View is the interface dn.DN.Normalize and dn.Equal consult for
// schema-aware normalization. A nil View is valid everywhere it is
// accepted: callers fall back to syntax-free descriptor lowercasing,
// which is RFC 4514's default behavior absent schema knowledge.
type View interface {
	// ResolveAttributeOID maps a descriptor (e.g. "cn") to its
	// dotted-decimal OID. ok is false for an unknown descriptor.
	ResolveAttributeOID(descriptor string) (oid string, ok bool)

	// IsHumanReadable reports whether values of the given attribute
	// type (descriptor or OID) should be treated as UTF-8 text rather
	// than opaque octet strings.
	IsHumanReadable(attrTypeOrOID string) bool

	// EqualityNormalizer returns the function used to fold a value of
	// the given attribute type to its canonical equality-comparison
	// form (e.g. case-insensitive trimming for caseIgnoreMatch).
	EqualityNormalizer(attrTypeOrOID string) func(string) string
}

// AttributeType is the minimal per-attribute record StaticSchema keeps:
// enough to resolve a descriptor to its OID, and to know how its values
// fold for equality.
type AttributeType struct {
	OID            string
	Names          []string
	HumanReadable  bool
	CaseIgnore     bool
}

// StaticSchema is a fixed, map-backed View seeded at construction time —
// adequate for tests, the demo CLI, and any caller that already knows
// its attribute universe ahead of time.
type StaticSchema struct {
	byName map[string]*AttributeType
	byOID  map[string]*AttributeType
}

// NewStaticSchema builds a StaticSchema from the given attribute types,
// indexing each by every name alias (lowercased) and by OID.
func NewStaticSchema(types ...*AttributeType) *StaticSchema {
	s := &StaticSchema{byName: make(map[string]*AttributeType), byOID: make(map[string]*AttributeType)}
	for _, at := range types {
		s.byOID[at.OID] = at
		for _, n := range at.Names {
			s.byName[strings.ToLower(n)] = at
		}
	}
	return s
}

func (s *StaticSchema) lookup(attrTypeOrOID string) *AttributeType {
	if at, ok := s.byOID[attrTypeOrOID]; ok {
		return at
	}
	return s.byName[strings.ToLower(attrTypeOrOID)]
}

// ResolveAttributeOID implements View.
func (s *StaticSchema) ResolveAttributeOID(descriptor string) (string, bool) {
	at := s.lookup(descriptor)
	if at == nil {
		return "", false
	}
	return at.OID, true
}

// IsHumanReadable implements View. Unknown attribute types default to
// human-readable, matching the common case (most attribute syntaxes LDAP
// uses in practice are DirectoryString-family).
func (s *StaticSchema) IsHumanReadable(attrTypeOrOID string) bool {
	at := s.lookup(attrTypeOrOID)
	if at == nil {
		return true
	}
	return at.HumanReadable
}

// EqualityNormalizer implements View. Every normalizer collapses
// insignificant space; unknown attribute types and caseIgnore ones are
// also lowercased, while known types without CaseIgnore keep their case.
func (s *StaticSchema) EqualityNormalizer(attrTypeOrOID string) func(string) string {
	at := s.lookup(attrTypeOrOID)
	caseIgnore := at == nil || at.CaseIgnore
	return func(v string) string {
		v = collapseInsignificantSpace(v)
		if caseIgnore {
			v = strings.ToLower(v)
		}
		return v
	}
}

// collapseInsignificantSpace implements caseIgnore matching rules' space
// handling: leading/trailing space is insignificant and repeated
// internal space collapses to one, per X.520's caseIgnoreMatch.
func collapseInsignificantSpace(v string) string {
	fields := strings.Fields(v)
	return strings.Join(fields, " ")
}

// Default returns the StaticSchema seeded with the attribute types the
// package's own tests and the demo CLI exercise: the handful of
// RFC 4519 attributes that show up in every DN/filter example.
func Default() *StaticSchema {
	return NewStaticSchema(
		&AttributeType{OID: "2.5.4.3", Names: []string{"cn", "commonName"}, HumanReadable: true, CaseIgnore: true},
		&AttributeType{OID: "2.5.4.4", Names: []string{"sn", "surname"}, HumanReadable: true, CaseIgnore: true},
		&AttributeType{OID: "0.9.2342.19200300.100.1.25", Names: []string{"dc", "domainComponent"}, HumanReadable: true, CaseIgnore: true},
		&AttributeType{OID: "0.9.2342.19200300.100.1.1", Names: []string{"uid", "userid"}, HumanReadable: true, CaseIgnore: true},
		&AttributeType{OID: "2.5.4.11", Names: []string{"ou", "organizationalUnitName"}, HumanReadable: true, CaseIgnore: true},
		&AttributeType{OID: "2.5.4.10", Names: []string{"o", "organizationName"}, HumanReadable: true, CaseIgnore: true},
		&AttributeType{OID: "2.5.4.0", Names: []string{"objectClass"}, HumanReadable: true, CaseIgnore: true},
		&AttributeType{OID: "2.5.4.7", Names: []string{"l", "localityName"}, HumanReadable: true, CaseIgnore: true},
		&AttributeType{OID: "2.5.4.6", Names: []string{"c", "countryName"}, HumanReadable: true, CaseIgnore: true},
	)
}
