package schema

import "testing"

func TestStaticSchemaResolveAttributeOID(t *testing.T) {
	s := Default()
	oid, ok := s.ResolveAttributeOID("CN")
	if !ok || oid != "2.5.4.3" {
		t.Fatalf("got oid=%q ok=%v, want 2.5.4.3/true", oid, ok)
	}
	if _, ok := s.ResolveAttributeOID("nonesuch"); ok {
		t.Fatal("want unknown descriptor to miss")
	}
}

func TestStaticSchemaEqualityNormalizerCaseFolds(t *testing.T) {
	s := Default()
	norm := s.EqualityNormalizer("cn")
	if got := norm("  John   Doe "); got != "john doe" {
		t.Fatalf("got %q, want %q", got, "john doe")
	}
}

func TestStaticSchemaUnknownAttributeDefaultsHumanReadable(t *testing.T) {
	s := Default()
	if !s.IsHumanReadable("1.2.3.4.5") {
		t.Fatal("want unknown OID to default to human-readable")
	}
}
