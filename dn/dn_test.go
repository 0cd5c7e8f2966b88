package dn

import (
	"testing"

	"github.com/oba-ldap/ldapwire/schema"
)

func TestParseQuotedValue(t *testing.T) {
	got, err := Parse(`cn="Doe, John",dc=example,dc=com`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got.RDNs) != 3 {
		t.Fatalf("want 3 RDNs, got %d", len(got.RDNs))
	}
	if got.RDNs[0].Attributes[0].Value != "Doe, John" {
		t.Fatalf("want %q, got %q", "Doe, John", got.RDNs[0].Attributes[0].Value)
	}
	want := `cn=Doe\, John,dc=example,dc=com`
	if s := got.String(); s != want {
		t.Fatalf("got %q, want %q", s, want)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	inputs := []string{
		`cn=Jim\,\ Jr,dc=example,dc=com`,
		`uid=jdoe,ou=People,dc=example,dc=com`,
		`cn=a+sn=b,dc=x`,
	}
	for _, in := range inputs {
		d, err := Parse(in)
		if err != nil {
			t.Fatalf("parse(%q): %v", in, err)
		}
		again, err := Parse(d.String())
		if err != nil {
			t.Fatalf("re-parse(%q): %v", d.String(), err)
		}
		if again.String() != d.String() {
			t.Fatalf("round trip mismatch: %q vs %q", d.String(), again.String())
		}
	}
}

func TestMultiValuedRDNNormalizationIsOrderInsensitive(t *testing.T) {
	s := schema.Default()
	a, err := Parse("sn=b+cn=a,dc=x")
	if err != nil {
		t.Fatalf("parse a: %v", err)
	}
	b, err := Parse("cn=a+sn=b,dc=x")
	if err != nil {
		t.Fatalf("parse b: %v", err)
	}
	if !Equal(a, b, s) {
		t.Fatalf("want equal, got a=%q b=%q", a.Normalize(s), b.Normalize(s))
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	s := schema.Default()
	d, err := Parse("CN=John,DC=Example,DC=Com")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	once := d.Normalize(s)
	again, err := Parse(once)
	if err != nil {
		t.Fatalf("re-parse normalized form: %v", err)
	}
	if again.Normalize(s) != once {
		t.Fatalf("normalize not idempotent: %q vs %q", once, again.Normalize(s))
	}
}

func TestEmptyDN(t *testing.T) {
	d, err := Parse("")
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if d.String() != "" {
		t.Fatalf("want empty string, got %q", d.String())
	}
}

func TestUnbalancedQuoteFails(t *testing.T) {
	if _, err := Parse(`cn="unterminated,dc=example`); err == nil {
		t.Fatal("want error for unterminated quote")
	}
}

func TestMissingEqualsFails(t *testing.T) {
	if _, err := Parse(`cn`); err == nil {
		t.Fatal("want error for missing '='")
	}
}
