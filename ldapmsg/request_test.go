package ldapmsg

import (
	"bytes"
	"testing"

	"github.com/oba-ldap/ldapwire/ber"
	"github.com/oba-ldap/ldapwire/filterexpr"
)

func TestBindRequestSimpleRoundTrip(t *testing.T) {
	req := &BindRequest{
		Version:        3,
		Name:           "cn=admin,dc=example,dc=com",
		AuthMethod:     AuthMethodSimple,
		SimplePassword: []byte("secret"),
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := ParseBindRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Version != 3 || got.Name != req.Name || got.AuthMethod != AuthMethodSimple {
		t.Fatalf("got %+v", got)
	}
	if !bytes.Equal(got.SimplePassword, req.SimplePassword) {
		t.Fatalf("password = %q, want %q", got.SimplePassword, req.SimplePassword)
	}
}

func TestBindRequestSASLRoundTrip(t *testing.T) {
	req := &BindRequest{
		Version:    3,
		Name:       "",
		AuthMethod: AuthMethodSASL,
		SASLCredentials: &SASLCredentials{
			Mechanism:   "PLAIN",
			Credentials: []byte("creds"),
		},
	}

	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseBindRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.AuthMethod != AuthMethodSASL || got.SASLCredentials == nil {
		t.Fatalf("got %+v", got)
	}
	if got.SASLCredentials.Mechanism != "PLAIN" || string(got.SASLCredentials.Credentials) != "creds" {
		t.Fatalf("sasl creds = %+v", got.SASLCredentials)
	}
}

func TestBindRequestInvalidVersionRejected(t *testing.T) {
	buf := ber.NewAsn1Buffer(32)
	buf.EncodeTaggedOctetString([]byte(""), byte(ber.ClassContextSpecific|ber.TypePrimitive|AuthSimple))
	buf.EncodeOctetString([]byte(""))
	buf.EncodeInteger(200)

	if _, err := ParseBindRequest(buf.Bytes()); err != ErrInvalidBindVersion {
		t.Fatalf("err = %v, want ErrInvalidBindVersion", err)
	}
}

func TestAddRequestRoundTrip(t *testing.T) {
	req := &AddRequest{
		Entry: "uid=bob,dc=example,dc=com",
		Attributes: []Attribute{
			{Type: "objectClass", Values: [][]byte{[]byte("top"), []byte("person")}},
			{Type: "cn", Values: [][]byte{[]byte("Bob")}},
		},
	}

	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseAddRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Entry != req.Entry || len(got.Attributes) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.GetAttributeStringValues("cn")[0] != "Bob" {
		t.Fatalf("cn = %v", got.GetAttributeStringValues("cn"))
	}
	if got.GetAttribute("missing") != nil {
		t.Fatalf("expected nil for missing attribute")
	}
}

func TestCompareRequestRoundTrip(t *testing.T) {
	req := &CompareRequest{DN: "uid=bob,dc=example,dc=com", Attribute: "uid", Value: []byte("bob")}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseCompareRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.DN != req.DN || got.Attribute != req.Attribute || !bytes.Equal(got.Value, req.Value) {
		t.Fatalf("got %+v", got)
	}
}

func TestCompareRequestValidateRejectsEmpty(t *testing.T) {
	if err := (&CompareRequest{Attribute: "uid", Value: []byte("x")}).Validate(); err != ErrEmptyCompareDN {
		t.Fatalf("err = %v, want ErrEmptyCompareDN", err)
	}
	if err := (&CompareRequest{DN: "dc=example,dc=com"}).Validate(); err != ErrEmptyCompareAttribute {
		t.Fatalf("err = %v, want ErrEmptyCompareAttribute", err)
	}
}

func TestDeleteRequestRoundTrip(t *testing.T) {
	req := &DeleteRequest{DN: "uid=bob,dc=example,dc=com"}
	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseDeleteRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.DN != req.DN {
		t.Fatalf("got %+v", got)
	}
	if err := (&DeleteRequest{}).Validate(); err != ErrEmptyDeleteDN {
		t.Fatalf("err = %v, want ErrEmptyDeleteDN", err)
	}
}

func TestModifyRequestRoundTrip(t *testing.T) {
	req := &ModifyRequest{Object: "uid=bob,dc=example,dc=com"}
	req.AddStringModification(ModifyOperationReplace, "mail", "bob@example.com")
	req.AddModification(ModifyOperationDelete, "description")

	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseModifyRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Object != req.Object || len(got.Changes) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Changes[0].Operation != ModifyOperationReplace || got.Changes[0].Attribute.Type != "mail" {
		t.Fatalf("change[0] = %+v", got.Changes[0])
	}
	if got.Changes[1].Operation != ModifyOperationDelete || len(got.Changes[1].Attribute.Values) != 0 {
		t.Fatalf("change[1] = %+v", got.Changes[1])
	}
}

func TestModifyRequestValidateRejectsEmptyChanges(t *testing.T) {
	if err := (&ModifyRequest{Object: "dc=example,dc=com"}).Validate(); err != ErrEmptyModifications {
		t.Fatalf("err = %v, want ErrEmptyModifications", err)
	}
}

func TestModifyDNRequestRoundTrip(t *testing.T) {
	req := &ModifyDNRequest{
		Entry:        "uid=bob,dc=example,dc=com",
		NewRDN:       "uid=robert",
		DeleteOldRDN: true,
		NewSuperior:  "ou=people,dc=example,dc=com",
	}
	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseModifyDNRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Entry != req.Entry || got.NewRDN != req.NewRDN || !got.DeleteOldRDN {
		t.Fatalf("got %+v", got)
	}
	if !got.HasNewSuperior() || got.NewSuperior != req.NewSuperior {
		t.Fatalf("new superior = %q", got.NewSuperior)
	}
}

func TestModifyDNRequestWithoutNewSuperior(t *testing.T) {
	req := &ModifyDNRequest{Entry: "uid=bob,dc=example,dc=com", NewRDN: "uid=robert", DeleteOldRDN: false}
	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseModifyDNRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.HasNewSuperior() {
		t.Fatalf("expected no new superior, got %q", got.NewSuperior)
	}
}

func TestSearchRequestRoundTrip(t *testing.T) {
	req := &SearchRequest{
		BaseObject:   "dc=example,dc=com",
		Scope:        ScopeWholeSubtree,
		DerefAliases: DerefNever,
		SizeLimit:    100,
		TimeLimit:    30,
		TypesOnly:    false,
		Filter: filterexpr.NewAndFilter(
			filterexpr.NewEqualityFilter("objectClass", []byte("person")),
			filterexpr.NewPresentFilter("uid"),
		),
		Attributes: []string{"cn", "mail"},
	}

	body, err := req.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseSearchRequest(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.BaseObject != req.BaseObject || got.Scope != req.Scope || got.DerefAliases != req.DerefAliases {
		t.Fatalf("got %+v", got)
	}
	if got.SizeLimit != 100 || got.TimeLimit != 30 || got.TypesOnly {
		t.Fatalf("limits = %+v", got)
	}
	if got.Filter.Type != filterexpr.FilterAnd || len(got.Filter.Children) != 2 {
		t.Fatalf("filter = %+v", got.Filter)
	}
	if len(got.Attributes) != 2 || got.Attributes[0] != "cn" || got.Attributes[1] != "mail" {
		t.Fatalf("attributes = %v", got.Attributes)
	}
}

func TestSearchRequestEncodeRejectsNilFilter(t *testing.T) {
	req := &SearchRequest{BaseObject: "dc=example,dc=com"}
	if _, err := req.Encode(); err != ErrInvalidFilter {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
}
