package ldapmsg

import (
	"bytes"
	"testing"
)

func TestBindResponseRoundTrip(t *testing.T) {
	resp := &BindResponse{
		LDAPResult:      NewSuccessResult(),
		ServerSASLCreds: []byte("srv-creds"),
	}
	body, err := resp.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseBindResponse(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.ResultCode != ResultSuccess {
		t.Fatalf("result code = %v", got.ResultCode)
	}
	if !bytes.Equal(got.ServerSASLCreds, resp.ServerSASLCreds) {
		t.Fatalf("sasl creds = %q", got.ServerSASLCreds)
	}
}

func TestBindResponseWithoutSASLCreds(t *testing.T) {
	resp := &BindResponse{LDAPResult: NewErrorResult(ResultInvalidCredentials, "bad password")}
	body, err := resp.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseBindResponse(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.ResultCode != ResultInvalidCredentials || got.DiagnosticMessage != "bad password" {
		t.Fatalf("got %+v", got.LDAPResult)
	}
	if len(got.ServerSASLCreds) != 0 {
		t.Fatalf("expected no sasl creds, got %q", got.ServerSASLCreds)
	}
}

func TestLDAPResultWithReferral(t *testing.T) {
	resp := &SearchResultDone{
		LDAPResult: LDAPResult{
			ResultCode:        ResultReferral,
			MatchedDN:         "dc=example,dc=com",
			DiagnosticMessage: "see referral",
			Referral:          []string{"ldap://other1.example.com", "ldap://other2.example.com"},
		},
	}
	body, err := resp.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseSearchResultDone(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.ResultCode != ResultReferral || got.MatchedDN != "dc=example,dc=com" {
		t.Fatalf("got %+v", got.LDAPResult)
	}
	if len(got.Referral) != 2 || got.Referral[0] != "ldap://other1.example.com" {
		t.Fatalf("referral = %v", got.Referral)
	}
}

func TestSearchResultEntryRoundTrip(t *testing.T) {
	entry := &SearchResultEntry{
		ObjectName: "uid=alice,dc=example,dc=com",
		Attributes: []PartialAttribute{
			{Type: "cn", Values: [][]byte{[]byte("Alice")}},
			{Type: "objectClass", Values: [][]byte{[]byte("top"), []byte("person")}},
		},
	}
	body, err := entry.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ParseSearchResultEntry(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.ObjectName != entry.ObjectName || len(got.Attributes) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Attributes[1].Type != "objectClass" || len(got.Attributes[1].Values) != 2 {
		t.Fatalf("attributes[1] = %+v", got.Attributes[1])
	}
}

func TestSimpleLDAPResultResponses(t *testing.T) {
	success := NewSuccessResult()

	t.Run("ModifyResponse", func(t *testing.T) {
		body, err := (&ModifyResponse{LDAPResult: success}).Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := ParseModifyResponse(body)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got.ResultCode != ResultSuccess {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("AddResponse", func(t *testing.T) {
		body, err := (&AddResponse{LDAPResult: success}).Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := ParseAddResponse(body)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got.ResultCode != ResultSuccess {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("DeleteResponse", func(t *testing.T) {
		body, err := (&DeleteResponse{LDAPResult: success}).Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := ParseDeleteResponse(body)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got.ResultCode != ResultSuccess {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("ModifyDNResponse", func(t *testing.T) {
		body, err := (&ModifyDNResponse{LDAPResult: success}).Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := ParseModifyDNResponse(body)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got.ResultCode != ResultSuccess {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("CompareResponse", func(t *testing.T) {
		body, err := (&CompareResponse{LDAPResult: NewErrorResult(ResultCompareTrue, "")}).Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := ParseCompareResponse(body)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got.ResultCode != ResultCompareTrue {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestNewErrorResultWithDN(t *testing.T) {
	r := NewErrorResultWithDN(ResultNoSuchObject, "dc=example,dc=com", "no such entry")
	if r.ResultCode != ResultNoSuchObject || r.MatchedDN != "dc=example,dc=com" || r.DiagnosticMessage != "no such entry" {
		t.Fatalf("got %+v", r)
	}
}
