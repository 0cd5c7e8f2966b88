package ldapmsg

import "testing"

func TestPagedResultsControlRoundTrip(t *testing.T) {
	ctrl := NewPagedResultsControl(50, []byte("cookie-1"), false)
	if ctrl.OID != OIDPagedResults {
		t.Fatalf("OID = %s", ctrl.OID)
	}

	decoded, err := ctrl.DecodedValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := decoded.(*PagedResultsControlValue)
	if !ok {
		t.Fatalf("decoded type = %T", decoded)
	}
	if v.Size != 50 || string(v.Cookie) != "cookie-1" {
		t.Fatalf("got %+v", v)
	}
}

func TestSortRequestControlRoundTrip(t *testing.T) {
	ctrl := NewSortRequestControl(true,
		SortKey{Attribute: "cn"},
		SortKey{Attribute: "uid", OrderingRule: "caseIgnoreOrderingMatch", Reverse: true},
	)
	if !ctrl.Criticality {
		t.Fatal("want critical sort request control")
	}

	decoded, err := ctrl.DecodedValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := decoded.(*SortRequestControlValue)
	if !ok {
		t.Fatalf("decoded type = %T", decoded)
	}
	if len(v.Keys) != 2 {
		t.Fatalf("keys = %+v", v.Keys)
	}
	if v.Keys[0].Attribute != "cn" || v.Keys[0].Reverse {
		t.Fatalf("key[0] = %+v", v.Keys[0])
	}
	if v.Keys[1].Attribute != "uid" || v.Keys[1].OrderingRule != "caseIgnoreOrderingMatch" || !v.Keys[1].Reverse {
		t.Fatalf("key[1] = %+v", v.Keys[1])
	}
}

func TestSortResponseControlRoundTrip(t *testing.T) {
	ctrl := NewSortResponseControl(0, "cn")

	decoded, err := ctrl.DecodedValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := decoded.(*SortResponseControlValue)
	if !ok {
		t.Fatalf("decoded type = %T", decoded)
	}
	if v.Result != 0 || v.AttributeType != "cn" {
		t.Fatalf("got %+v", v)
	}
}

func TestPersistentSearchControlRoundTrip(t *testing.T) {
	ctrl := NewPersistentSearchControl(ChangeTypeAdd|ChangeTypeDelete, true, true, false)

	decoded, err := ctrl.DecodedValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := decoded.(*PersistentSearchControlValue)
	if !ok {
		t.Fatalf("decoded type = %T", decoded)
	}
	if v.ChangeTypes != ChangeTypeAdd|ChangeTypeDelete || !v.ChangesOnly || !v.ReturnECs {
		t.Fatalf("got %+v", v)
	}
}

func TestEntryChangeNotificationControlRoundTrip(t *testing.T) {
	ctrl := NewEntryChangeNotificationControl(&EntryChangeNotificationValue{
		ChangeType:   ChangeTypeModDN,
		PreviousDN:   "cn=old,dc=example,dc=com",
		ChangeNumber: 42,
	})

	decoded, err := ctrl.DecodedValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := decoded.(*EntryChangeNotificationValue)
	if !ok {
		t.Fatalf("decoded type = %T", decoded)
	}
	if v.ChangeType != ChangeTypeModDN || v.PreviousDN != "cn=old,dc=example,dc=com" || v.ChangeNumber != 42 {
		t.Fatalf("got %+v", v)
	}
}

func TestManageDsaITControlHasNoValue(t *testing.T) {
	ctrl := NewManageDsaITControl(true)
	decoded, err := ctrl.DecodedValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != nil {
		t.Fatalf("got %+v, want nil", decoded)
	}
}

func TestProxiedAuthorizationControlRoundTrip(t *testing.T) {
	ctrl := NewProxiedAuthorizationControl("dn:uid=alice,dc=example,dc=com")
	decoded, err := ctrl.DecodedValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.(string) != "dn:uid=alice,dc=example,dc=com" {
		t.Fatalf("got %q", decoded)
	}
}

func TestSubentriesAndCascadeControlsRoundTrip(t *testing.T) {
	sub := NewSubentriesControl(true)
	decoded, err := sub.DecodedValue()
	if err != nil {
		t.Fatalf("decode subentries: %v", err)
	}
	if decoded.(bool) != true {
		t.Fatalf("subentries = %v, want true", decoded)
	}

	cascade := NewCascadeControl(false)
	decoded, err = cascade.DecodedValue()
	if err != nil {
		t.Fatalf("decode cascade: %v", err)
	}
	if decoded.(bool) != false {
		t.Fatalf("cascade = %v, want false", decoded)
	}
}

func TestUnregisteredControlOIDDecodesAsOpaqueBytes(t *testing.T) {
	ctrl := Control{OID: "9.9.9.9", Value: []byte("raw")}
	decoded, err := ctrl.DecodedValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(decoded.([]byte)) != "raw" {
		t.Fatalf("got %q", decoded)
	}
}
