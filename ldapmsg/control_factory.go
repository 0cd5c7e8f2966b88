package ldapmsg

import (
	"errors"
	"sync"

	"github.com/oba-ldap/ldapwire/ber"
)

// Well-known control OIDs this package ships a factory for, per spec.md §6.
const (
	OIDServerSideSortRequest   = "1.2.840.113556.1.4.473"  // RFC 2891
	OIDServerSideSortResponse  = "1.2.840.113556.1.4.474"  // RFC 2891
	OIDPagedResults            = "1.2.840.113556.1.4.319"  // RFC 2696
	OIDPersistentSearch        = "2.16.840.1.113730.3.4.3" // draft-ietf-ldapext-psearch
	OIDEntryChangeNotification = "2.16.840.1.113730.3.4.7" // draft-ietf-ldapext-psearch
	OIDManageDsaIT             = "2.16.840.1.113730.3.4.2" // RFC 3296
	OIDProxiedAuthorization    = "2.16.840.1.113730.3.4.18" // RFC 4370
	OIDSubentries              = "1.3.6.1.4.1.4203.1.10.1" // RFC 3672
	// OIDCascade marks an operation on a subentry as applying to every
	// entry the subentry governs, per the same administrative model as
	// OIDSubentries (RFC 3672).
	OIDCascade = "1.3.6.1.4.1.4203.1.10.2"
)

// ErrInvalidControlValue is returned when a control's value does not
// match the BER shape its registered ControlFactory expects.
var ErrInvalidControlValue = errors.New("ldapmsg: control value does not match its registered factory")

// ControlFactory decodes a control's opaque Value into a structured Go
// value, once its OID identifies which control it is.
type ControlFactory interface {
	DecodeValue(value []byte) (any, error)
}

var (
	controlFactoriesMu sync.RWMutex
	controlFactories   = map[string]ControlFactory{}
)

// RegisterControlFactory registers f as the factory for oid, replacing
// any factory previously registered for it. Per spec.md §5 this registry
// is a process-wide read-mostly map: registration is safe to call at any
// time, but callers should finish registering before decoders that look
// OIDs up start running concurrently.
func RegisterControlFactory(oid string, f ControlFactory) {
	controlFactoriesMu.Lock()
	defer controlFactoriesMu.Unlock()
	controlFactories[oid] = f
}

// LookupControlFactory returns the factory registered for oid, if any.
func LookupControlFactory(oid string) (ControlFactory, bool) {
	controlFactoriesMu.RLock()
	defer controlFactoriesMu.RUnlock()
	f, ok := controlFactories[oid]
	return f, ok
}

// DecodedValue interprets c.Value through the ControlFactory registered
// for c.OID, falling back to the opaque bytes with no factory registered.
func (c Control) DecodedValue() (any, error) {
	f, ok := LookupControlFactory(c.OID)
	if !ok {
		return c.Value, nil
	}
	return f.DecodeValue(c.Value)
}

func init() {
	RegisterControlFactory(OIDPagedResults, pagedResultsFactory{})
	RegisterControlFactory(OIDServerSideSortRequest, sortRequestFactory{})
	RegisterControlFactory(OIDServerSideSortResponse, sortResponseFactory{})
	RegisterControlFactory(OIDPersistentSearch, persistentSearchFactory{})
	RegisterControlFactory(OIDEntryChangeNotification, entryChangeNotificationFactory{})
	RegisterControlFactory(OIDManageDsaIT, noValueFactory{})
	RegisterControlFactory(OIDProxiedAuthorization, proxiedAuthorizationFactory{})
	RegisterControlFactory(OIDSubentries, booleanControlFactory{})
	RegisterControlFactory(OIDCascade, booleanControlFactory{})
}

// noValueFactory handles controls whose presence is the entire signal —
// ManageDsaIT carries no controlValue at all.
type noValueFactory struct{}

func (noValueFactory) DecodeValue([]byte) (any, error) { return nil, nil }

// booleanControlFactory handles controls whose value is a single BER
// BOOLEAN — Subentries and Cascade.
type booleanControlFactory struct{}

func (booleanControlFactory) DecodeValue(value []byte) (any, error) {
	if len(value) == 0 {
		return false, nil
	}
	t, err := readTLV(value)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	return ber.DecodeBoolean(t.value)
}

func encodeBooleanControlValue(v bool) []byte {
	buf := ber.NewAsn1Buffer(8)
	buf.EncodeBoolean(v)
	return buf.Bytes()
}

// proxiedAuthorizationFactory handles the Proxied Authorization v2
// control (RFC 4370): ProxyAuthzControlValue ::= OCTET STRING, the raw
// authzId with no further BER wrapping.
type proxiedAuthorizationFactory struct{}

func (proxiedAuthorizationFactory) DecodeValue(value []byte) (any, error) {
	return string(value), nil
}

// PagedResultsControlValue is the Simple Paged Results Control value, per
// RFC 2696:
// realSearchControlValue ::= SEQUENCE {
//
//	size            INTEGER (0..maxInt),
//	cookie          OCTET STRING
//
// }
type PagedResultsControlValue struct {
	// Size is the requested page size (client) or the estimated total
	// result count (server); 0 when the server does not estimate.
	Size   int32
	Cookie []byte
}

type pagedResultsFactory struct{}

func (pagedResultsFactory) DecodeValue(value []byte) (any, error) {
	v := &PagedResultsControlValue{}
	if len(value) == 0 {
		return v, nil
	}
	outer, err := readTLV(value)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	sizeTLV, err := readTLV(outer.value)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	size, err := ber.DecodeInteger(sizeTLV.value)
	if err != nil {
		return nil, err
	}
	v.Size = int32(size)

	cookieTLV, err := readTLV(outer.value[sizeTLV.consumed:])
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	v.Cookie = cookieTLV.value
	return v, nil
}

// EncodePagedResultsControlValue encodes v as a control's Value bytes.
func EncodePagedResultsControlValue(v *PagedResultsControlValue) []byte {
	buf := ber.NewAsn1Buffer(32)
	start := buf.Position()
	buf.EncodeOctetString(v.Cookie)
	buf.EncodeInteger(int64(v.Size))
	buf.EndSequence(start)
	return buf.Bytes()
}

// NewPagedResultsControl builds the Control carrying a paged-results
// request or response for the given page size and cookie.
func NewPagedResultsControl(size int32, cookie []byte, critical bool) Control {
	return Control{
		OID:         OIDPagedResults,
		Criticality: critical,
		Value:       EncodePagedResultsControlValue(&PagedResultsControlValue{Size: size, Cookie: cookie}),
	}
}

// SortKey is one key of a server-side sort request, per RFC 2891:
// SortKeyList ::= SEQUENCE OF SEQUENCE {
//
//	attributeType   AttributeDescription,
//	orderingRule    [0] MatchingRuleId OPTIONAL,
//	reverseOrder    [1] BOOLEAN DEFAULT FALSE
//
// }
type SortKey struct {
	Attribute    string
	OrderingRule string
	Reverse      bool
}

// SortRequestControlValue is the Server-Side Sort Request Control value.
type SortRequestControlValue struct {
	Keys []SortKey
}

type sortRequestFactory struct{}

const (
	tagSortOrderingRule = 0
	tagSortReverseOrder = 1
)

func (sortRequestFactory) DecodeValue(value []byte) (any, error) {
	v := &SortRequestControlValue{}
	outer, err := readTLV(value)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	rest := outer.value
	for len(rest) > 0 {
		keyTLV, err := readTLV(rest)
		if err != nil {
			return nil, ErrInvalidControlValue
		}
		key, err := decodeSortKey(keyTLV.value)
		if err != nil {
			return nil, err
		}
		v.Keys = append(v.Keys, key)
		rest = rest[keyTLV.consumed:]
	}
	return v, nil
}

func decodeSortKey(data []byte) (SortKey, error) {
	var key SortKey
	attrTLV, err := readTLV(data)
	if err != nil {
		return key, ErrInvalidControlValue
	}
	key.Attribute = string(attrTLV.value)
	rest := data[attrTLV.consumed:]

	if len(rest) > 0 {
		t, err := readTLV(rest)
		if err == nil && t.tag == byte(ber.ClassContextSpecific|ber.TypePrimitive|tagSortOrderingRule) {
			key.OrderingRule = string(t.value)
			rest = rest[t.consumed:]
		}
	}
	if len(rest) > 0 {
		t, err := readTLV(rest)
		if err == nil && t.tag == byte(ber.ClassContextSpecific|ber.TypePrimitive|tagSortReverseOrder) {
			reverse, err := ber.DecodeBoolean(t.value)
			if err != nil {
				return key, err
			}
			key.Reverse = reverse
		}
	}
	return key, nil
}

// EncodeSortRequestControlValue encodes v as a control's Value bytes.
func EncodeSortRequestControlValue(v *SortRequestControlValue) []byte {
	buf := ber.NewAsn1Buffer(64)
	start := buf.Position()
	for i := len(v.Keys) - 1; i >= 0; i-- {
		encodeSortKey(buf, v.Keys[i])
	}
	buf.EndSequence(start)
	return buf.Bytes()
}

func encodeSortKey(buf *ber.Asn1Buffer, key SortKey) {
	start := buf.Position()
	if key.Reverse {
		buf.EncodeTaggedOctetString([]byte{0xFF}, byte(ber.ClassContextSpecific|ber.TypePrimitive|tagSortReverseOrder))
	}
	if key.OrderingRule != "" {
		buf.EncodeTaggedOctetString([]byte(key.OrderingRule), byte(ber.ClassContextSpecific|ber.TypePrimitive|tagSortOrderingRule))
	}
	buf.EncodeOctetString([]byte(key.Attribute))
	buf.EndSequence(start)
}

// NewSortRequestControl builds the Control carrying a server-side sort
// request for the given keys.
func NewSortRequestControl(critical bool, keys ...SortKey) Control {
	return Control{
		OID:         OIDServerSideSortRequest,
		Criticality: critical,
		Value:       EncodeSortRequestControlValue(&SortRequestControlValue{Keys: keys}),
	}
}

// SortResponseControlValue is the Server-Side Sort Response Control
// value, per RFC 2891:
// SortResult ::= SEQUENCE {
//
//	sortResult       ENUMERATED { ... },
//	attributeType    [0] AttributeDescription OPTIONAL
//
// }
type SortResponseControlValue struct {
	Result        int
	AttributeType string
}

// tagSortResponseAttributeType is the context tag of SortResult's optional
// attributeType field (RFC 2891 §3).
const tagSortResponseAttributeType = 0

type sortResponseFactory struct{}

func (sortResponseFactory) DecodeValue(value []byte) (any, error) {
	v := &SortResponseControlValue{}
	outer, err := readTLV(value)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	rest := outer.value
	resultTLV, err := readTLV(rest)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	result, err := ber.DecodeEnumerated(resultTLV.value)
	if err != nil {
		return nil, err
	}
	v.Result = int(result)

	if rest = rest[resultTLV.consumed:]; len(rest) > 0 {
		attrTLV, err := readTLV(rest)
		if err != nil {
			return nil, ErrInvalidControlValue
		}
		if attrTLV.tag != byte(ber.ClassContextSpecific|ber.TypePrimitive|tagSortResponseAttributeType) {
			return nil, ErrInvalidControlValue
		}
		v.AttributeType = string(attrTLV.value)
	}
	return v, nil
}

// EncodeSortResponseControlValue encodes v as a control's Value bytes.
func EncodeSortResponseControlValue(v *SortResponseControlValue) []byte {
	buf := ber.NewAsn1Buffer(32)
	start := buf.Position()
	if v.AttributeType != "" {
		buf.EncodeTaggedOctetString([]byte(v.AttributeType), byte(ber.ClassContextSpecific|ber.TypePrimitive|tagSortResponseAttributeType))
	}
	buf.EncodeEnumerated(int64(v.Result))
	buf.EndSequence(start)
	return buf.Bytes()
}

// NewSortResponseControl builds the Control carrying a server-side sort
// response for the given result code.
func NewSortResponseControl(result int, attributeType string) Control {
	return Control{
		OID:   OIDServerSideSortResponse,
		Value: EncodeSortResponseControlValue(&SortResponseControlValue{Result: result, AttributeType: attributeType}),
	}
}

// Persistent Search change-type bits, per draft-ietf-ldapext-psearch.
const (
	ChangeTypeAdd    = 1
	ChangeTypeDelete = 2
	ChangeTypeModify = 4
	ChangeTypeModDN  = 8
)

// PersistentSearchControlValue is the Persistent Search Control value:
// PersistentSearch ::= SEQUENCE {
//
//	changeTypes INTEGER,
//	changesOnly BOOLEAN,
//	returnECs   BOOLEAN
//
// }
type PersistentSearchControlValue struct {
	ChangeTypes int
	ChangesOnly bool
	ReturnECs   bool
}

type persistentSearchFactory struct{}

func (persistentSearchFactory) DecodeValue(value []byte) (any, error) {
	v := &PersistentSearchControlValue{}
	outer, err := readTLV(value)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	rest := outer.value

	changeTLV, err := readTLV(rest)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	changeTypes, err := ber.DecodeInteger(changeTLV.value)
	if err != nil {
		return nil, err
	}
	v.ChangeTypes = int(changeTypes)
	rest = rest[changeTLV.consumed:]

	changesOnlyTLV, err := readTLV(rest)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	changesOnly, err := ber.DecodeBoolean(changesOnlyTLV.value)
	if err != nil {
		return nil, err
	}
	v.ChangesOnly = changesOnly
	rest = rest[changesOnlyTLV.consumed:]

	returnECsTLV, err := readTLV(rest)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	returnECs, err := ber.DecodeBoolean(returnECsTLV.value)
	if err != nil {
		return nil, err
	}
	v.ReturnECs = returnECs

	return v, nil
}

// EncodePersistentSearchControlValue encodes v as a control's Value bytes.
func EncodePersistentSearchControlValue(v *PersistentSearchControlValue) []byte {
	buf := ber.NewAsn1Buffer(16)
	start := buf.Position()
	buf.EncodeBoolean(v.ReturnECs)
	buf.EncodeBoolean(v.ChangesOnly)
	buf.EncodeInteger(int64(v.ChangeTypes))
	buf.EndSequence(start)
	return buf.Bytes()
}

// NewPersistentSearchControl builds the Control carrying a persistent
// search request.
func NewPersistentSearchControl(changeTypes int, changesOnly, returnECs, critical bool) Control {
	return Control{
		OID:         OIDPersistentSearch,
		Criticality: critical,
		Value: EncodePersistentSearchControlValue(&PersistentSearchControlValue{
			ChangeTypes: changeTypes,
			ChangesOnly: changesOnly,
			ReturnECs:   returnECs,
		}),
	}
}

// EntryChangeNotificationValue is the Entry Change Notification control
// value sent alongside a SearchResultEntry during a persistent search:
// EntryChangeNotification ::= SEQUENCE {
//
//	changeType    ENUMERATED { add(1), delete(2), modify(4), modDN(8) },
//	previousDN    LDAPDN OPTIONAL,
//	changeNumber  INTEGER OPTIONAL
//
// }
type EntryChangeNotificationValue struct {
	ChangeType   int
	PreviousDN   string
	ChangeNumber int64
}

type entryChangeNotificationFactory struct{}

func (entryChangeNotificationFactory) DecodeValue(value []byte) (any, error) {
	v := &EntryChangeNotificationValue{}
	outer, err := readTLV(value)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	rest := outer.value

	changeTLV, err := readTLV(rest)
	if err != nil {
		return nil, ErrInvalidControlValue
	}
	changeType, err := ber.DecodeEnumerated(changeTLV.value)
	if err != nil {
		return nil, err
	}
	v.ChangeType = int(changeType)
	rest = rest[changeTLV.consumed:]

	if len(rest) > 0 {
		t, err := readTLV(rest)
		if err != nil {
			return nil, ErrInvalidControlValue
		}
		if t.tag == byte(ber.ClassUniversal|ber.TypePrimitive|ber.TagOctetString) {
			v.PreviousDN = string(t.value)
			rest = rest[t.consumed:]
		}
	}
	if len(rest) > 0 {
		t, err := readTLV(rest)
		if err != nil {
			return nil, ErrInvalidControlValue
		}
		num, err := ber.DecodeInteger(t.value)
		if err != nil {
			return nil, err
		}
		v.ChangeNumber = num
	}

	return v, nil
}

// EncodeEntryChangeNotificationValue encodes v as a control's Value bytes.
func EncodeEntryChangeNotificationValue(v *EntryChangeNotificationValue) []byte {
	buf := ber.NewAsn1Buffer(32)
	start := buf.Position()
	if v.ChangeNumber != 0 {
		buf.EncodeInteger(v.ChangeNumber)
	}
	if v.PreviousDN != "" {
		buf.EncodeOctetString([]byte(v.PreviousDN))
	}
	buf.EncodeEnumerated(int64(v.ChangeType))
	buf.EndSequence(start)
	return buf.Bytes()
}

// NewEntryChangeNotificationControl builds the Control carrying an Entry
// Change Notification for a persistent search update.
func NewEntryChangeNotificationControl(v *EntryChangeNotificationValue) Control {
	return Control{
		OID:   OIDEntryChangeNotification,
		Value: EncodeEntryChangeNotificationValue(v),
	}
}

// NewManageDsaITControl builds the Control that suppresses alias and
// referral processing for the operation it rides along with.
func NewManageDsaITControl(critical bool) Control {
	return Control{OID: OIDManageDsaIT, Criticality: critical}
}

// NewProxiedAuthorizationControl builds the Control that asks the server
// to evaluate the operation as authzID instead of the bound identity.
func NewProxiedAuthorizationControl(authzID string) Control {
	return Control{OID: OIDProxiedAuthorization, Criticality: true, Value: []byte(authzID)}
}

// NewSubentriesControl builds the Control that asks the server to return
// (visible=true) or suppress (visible=false) LDAP subentries.
func NewSubentriesControl(visible bool) Control {
	return Control{OID: OIDSubentries, Value: encodeBooleanControlValue(visible)}
}

// NewCascadeControl builds the Control that asks a subentry-governed
// operation to apply to every entry the subentry administers.
func NewCascadeControl(cascade bool) Control {
	return Control{OID: OIDCascade, Value: encodeBooleanControlValue(cascade)}
}
