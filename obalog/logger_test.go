package obalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/oba-ldap/ldapwire/ber"
)

func TestJSONSinkEmitsFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(Config{Level: "debug", Output: &buf})

	var trace ber.TraceSink = sink
	trace.Event("warn", "unexpected tag", map[string]any{"offset": 12, "tag": "0x04"})

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v (line: %s)", err, buf.String())
	}
	if decoded["level"] != "warn" || decoded["message"] != "unexpected tag" {
		t.Fatalf("got %+v", decoded)
	}
	if decoded["offset"].(float64) != 12 {
		t.Fatalf("offset = %v", decoded["offset"])
	}
}

func TestWithDecodeIDAttachesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(Config{Level: "debug", Output: &buf}).WithDecodeID()

	sink.Event("info", "pdu complete", nil)

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	id, ok := decoded["decode_id"].(string)
	if !ok || id == "" {
		t.Fatalf("decode_id = %v", decoded["decode_id"])
	}
	if strings.Count(id, "-") != 4 {
		t.Fatalf("decode_id %q does not look like a UUID", id)
	}
}

func TestNopSinkDiscardsEverything(t *testing.T) {
	sink := NewNopSink()
	sink.Event("error", "should not appear anywhere", map[string]any{"x": 1})
}

func TestWithFieldsPersistsAcrossEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(Config{Level: "debug", Output: &buf}).WithFields(map[string]any{"conn": "10.0.0.1:389"})

	sink.Event("info", "bind received", nil)

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["conn"] != "10.0.0.1:389" {
		t.Fatalf("got %+v", decoded)
	}
}
