package ber

import (
	"bytes"
	"testing"
)

// A minimal grammar over a tiny envelope: SEQUENCE { INTEGER, INTEGER }
// — enough to exercise the state machine, chunked-input invariance, and
// expected-length conservation without pulling in the ldapmsg package.
func twoIntSequenceGrammar() *Grammar {
	const (
		stStart = iota
		stWantFirst
		stWantSecond
		stDone
	)
	g := NewGrammar("two-int-sequence", []GrammarState{
		{Name: "start"},
		{Name: "want-first"},
		{Name: "want-second"},
		{Name: "done"},
	}, stStart)

	seqTag := ClassUniversal | TypeConstructed | TagSequence
	g.AddTransition(stStart, byte(seqTag), Transition{ToState: stWantFirst})
	g.AddTransition(stWantFirst, TagInteger, Transition{
		ToState: stWantSecond,
		Action: func(c *Container) error {
			n, err := DecodeInteger(c.CurrentValue())
			if err != nil {
				return err
			}
			*(c.Message.(*[]int64)) = append(*(c.Message.(*[]int64)), n)
			return nil
		},
	})
	g.AddTransition(stWantSecond, TagInteger, Transition{
		ToState:  stDone,
		FollowUp: FollowUpOptional,
		Action: func(c *Container) error {
			n, err := DecodeInteger(c.CurrentValue())
			if err != nil {
				return err
			}
			*(c.Message.(*[]int64)) = append(*(c.Message.(*[]int64)), n)
			return nil
		},
	})
	return g
}

func encodeTwoIntSequence(a, b int64) []byte {
	buf := NewAsn1Buffer(16)
	start := buf.BeginSequence()
	buf.EncodeInteger(b)
	buf.EncodeInteger(a)
	buf.EndSequence(start)
	return buf.Bytes()
}

func TestDecodeTwoIntSequenceSingleShot(t *testing.T) {
	pdu := encodeTwoIntSequence(5, 7)
	g := twoIntSequenceGrammar()
	var got []int64
	c := NewContainer(g, DefaultOptions())
	c.Message = &got
	outcome, err := c.Decode(pdu)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if outcome != OutcomePDUComplete {
		t.Fatalf("want PDUComplete, got %v", outcome)
	}
	if len(got) != 2 || got[0] != 5 || got[1] != 7 {
		t.Fatalf("got %v, want [5 7]", got)
	}
}

func TestDecodeTwoIntSequenceChunked(t *testing.T) {
	pdu := encodeTwoIntSequence(5, 7)
	for split := 0; split <= len(pdu); split++ {
		g := twoIntSequenceGrammar()
		var got []int64
		c := NewContainer(g, DefaultOptions())
		c.Message = &got

		outcome, err := c.Decode(pdu[:split])
		if err != nil {
			t.Fatalf("split %d: first chunk failed: %v", split, err)
		}
		if outcome == OutcomePDUComplete && split < len(pdu) {
			t.Fatalf("split %d: completed early", split)
		}
		if outcome != OutcomePDUComplete {
			outcome, err = c.Decode(pdu[split:])
			if err != nil {
				t.Fatalf("split %d: second chunk failed: %v", split, err)
			}
		}
		if outcome != OutcomePDUComplete {
			t.Fatalf("split %d: never completed", split)
		}
		if len(got) != 2 || got[0] != 5 || got[1] != 7 {
			t.Fatalf("split %d: got %v, want [5 7]", split, got)
		}
	}
}

func TestDecodeRejectsIndefiniteLengthByDefault(t *testing.T) {
	g := twoIntSequenceGrammar()
	var got []int64
	c := NewContainer(g, DefaultOptions())
	c.Message = &got
	_, err := c.Decode([]byte{byte(ClassUniversal | TypeConstructed | TagSequence), 0x80})
	if err == nil {
		t.Fatal("want error for indefinite length")
	}
	var de *DecodeError
	if !bytesErrorsAs(err, &de) {
		t.Fatalf("want *DecodeError, got %T", err)
	}
	if de.Kind != KindMalformedBER {
		t.Fatalf("want KindMalformedBER, got %v", de.Kind)
	}
}

func TestDecodeRejectsPDUAboveMaxSize(t *testing.T) {
	pdu := encodeTwoIntSequence(5, 7)
	g := twoIntSequenceGrammar()
	var got []int64
	opts := DefaultOptions()
	// The limit applies to a TLV's declared length: the root SEQUENCE
	// declares 6 content bytes here.
	opts.MaxPDUSize = int(pdu[1]) - 1
	c := NewContainer(g, opts)
	c.Message = &got
	_, err := c.Decode(pdu)
	if err == nil {
		t.Fatal("want pdu-size error")
	}
}

func bytesErrorsAs(err error, target **DecodeError) bool {
	de, ok := err.(*DecodeError)
	if !ok {
		return false
	}
	*target = de
	return true
}

func TestAsn1BufferLengthPrefixPosition(t *testing.T) {
	buf := NewAsn1Buffer(4) // force a grow
	start := buf.BeginSequence()
	buf.EncodeOctetString(bytes.Repeat([]byte{'x'}, 200))
	buf.EndSequence(start)
	out := buf.Bytes()
	if out[0] != byte(ClassUniversal|TypeConstructed|TagSequence) {
		t.Fatalf("want sequence tag, got %#x", out[0])
	}
	_, consumed, err := DecodeLength(out[1:])
	if err != nil {
		t.Fatalf("DecodeLength: %v", err)
	}
	if consumed != 2 { // 0x81 + 1 length byte for a 203-byte body
		t.Fatalf("want 2 length octets, got %d", consumed)
	}
}
