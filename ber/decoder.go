package ber

// tlvNode is one decoded TLV. Parent links are arena indices rather than
// pointers, so a container's whole TLV tree for one PDU lives in a single
// slice, is allocation-free to walk, and is trivially reusable across
// PDUs via Container.Clean.
type tlvNode struct {
	id             int
	tag            byte
	class          byte
	constructed    bool
	number         byte
	length         int
	lengthNbBytes  int
	expectedLength int // remaining bytes expected from children, constructed TLVs only
	value          []byte
	valueLen       int
	parent         int // arena index, -1 for the PDU root
}

// Container drives one Grammar over a byte stream. It holds the TLV
// decoder's own state, the grammar's current state, the TLV arena for
// the PDU in progress, and the typed Message the grammar's actions
// populate. A Container is single-threaded; the Grammar it references
// may be shared across many Containers.
type Container struct {
	Grammar *Grammar
	Options DecoderOptions
	Sink    TraceSink

	// Message is the typed value grammar actions populate. Actions
	// type-assert it to whatever concrete message struct the grammar
	// was built for.
	Message any

	tlvState     State
	grammarState int
	arena        []tlvNode
	current      int
	parent       int
	nextID       int

	lengthAcc       int
	lengthBytesRead int
	lengthNbBytes   int

	decodedBytes      int
	grammarEndAllowed bool
	gathering         bool

	lastTag byte
	// lastTransition is the transition most recently fired for any
	// TLV. Its FollowUp flag is what the PDU
	// completion check in the StateTlvDone case consults.
	lastTransition *Transition

	pending           []byte
	consumeForCurrent []byte
}

// NewContainer creates a Container ready to decode one PDU against
// grammar, honoring opts.
func NewContainer(grammar *Grammar, opts DecoderOptions) *Container {
	c := &Container{Grammar: grammar, Options: opts, Sink: NopSink}
	c.Clean()
	return c
}

// Clean resets the container to the grammar's start state for a fresh
// PDU, without reallocating the TLV arena's backing array.
func (c *Container) Clean() {
	c.tlvState = StateTagStart
	c.grammarState = c.Grammar.StartState
	c.arena = c.arena[:0]
	c.current = -1
	c.parent = -1
	c.nextID = 0
	c.lengthAcc = 0
	c.lengthBytesRead = 0
	c.lengthNbBytes = 0
	c.grammarEndAllowed = false
	c.gathering = false
	c.lastTag = 0
	c.lastTransition = nil
	c.consumeForCurrent = c.consumeForCurrent[:0]
	// c.pending is intentionally left alone: bytes left over after a
	// prior PDU belong to the next one.
}

// AllowGrammarEnd lets a grammar action declare that the PDU may
// legitimately end at the current point even though the transition
// just fired is not marked FollowUpOptional.
func (c *Container) AllowGrammarEnd() { c.grammarEndAllowed = true }

// SetGathering toggles whether constructed TLVs also accumulate their
// raw value bytes, instead of only being traversed structurally — used
// when a grammar wants to splice an already-decoded sub-structure's
// bytes verbatim (an extended operation's opaque value, for instance).
func (c *Container) SetGathering(v bool) { c.gathering = v }

// Rewind discards the TLV currently being processed and restores its
// consumed bytes to the front of the pending buffer, repositioning the
// decoder at TagStart — used by grammars that peek at a tag/length and
// decide the TLV belongs to a different alternative than the one first
// assumed.
func (c *Container) Rewind() {
	if len(c.consumeForCurrent) > 0 {
		restored := make([]byte, 0, len(c.consumeForCurrent)+len(c.pending))
		restored = append(restored, c.consumeForCurrent...)
		restored = append(restored, c.pending...)
		c.pending = restored
		c.consumeForCurrent = c.consumeForCurrent[:0]
	}
	if c.current >= 0 && c.current < len(c.arena) {
		c.arena = c.arena[:c.current]
	}
	c.current = -1
	c.tlvState = StateTagStart
}

// --- accessors used by grammar actions ---

// CurrentTag returns the tag byte of the TLV that just completed.
func (c *Container) CurrentTag() byte { return c.arena[c.current].tag }

// CurrentClass returns the tag class bits (ClassUniversal, ...) of the
// current TLV.
func (c *Container) CurrentClass() byte { return c.arena[c.current].class }

// CurrentNumber returns the tag number (low 5 bits) of the current TLV.
func (c *Container) CurrentNumber() byte { return c.arena[c.current].number }

// CurrentConstructed reports whether the current TLV is constructed.
func (c *Container) CurrentConstructed() bool { return c.arena[c.current].constructed }

// CurrentLength returns the declared length of the current TLV.
func (c *Container) CurrentLength() int { return c.arena[c.current].length }

// CurrentValue returns the raw value bytes of the current TLV. For a
// constructed TLV this is empty unless gathering was enabled while it
// was open.
func (c *Container) CurrentValue() []byte { return c.arena[c.current].value }

// CurrentID returns the current TLV's arena id, stable for the lifetime
// of the PDU decode.
func (c *Container) CurrentID() int { return c.arena[c.current].id }

// ParentConstructed reports whether there is an enclosing constructed
// TLV still open.
func (c *Container) ParentConstructed() bool { return c.parent >= 0 }

func (c *Container) fail(offset int, kind ErrorKind, msg string, err error) error {
	e := newDecodeError(offset, c.tlvState, c.lastTag, kind, msg, err)
	c.Sink.Event("error", msg, map[string]any{"offset": offset, "kind": kind.String(), "tag": c.lastTag})
	return e
}

// Decode feeds data into the container and drives the state machine as
// far as it can go. It returns OutcomeMoreBytesWanted when the current
// input slice is exhausted mid-PDU (the caller should call Decode again
// with the next chunk of the same stream), OutcomePDUComplete once the
// grammar has reached an accepting state with the root TLV fully
// closed, or OutcomeFatal with a non-nil error.
func (c *Container) Decode(data []byte) (Outcome, error) {
	if len(data) > 0 {
		c.pending = append(c.pending, data...)
	}

	for {
		switch c.tlvState {
		case StateTagStart:
			if len(c.pending) < 1 {
				return OutcomeMoreBytesWanted, nil
			}
			tagByte := c.pending[0]
			c.pending = c.pending[1:]
			c.consumeForCurrent = append(c.consumeForCurrent[:0], tagByte)
			c.decodedBytes++

			node := tlvNode{
				id:          c.nextID,
				tag:         tagByte,
				class:       tagByte & 0xC0,
				constructed: tagByte&TypeConstructed != 0,
				number:      tagByte &^ 0xE0,
				parent:      c.parent,
			}
			c.nextID++
			c.arena = append(c.arena, node)
			c.current = len(c.arena) - 1
			c.lastTag = tagByte
			c.tlvState = StateLengthStart

		case StateLengthStart:
			if len(c.pending) < 1 {
				return OutcomeMoreBytesWanted, nil
			}
			b := c.pending[0]
			c.pending = c.pending[1:]
			c.consumeForCurrent = append(c.consumeForCurrent, b)
			c.decodedBytes++

			if b&LengthLongFormBit == 0 {
				c.arena[c.current].length = int(b)
				c.arena[c.current].lengthNbBytes = 1
				c.tlvState = StateLengthEnd
				continue
			}
			if b == 0xFF {
				return OutcomeFatal, c.fail(c.decodedBytes, KindMalformedBER, "length extension byte reserved", ErrLengthExtensionReserved)
			}
			n := int(b &^ LengthLongFormBit)
			if n == 0 {
				// Indefinite-length decoding is not implemented: LDAP
				// servers never emit it, and DecoderOptions.IndefiniteLengthAllowed
				// exists only to match the external interface's documented
				// default-off switch (spec §9's Open Question resolution).
				return OutcomeFatal, c.fail(c.decodedBytes, KindMalformedBER, "indefinite length not supported", ErrIndefiniteLength)
			}
			if n > 4 || n > c.Options.maxLengthLength() {
				return OutcomeFatal, c.fail(c.decodedBytes, KindMalformedBER, "length field too long", ErrLengthOverflow)
			}
			c.lengthAcc = 0
			c.lengthBytesRead = 0
			c.lengthNbBytes = n
			c.arena[c.current].lengthNbBytes = 1 + n
			c.tlvState = StateLengthPending

		case StateLengthPending:
			for len(c.pending) > 0 && c.lengthBytesRead < c.lengthNbBytes {
				b := c.pending[0]
				c.pending = c.pending[1:]
				c.consumeForCurrent = append(c.consumeForCurrent, b)
				c.decodedBytes++

				next := c.lengthAcc<<8 | int(b)
				if next < 0 {
					return OutcomeFatal, c.fail(c.decodedBytes, KindPolicyViolation, "pdu too large", ErrPDUSizeExceeded)
				}
				c.lengthAcc = next
				c.lengthBytesRead++
			}
			if c.lengthBytesRead < c.lengthNbBytes {
				return OutcomeMoreBytesWanted, nil
			}
			c.arena[c.current].length = c.lengthAcc
			c.tlvState = StateLengthEnd

		case StateLengthEnd:
			node := &c.arena[c.current]
			if node.length > c.Options.maxPDUSize() {
				return OutcomeFatal, c.fail(c.decodedBytes, KindPolicyViolation, "pdu size exceeded", ErrPDUSizeExceeded)
			}
			size := 1 + node.lengthNbBytes + node.length
			if node.parent >= 0 {
				p := &c.arena[node.parent]
				if p.expectedLength < size {
					return OutcomeFatal, c.fail(c.decodedBytes, KindMalformedBER, "value length above expected length", ErrValueAboveExpectedLength)
				}
				p.expectedLength -= size
			}
			if node.constructed && node.length > 0 && !c.gathering {
				// Only open a nesting scope for children when we're
				// actually going to recurse into them structurally. A
				// gathering node consumes its whole value as one flat
				// blob (see StateValueStart) and already reported its
				// own total size to its real parent above, so it must
				// never become the current open parent itself — nothing
				// would ever drain its expectedLength back to zero, and
				// popClosedParents would get stuck, unable to return to
				// the enclosing scope for this node's next sibling.
				node.expectedLength = node.length
				c.parent = c.current
			}
			if node.length > 0 {
				c.tlvState = StateValueStart
			} else {
				c.tlvState = StateTlvDone
			}

		case StateValueStart:
			node := &c.arena[c.current]
			if node.constructed && !c.gathering {
				c.tlvState = StateTlvDone
				continue
			}
			node.value = make([]byte, node.length)
			node.valueLen = 0
			c.tlvState = StateValuePending

		case StateValuePending:
			node := &c.arena[c.current]
			need := node.length - node.valueLen
			if need > 0 {
				n := need
				if n > len(c.pending) {
					n = len(c.pending)
				}
				copy(node.value[node.valueLen:], c.pending[:n])
				c.consumeForCurrent = append(c.consumeForCurrent, c.pending[:n]...)
				c.pending = c.pending[n:]
				node.valueLen += n
				c.decodedBytes += n
			}
			if node.valueLen < node.length {
				return OutcomeMoreBytesWanted, nil
			}
			c.tlvState = StateTlvDone

		case StateTlvDone:
			if err := c.fireAction(); err != nil {
				return OutcomeFatal, err
			}
			c.consumeForCurrent = c.consumeForCurrent[:0]
			c.popClosedParents()

			// Popping back out to c.parent == -1 means every open
			// constructed scope has fully drained its expected
			// length, however many levels deep the TLV tree nests —
			// the finished TLV's own immediate parent index is not
			// part of this test: for anything but a bare unwrapped
			// top-level primitive, that index is the enclosing
			// SEQUENCE's arena slot, never -1, even once the whole
			// PDU is in fact done.
			rootClosed := c.parent == -1
			if rootClosed {
				followUpAllows := c.lastTransition != nil && c.lastTransition.FollowUp == FollowUpOptional
				if followUpAllows || c.grammarEndAllowed {
					c.tlvState = StatePduDecoded
					return OutcomePDUComplete, nil
				}
				return OutcomeFatal, c.fail(c.decodedBytes, KindGrammarFailure, "premature pdu end", ErrPrematurePDUEnd)
			}
			c.tlvState = StateTagStart

		case StatePduDecoded:
			return OutcomePDUComplete, nil
		}
	}
}

func (c *Container) popClosedParents() {
	for c.parent >= 0 && c.arena[c.parent].expectedLength == 0 {
		c.parent = c.arena[c.parent].parent
	}
}

func (c *Container) fireAction() error {
	tag := c.arena[c.current].tag
	t := c.Grammar.Lookup(c.grammarState, tag)
	if t == nil {
		return c.fail(c.decodedBytes, KindGrammarFailure, "no transition for tag in current grammar state", ErrNoTransitionForTag)
	}
	if t.Action != nil {
		if err := t.Action(c); err != nil {
			return c.fail(c.decodedBytes, KindGrammarFailure, "grammar action rejected tlv", err)
		}
	}
	c.grammarState = t.ToState
	c.lastTransition = t
	return nil
}

// Remaining reports the bytes the container is still holding that
// haven't been consumed — trailing bytes after PduDecoded, or whatever
// is buffered mid-PDU.
func (c *Container) Remaining() []byte { return c.pending }

// DiscardRemaining clears any buffered trailing bytes — call after
// OutcomePDUComplete when the caller is finished with this container and
// about to discard it or Clean it for reuse on an unrelated stream.
func (c *Container) DiscardRemaining() { c.pending = nil }
