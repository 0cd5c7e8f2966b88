package ber

// State names a point in the TLV decoder's state machine.
type State int

const (
	StateTagStart State = iota
	StateLengthStart
	StateLengthPending
	StateLengthEnd
	StateValueStart
	StateValuePending
	StateTlvDone
	StateGrammarEnd
	StatePduDecoded
)

func (s State) String() string {
	switch s {
	case StateTagStart:
		return "TagStart"
	case StateLengthStart:
		return "LengthStart"
	case StateLengthPending:
		return "LengthPending"
	case StateLengthEnd:
		return "LengthEnd"
	case StateValueStart:
		return "ValueStart"
	case StateValuePending:
		return "ValuePending"
	case StateTlvDone:
		return "TlvDone"
	case StateGrammarEnd:
		return "GrammarEnd"
	case StatePduDecoded:
		return "PduDecoded"
	default:
		return "Unknown"
	}
}

// Outcome is what a single Decode call reports back to the caller.
type Outcome int

const (
	OutcomeMoreBytesWanted Outcome = iota
	OutcomePDUComplete
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoreBytesWanted:
		return "more-bytes-wanted"
	case OutcomePDUComplete:
		return "pdu-complete"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// TraceSink receives structured decode/encode diagnostics. Core packages
// depend only on this interface, never on a concrete logging library —
// package obalog adapts it to zerolog.
type TraceSink interface {
	Event(level string, msg string, fields map[string]any)
}

type nopSink struct{}

func (nopSink) Event(string, string, map[string]any) {}

// NopSink is a TraceSink that discards every event; the default for a
// Container that isn't given one explicitly.
var NopSink TraceSink = nopSink{}
