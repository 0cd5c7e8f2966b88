package ber

// FollowUp tells the TLV decoder whether reaching a transition's
// destination state is itself a valid point for the PDU to end.
type FollowUp int

const (
	FollowUpMandatory FollowUp = iota
	FollowUpOptional
)

// Action is a pure function over the in-progress container. It may read
// the current TLV and mutate the message the container is building; a
// returned error aborts decoding of the whole PDU.
type Action func(c *Container) error

// Transition is one cell of a Grammar's dispatch table.
type Transition struct {
	FromState   int
	ToState     int
	ExpectedTag byte
	Action      Action
	FollowUp    FollowUp
}

// GrammarState names one state of a particular grammar — distinct from
// the TLV decoder's own States: a grammar state describes where in the
// message we are (e.g. "expect messageID next"), not tag/length/value
// progress on the current TLV. Whether the PDU may legitimately end in a
// given state is not a property of the state itself — see Transition.FollowUp.
type GrammarState struct {
	Name string
}

// Grammar is a named, immutable table of transitions, looked up in O(1)
// by (state ordinal, tag byte). A Grammar is safe to share across many
// concurrently-decoding Containers; Containers themselves are not.
type Grammar struct {
	Name       string
	States     []GrammarState
	StartState int

	table [][256]*Transition
}

// NewGrammar builds a grammar over the given states with an empty
// dispatch table, ready for AddTransition calls.
func NewGrammar(name string, states []GrammarState, startState int) *Grammar {
	g := &Grammar{Name: name, States: states, StartState: startState}
	g.table = make([][256]*Transition, len(states))
	return g
}

// AddTransition registers the transition fired when the grammar is in
// state `from` and the completed TLV's tag byte is `tag`.
func (g *Grammar) AddTransition(from int, tag byte, t Transition) {
	t.FromState = from
	t.ExpectedTag = tag
	cell := t
	g.table[from][tag] = &cell
}

// Lookup returns the transition for (state, tag), or nil if the grammar
// has no entry there.
func (g *Grammar) Lookup(state int, tag byte) *Transition {
	if state < 0 || state >= len(g.table) {
		return nil
	}
	return g.table[state][tag]
}

// StateName returns the human-readable name of a grammar state ordinal,
// or "?" if out of range — used only for diagnostics.
func (g *Grammar) StateName(state int) string {
	if state < 0 || state >= len(g.States) {
		return "?"
	}
	return g.States[state].Name
}
