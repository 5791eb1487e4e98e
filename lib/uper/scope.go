package uper

// The scope tracks per-container bookkeeping while a SEQUENCE body runs:
// which presence-bit run is active and how field-visit calls consume it.
// Exactly one scope is active per Writer/Reader; entering a nested
// container saves the current one and restores it on exit, so the state
// machine never needs a heap-allocated stack.
//
// Field calls are strictly sequential, one per declared field in schema
// order, never keyed by field identity. The per-call transition:
//
//	none                -> encode directly
//	optBitField         -> OPTIONAL fields consume one presence bit
//	allBitField         -> every field consumes one presence bit and is
//	                       open-type wrapped (the extension region)
//	extensibleSequence  -> behaves as optBitField for the root fields,
//	                       then fires the extension-boundary transition
//	                       exactly once and becomes allBitField
type scopeKind int

const (
	scopeNone scopeKind = iota
	scopeOptBitField
	scopeAllBitField
	scopeExtensibleSequence
)

// bitRun is a reserved run of presence bits. The writer reserves the bits
// up front and records their buffer position so each take patches the
// right bit in place; the reader consumes the bits up front and replays
// them from memory.
type bitRun struct {
	pos  uint64 // writer: bit position of the first reserved bit
	bits []bool // reader: presence bits in field order
	size int
	used int
}

// take consumes the next slot of the run.
func (r *bitRun) take() (int, error) {
	if r.used >= r.size {
		return 0, ErrOptFlagsExhausted.New("presence run of %d bits already consumed", r.size)
	}
	slot := r.used
	r.used++
	return slot, nil
}

type scope struct {
	kind scopeKind
	run  bitRun

	// Extension-boundary countdown for extensibleSequence: the number of
	// root-field calls left before the boundary fires.
	callsUntilExt int
	// Declared extension fields past the boundary.
	extFields int
}

// slotAction is the consumed-bit decision for one field-visit call.
type slotAction int

const (
	// slotPlain encodes the field directly with no presence bit.
	slotPlain slotAction = iota
	// slotPresence consumes one presence bit from the active run.
	slotPresence
	// slotExtension fires the extension-boundary transition before the
	// field is processed.
	slotExtension
)

// slot advances the state machine by one field-visit call and reports what
// the call consumes. The extensibleSequence boundary is signalled to the
// caller, which performs the wire work (extension count, fresh presence
// run) and then re-enters as allBitField.
func (s *scope) slot(optional bool) slotAction {
	switch s.kind {
	case scopeOptBitField:
		if optional {
			return slotPresence
		}
	case scopeAllBitField:
		return slotPresence
	case scopeExtensibleSequence:
		if s.callsUntilExt == 0 {
			return slotExtension
		}
		s.callsUntilExt--
		if optional {
			return slotPresence
		}
	}
	return slotPlain
}

// wrapped reports whether fields under this scope are open-type wrapped.
// Only the extension region wraps: unaware decoders must be able to skip
// fields they do not know.
func (s *scope) wrapped() bool {
	return s.kind == scopeAllBitField
}
