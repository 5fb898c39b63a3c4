package ir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermUnreachable
)

type Terminator struct {
	Kind TermKind

	Return      ReturnTerm
	Unreachable struct{}
}

// ReturnTerm returns a value to the caller. Unit-resulting functions
// return a freshly constructed unit value rather than nothing, so
// every return carries an operand.
type ReturnTerm struct {
	Value Operand
}
