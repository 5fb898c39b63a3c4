package ir

// Block is a straight-line instruction sequence ending in at most one
// terminator. A block whose terminator kind is TermNone is open.
type Block struct {
	ID     BlockID
	Instrs []Instr
	Term   Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
