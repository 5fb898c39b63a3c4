package ir

// Module is the completed output of one lowering pass.
//
// Funcs maps each emission key to its unique IR function; Order
// preserves emission order so dumps and snapshots stay deterministic.
// TopLevel holds the implicit top-level function for main/repl units
// and is nil for libraries.
type Module struct {
	Name        string
	HasTopLevel bool
	TopLevel    *Func

	Funcs map[Key]*Func
	Order []Key
}

// Lookup returns the emitted function for a key.
func (m *Module) Lookup(key Key) (*Func, bool) {
	if m == nil {
		return nil, false
	}
	f, ok := m.Funcs[key]
	return f, ok
}
