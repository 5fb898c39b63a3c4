package ir

import "slices"

// cleanup is one scope-exit action. Cleanups live for the duration of
// the owning funcLowerer; there is no pop.
type cleanup interface {
	emit(l *funcLowerer)
}

// cleanupStack collects scope-exit actions in push order and emits
// them in reverse at every exit point.
type cleanupStack struct {
	stack []cleanup
}

func (s *cleanupStack) push(c cleanup) {
	s.stack = append(s.stack, c)
}

// emitAll emits every currently-stacked cleanup, most recently pushed
// first, against the current insertion point. The iteration works on
// a snapshot taken at call time, so cleanups pushed while emitting do
// not disturb it.
func (s *cleanupStack) emitAll(l *funcLowerer) {
	snap := slices.Clone(s.stack)
	for i := len(snap) - 1; i >= 0; i-- {
		snap[i].emit(l)
	}
}

// releaseCleanup releases a reference-semantics local when its scope
// exits.
type releaseCleanup struct {
	value Operand
}

func (c releaseCleanup) emit(l *funcLowerer) {
	l.emitNoValue(Instr{Kind: InstrRelease, Release: ReleaseInstr{Value: c.value}})
}
