package ir

import (
	"fmt"

	"sable/internal/ast"
)

// Role distinguishes the IR functions a single declaration can
// produce. A class constructor yields an allocator and an
// initializer; a nominal type yields a destructor.
type Role uint8

const (
	// RolePlain is the default entry point of a declaration.
	RolePlain Role = iota
	// RoleInitializer initializes the fields of an already-allocated
	// class instance.
	RoleInitializer
	// RoleDestructor tears down a class instance and its members.
	RoleDestructor
	// RoleAllocator allocates a class instance and delegates to the
	// initializer.
	RoleAllocator
)

func (r Role) String() string {
	switch r {
	case RolePlain:
		return "plain"
	case RoleInitializer:
		return "initializer"
	case RoleDestructor:
		return "destructor"
	case RoleAllocator:
		return "allocator"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

// Key identifies which IR function a declaration maps to. At most one
// IR function ever exists per key; duplicate emission is a bug in the
// orchestrator, not a valid program state.
type Key struct {
	Decl ast.DeclID
	Role Role
}

func (k Key) String() string {
	if k.Role == RolePlain {
		return fmt.Sprintf("decl#%d", k.Decl)
	}
	return fmt.Sprintf("decl#%d.%s", k.Decl, k.Role)
}
