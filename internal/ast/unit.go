package ast

// UnitKind enumerates translation unit kinds.
type UnitKind uint8

const (
	// UnitLibrary is a library unit with no implicit entry point.
	UnitLibrary UnitKind = iota
	// UnitMain is an executable unit with an implicit top-level context.
	UnitMain
	// UnitRepl is an interactive unit; like UnitMain it owns an
	// implicit top-level context.
	UnitRepl
)

func (k UnitKind) String() string {
	switch k {
	case UnitLibrary:
		return "library"
	case UnitMain:
		return "main"
	case UnitRepl:
		return "repl"
	default:
		return "unknown"
	}
}

// TranslationUnit is the whole input to one lowering pass: resolved
// top-level declarations in source order, plus top-level statements
// for main/repl units.
type TranslationUnit struct {
	Kind  UnitKind
	Name  string
	Decls []*Decl

	// TopLevel holds statements executed by the implicit top-level
	// context. Only legal for UnitMain and UnitRepl.
	TopLevel []Stmt
}
