package lang

import (
	"errors"
	"log/slog"
)

// Analyze performs static checks on a parsed program without executing
// it: duplicate declarations, references to names that no declaration
// provides, calls to unknown functions, and call argument sets that do
// not match the callee's parameters. Every finding is reported; the
// result joins them all.
//
// The pass mirrors the runtime scoping rules. Function declarations are
// visible everywhere regardless of position. Top-level variables must be
// declared before the statement that references them; function bodies
// may reference any top-level variable, since the call site is unknown
// statically.
func Analyze(prog *Program) error {
	a := &analyzer{
		funcs:   make(map[string]*FunctionDecl),
		globals: make(map[string]struct{}),
	}

	for _, spec := range prog.Includes() {
		// Included bindings may be either variables or functions; the
		// alias satisfies both namespaces for analysis.
		a.globals[spec.Alias] = struct{}{}
		a.aliases = append(a.aliases, spec.Alias)
	}

	for _, decl := range prog.Functions() {
		a.funcs[decl.Name] = decl
	}

	// First pass: collect every top-level variable so function bodies
	// can be checked against the complete global namespace.
	for _, stmt := range prog.Statements {
		if init, ok := stmt.(*VariableInit); ok {
			if _, dup := a.globals[init.Name]; dup {
				a.report(ErrDuplicateVariable.
					WithPosition(init.Pos()).
					With(slog.String("name", init.Name)))

				continue
			}

			a.globals[init.Name] = struct{}{}
		}
	}

	// Second pass: order-sensitive checks at the top level.
	seen := make(map[string]struct{})
	for _, alias := range a.aliases {
		seen[alias] = struct{}{}
	}

	for _, stmt := range prog.Statements {
		a.checkStatement(stmt, seen, nil)
	}

	return errors.Join(a.errs...)
}

type analyzer struct {
	funcs   map[string]*FunctionDecl
	globals map[string]struct{}
	aliases []string
	errs    []error
}

func (a *analyzer) report(err error) {
	a.errs = append(a.errs, err)
}

// checkStatement validates one statement. seen holds the names visible
// at this point in textual order; locals is non-nil inside a function
// body and holds its parameter and local declarations.
func (a *analyzer) checkStatement(
	stmt Statement,
	seen map[string]struct{},
	locals map[string]struct{},
) {
	switch s := stmt.(type) {
	case *VariableInit:
		if s.Init != nil {
			a.checkExpression(s.Init, seen, locals)
		}

		if locals != nil {
			if _, dup := locals[s.Name]; dup {
				a.report(ErrDuplicateVariable.
					WithPosition(s.Pos()).
					With(slog.String("name", s.Name)))

				return
			}

			locals[s.Name] = struct{}{}

			return
		}

		seen[s.Name] = struct{}{}

	case *VariableSet:
		a.checkExpression(s.Value, seen, locals)

		if !a.visible(s.Name, seen, locals) {
			a.report(ErrUndefinedVariable.
				WithPosition(s.Pos()).
				With(slog.String("name", s.Name)))
		}

	case *Log:
		for _, arg := range s.Args {
			a.checkExpression(arg, seen, locals)
		}

		a.checkExpression(s.Message, seen, locals)

	case *FunctionCall:
		a.checkCall(s, seen, locals)

	case *FunctionDecl:
		a.checkBody(s)

	case *Return:
		if s.Value != nil {
			a.checkExpression(s.Value, seen, locals)
		}
	}
}

// checkBody validates a function body in a scope of its parameters over
// the full global namespace.
func (a *analyzer) checkBody(decl *FunctionDecl) {
	locals := make(map[string]struct{}, len(decl.Params))

	for _, param := range decl.Params {
		if _, dup := locals[param.Name]; dup {
			a.report(ErrDuplicateVariable.
				WithPosition(decl.Pos()).
				With(
					slog.String("function", decl.Name),
					slog.String("name", param.Name),
				))

			continue
		}

		locals[param.Name] = struct{}{}
	}

	for _, stmt := range decl.Body {
		a.checkStatement(stmt, a.globals, locals)
	}
}

// checkCall validates a system.exec statement: the callee must be
// declared, and the named arguments must match its parameters exactly.
func (a *analyzer) checkCall(
	call *FunctionCall,
	seen map[string]struct{},
	locals map[string]struct{},
) {
	for _, arg := range call.Args {
		a.checkExpression(arg.Value, seen, locals)
	}

	fn, ok := a.funcs[call.Name]
	if !ok {
		// Included functions are opaque here; their parameter lists are
		// only known at resolution time.
		if _, included := a.globals[call.Name]; !included {
			a.report(ErrUndefinedFunction.
				WithPosition(call.Pos()).
				With(slog.String("name", call.Name)))
		}

		return
	}

	declared := make(map[string]struct{}, len(fn.Params))
	for _, param := range fn.Params {
		declared[param.Name] = struct{}{}
	}

	provided := make(map[string]struct{}, len(call.Args))

	for _, arg := range call.Args {
		provided[arg.Name] = struct{}{}

		if _, ok := declared[arg.Name]; !ok {
			a.report(ErrUnknownParameter.
				WithPosition(call.Pos()).
				With(
					slog.String("function", call.Name),
					slog.String("parameter", arg.Name),
				))
		}
	}

	for _, param := range fn.Params {
		if _, ok := provided[param.Name]; !ok {
			a.report(ErrArityMismatch.
				WithPosition(call.Pos()).
				With(
					slog.String("function", call.Name),
					slog.String("parameter", param.Name),
				))
		}
	}
}

func (a *analyzer) checkExpression(
	expr Expression,
	seen map[string]struct{},
	locals map[string]struct{},
) {
	switch e := expr.(type) {
	case *Ident:
		if !a.visible(e.Name, seen, locals) {
			a.report(ErrUndefinedVariable.
				WithPosition(e.Pos()).
				With(slog.String("name", e.Name)))
		}

	case *MemberAccess:
		if ident, ok := e.Base.(*Ident); ok {
			if !a.visible(ident.Name, seen, locals) {
				a.report(ErrUndefinedVariable.
					WithPosition(ident.Pos()).
					With(slog.String("name", ident.Name)))
			}

			return
		}

		a.report(ErrStaticShape.
			WithPosition(e.Pos()).
			With(slog.String("member", e.Member.String())))

	case *Binary:
		a.checkExpression(e.Left, seen, locals)
		a.checkExpression(e.Right, seen, locals)
	}
}

func (a *analyzer) visible(
	name string,
	seen map[string]struct{},
	locals map[string]struct{},
) bool {
	if locals != nil {
		if _, ok := locals[name]; ok {
			return true
		}
	}

	_, ok := seen[name]

	return ok
}
