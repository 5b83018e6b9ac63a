package lang

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strconv"
)

// Interp executes a parsed Program. It owns the global scope and the
// global function table; both persist across Run calls, so a single
// Interp can execute several programs against shared state.
//
// An Interp is not safe for concurrent use.
type Interp struct {
	cfg    options
	funcs  map[string]*Function
	global *Scope
}

// NewInterp creates an interpreter with an empty global scope and
// function table.
func NewInterp(opts ...Option) *Interp {
	return &Interp{
		cfg:    makeOptions(opts...),
		funcs:  make(map[string]*Function),
		global: NewScope(nil),
	}
}

// Eval parses and executes source in a fresh interpreter. It is the
// one-shot entry point; use NewInterp and Run to keep state between
// programs or to inspect globals afterward.
func Eval(ctx context.Context, source string, opts ...Option) (*Interp, error) {
	prog, err := Parse(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	in := NewInterp(opts...)
	if err := in.Run(ctx, prog); err != nil {
		return nil, err
	}

	return in, nil
}

// Global returns the value stored in a global variable.
func (in *Interp) Global(name string) (Value, bool) {
	v, ok := in.global.Lookup(name)
	if !ok {
		return Null(), false
	}

	return v.Value, true
}

// Function returns a registered function definition.
func (in *Interp) Function(name string) (*Function, bool) {
	fn, ok := in.funcs[name]

	return fn, ok
}

// Globals returns an iterator over every global variable and its stored
// value, in unspecified order.
func (in *Interp) Globals() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for name, v := range in.global.All() {
			if !yield(name, v.Value) {
				return
			}
		}
	}
}

// Run executes a program: includes are resolved and injected, function
// declarations are hoisted into the function table, then top-level
// statements execute in source order. The first failing statement
// terminates the run; statements already executed keep their effects.
func (in *Interp) Run(ctx context.Context, prog *Program) error {
	if err := in.resolveIncludes(ctx, prog); err != nil {
		return err
	}

	// Hoisting: every top-level declaration is registered before the
	// first statement runs, so calls may precede their declaration in
	// source order. Later declarations of the same name overwrite
	// earlier ones.
	for _, decl := range prog.Functions() {
		in.funcs[decl.Name] = &Function{
			Name:   decl.Name,
			Params: decl.Params,
			Body:   decl.Body,
		}
	}

	for _, stmt := range prog.Statements {
		if err := ctx.Err(); err != nil {
			return WrapError(err).WithPosition(stmt.Pos())
		}

		ret, err := in.exec(ctx, in.global, stmt)
		if err != nil {
			return err
		}

		// A top-level return halts the program; its value is discarded.
		if ret != nil {
			break
		}
	}

	return nil
}

// resolveIncludes materializes every include binding before execution.
// Any failure aborts the run with no statement executed.
func (in *Interp) resolveIncludes(ctx context.Context, prog *Program) error {
	specs := prog.Includes()
	if len(specs) == 0 {
		return nil
	}

	if in.cfg.resolver == nil {
		return ErrResolution.
			WithPosition(prog.Statements[0].Pos()).
			With(slog.String("reason", "no module resolver configured"))
	}

	for _, spec := range specs {
		v, err := in.cfg.resolver.Resolve(ctx, spec)
		if err != nil {
			return ErrResolution.
				Wrap(err).
				With(
					slog.String("name", spec.Remote),
					slog.String("from", spec.Source),
				)
		}

		if v.Kind == KindFunc && v.Fn != nil {
			in.funcs[spec.Alias] = v.Fn

			continue
		}

		if err := in.global.Declare(spec.Alias, tagFor(v.Kind), v); err != nil {
			return err
		}

		in.cfg.logger.TraceContext(ctx, "include bound",
			slog.String("alias", spec.Alias),
			slog.String("from", spec.Source))
	}

	return nil
}

// exec runs one statement in the given scope. A non-nil first result is
// the value of a return statement, propagated to halt the enclosing
// body.
func (in *Interp) exec(
	ctx context.Context,
	scope *Scope,
	stmt Statement,
) (*Value, error) {
	switch s := stmt.(type) {
	case *VariableInit:
		return nil, in.execInit(ctx, scope, s)

	case *VariableSet:
		return nil, in.execSet(ctx, scope, s)

	case *Log:
		return nil, in.execLog(ctx, scope, s)

	case *FunctionCall:
		_, err := in.call(ctx, scope, s)

		return nil, err

	case *Return:
		ret := Null()

		if s.Value != nil {
			v, err := in.eval(ctx, scope, s.Value)
			if err != nil {
				return nil, err
			}

			ret = v
		}

		return &ret, nil

	case *FunctionDecl, *Include:
		// Hoisted and resolved before execution; no runtime effect.
		return nil, nil

	default:
		return nil, ErrStaticShape.WithPosition(stmt.Pos())
	}
}

func (in *Interp) execInit(
	ctx context.Context,
	scope *Scope,
	stmt *VariableInit,
) error {
	v := Null()

	if stmt.Init != nil {
		init, err := in.eval(ctx, scope, stmt.Init)
		if err != nil {
			return err
		}

		v = init
	}

	if err := scope.Declare(stmt.Name, stmt.Type, v); err != nil {
		return attachPos(err, stmt.Pos())
	}

	in.cfg.logger.TraceContext(ctx, "variable declared",
		slog.String("name", stmt.Name),
		slog.String("datatype", stmt.Type.String()))

	return nil
}

func (in *Interp) execSet(
	ctx context.Context,
	scope *Scope,
	stmt *VariableSet,
) error {
	v, err := in.eval(ctx, scope, stmt.Value)
	if err != nil {
		return err
	}

	if err := scope.Set(stmt.Name, v); err != nil {
		return attachPos(err, stmt.Pos())
	}

	return nil
}

func (in *Interp) execLog(
	ctx context.Context,
	scope *Scope,
	stmt *Log,
) error {
	args := make([]Value, 0, len(stmt.Args))

	for _, expr := range stmt.Args {
		v, err := in.eval(ctx, scope, expr)
		if err != nil {
			return err
		}

		args = append(args, v)
	}

	msg, err := in.eval(ctx, scope, stmt.Message)
	if err != nil {
		return err
	}

	entry := LogEntry{
		Level:   stmt.Level,
		Message: msg.Text(),
		Args:    args,
		Pos:     stmt.Pos(),
	}

	if in.cfg.sink != nil {
		return in.cfg.sink.Emit(ctx, entry)
	}

	attrs := make([]slog.Attr, 0, len(entry.Args))
	for i, arg := range entry.Args {
		attrs = append(attrs, slog.String("arg"+strconv.Itoa(i), arg.Text()))
	}

	switch entry.Level {
	case LevelWarn:
		in.cfg.logger.WarnContext(ctx, entry.Message, attrs...)
	case LevelError:
		in.cfg.logger.ErrorContext(ctx, entry.Message, attrs...)
	default:
		in.cfg.logger.InfoContext(ctx, entry.Message, attrs...)
	}

	return nil
}

// call invokes a function. Argument expressions evaluate in the caller's
// scope; the body executes in a fresh frame chained directly to the
// global frame, never to the caller's.
func (in *Interp) call(
	ctx context.Context,
	caller *Scope,
	stmt *FunctionCall,
) (Value, error) {
	fn, ok := in.funcs[stmt.Name]
	if !ok {
		return Null(), ErrUndefinedFunction.
			WithPosition(stmt.Pos()).
			With(slog.String("name", stmt.Name))
	}

	if err := in.checkArgs(fn, stmt); err != nil {
		return Null(), err
	}

	bound := make(map[string]Value, len(stmt.Args))

	for _, arg := range stmt.Args {
		v, err := in.eval(ctx, caller, arg.Value)
		if err != nil {
			return Null(), err
		}

		bound[arg.Name] = v
	}

	frame := NewScope(in.global)

	for _, param := range fn.Params {
		if err := frame.Declare(param.Name, param.Type, bound[param.Name]); err != nil {
			return Null(), attachPos(err, stmt.Pos())
		}
	}

	in.cfg.logger.TraceContext(ctx, "function call",
		slog.String("name", fn.Name),
		slog.Int("args", len(stmt.Args)))

	for _, body := range fn.Body {
		if err := ctx.Err(); err != nil {
			return Null(), WrapError(err).WithPosition(body.Pos())
		}

		ret, err := in.exec(ctx, frame, body)
		if err != nil {
			return Null(), err
		}

		if ret != nil {
			return *ret, nil
		}
	}

	return Null(), nil
}

// checkArgs validates the named arguments of a call against the
// function's declared parameters. Every defect is reported: a call that
// both names an unknown parameter and omits a declared one fails with
// both errors joined.
func (in *Interp) checkArgs(fn *Function, stmt *FunctionCall) error {
	declared := make(map[string]struct{}, len(fn.Params))
	for _, param := range fn.Params {
		declared[param.Name] = struct{}{}
	}

	provided := make(map[string]struct{}, len(stmt.Args))

	var errs []error

	for _, arg := range stmt.Args {
		provided[arg.Name] = struct{}{}

		if _, ok := declared[arg.Name]; !ok {
			errs = append(errs, ErrUnknownParameter.
				WithPosition(stmt.Pos()).
				With(
					slog.String("function", fn.Name),
					slog.String("parameter", arg.Name),
				))
		}
	}

	for _, param := range fn.Params {
		if _, ok := provided[param.Name]; !ok {
			errs = append(errs, ErrArityMismatch.
				WithPosition(stmt.Pos()).
				With(
					slog.String("function", fn.Name),
					slog.String("parameter", param.Name),
				))
		}
	}

	return errors.Join(errs...)
}

// eval evaluates an expression to a value.
func (in *Interp) eval(
	ctx context.Context,
	scope *Scope,
	expr Expression,
) (Value, error) {
	switch e := expr.(type) {
	case *StringLit:
		return Str(e.Value), nil

	case *NumberLit:
		return Num(e.Value), nil

	case *BoolLit:
		return Bool(e.Value), nil

	case *NullLit:
		return Null(), nil

	case *Ident:
		variable, ok := scope.Lookup(e.Name)
		if !ok {
			return Null(), ErrUndefinedVariable.
				WithPosition(e.Pos()).
				With(slog.String("name", e.Name))
		}

		return variable.Value, nil

	case *MemberAccess:
		return in.evalMember(scope, e)

	case *Binary:
		return in.evalBinary(ctx, scope, e)

	default:
		return Null(), ErrStaticShape.WithPosition(expr.Pos())
	}
}

// evalMember evaluates expr.value and expr.type. The base must be a
// variable reference by name; member access on literals or computed
// expressions has no meaning and fails regardless of the values
// involved.
func (in *Interp) evalMember(scope *Scope, e *MemberAccess) (Value, error) {
	ident, ok := e.Base.(*Ident)
	if !ok {
		return Null(), ErrStaticShape.
			WithPosition(e.Pos()).
			With(slog.String("member", e.Member.String()))
	}

	variable, found := scope.Lookup(ident.Name)
	if !found {
		return Null(), ErrUndefinedVariable.
			WithPosition(ident.Pos()).
			With(slog.String("name", ident.Name))
	}

	if e.Member == MemberType {
		return Str(variable.Type.String()), nil
	}

	return variable.Value, nil
}

// evalBinary evaluates a binary operation. Concatenation is total over
// all value kinds via their text rendering; the arithmetic operators
// require two numbers.
func (in *Interp) evalBinary(
	ctx context.Context,
	scope *Scope,
	e *Binary,
) (Value, error) {
	left, err := in.eval(ctx, scope, e.Left)
	if err != nil {
		return Null(), err
	}

	right, err := in.eval(ctx, scope, e.Right)
	if err != nil {
		return Null(), err
	}

	if e.Op == OpConcat {
		return Str(left.Text() + right.Text()), nil
	}

	if left.Kind != KindNum || right.Kind != KindNum {
		return Null(), ErrTypeMismatch.
			WithPosition(e.Pos()).
			With(
				slog.String("operator", e.Op.String()),
				slog.String("left", left.Kind.String()),
				slog.String("right", right.Kind.String()),
			)
	}

	switch e.Op {
	case OpAdd:
		return Num(left.Num + right.Num), nil
	case OpSub:
		return Num(left.Num - right.Num), nil
	case OpMul:
		return Num(left.Num * right.Num), nil
	default:
		return Num(left.Num / right.Num), nil
	}
}

// attachPos adds a position to structured errors raised by scope
// operations, which have no source location of their own.
func attachPos(err error, pos Position) error {
	var ee *Error
	if errors.As(err, &ee) {
		if _, has := ee.Position(); !has {
			return ee.WithPosition(pos)
		}
	}

	return err
}
