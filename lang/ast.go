package lang

// Program is the root of a parsed Q source file: an ordered list of
// top-level statements. Nodes form a strict tree; every node exclusively
// owns its children.
type Program struct {
	Statements []Statement
}

// Statement is implemented by all statement node kinds.
type Statement interface {
	Pos() Position
	stmtNode()
}

// Expression is implemented by all expression node kinds.
type Expression interface {
	Pos() Position
	exprNode()
}

// node carries the source position shared by every AST node.
type node struct {
	Position Position
}

// Pos returns the node's source position.
func (n node) Pos() Position { return n.Position }

// DataType is the declared datatype tag given at system.init time.
// It is independent of the Value currently stored in the variable.
type DataType int

const (
	DataString DataType = iota
	DataNumber
	DataBool
	DataArray
)

// String returns the surface keyword for the datatype tag.
func (d DataType) String() string {
	switch d {
	case DataString:
		return "string"
	case DataNumber:
		return "number"
	case DataBool:
		return "bool"
	case DataArray:
		return "array"
	default:
		return "unknown"
	}
}

// LogLevel is the severity tag of a system.log statement.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarn
	LevelError
)

// String returns the surface keyword for the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Param is a declared function parameter: name and datatype tag.
type Param struct {
	Name string
	Type DataType
}

// Argument is one parameters{} entry of a system.exec statement,
// binding a parameter name to an argument expression. Entries preserve
// source order.
type Argument struct {
	Name  string
	Value Expression
}

// ImportSpec is one system.include binding request: the remote name
// declared in the source file, and the local alias it binds to.
type ImportSpec struct {
	Alias  string // local binding name
	Remote string // name inside the included file
	Source string // file identity, e.g. "util.q"
}

// Statement nodes.

// VariableInit declares a new variable (system.init). The initializer is
// optional; an absent initializer yields Null.
type VariableInit struct {
	node

	Name string
	Type DataType
	Init Expression // nil when no "value" entry was given
}

// VariableSet assigns a new value to an existing variable (system.set).
// The declared datatype tag is never touched.
type VariableSet struct {
	node

	Name  string
	Value Expression
}

// Log emits one line to the log sink (system.log). Args are the ordered
// arguments{} expressions, available to the sink as structured values
// independent of the rendered message.
type Log struct {
	node

	Level   LogLevel
	Args    []Expression
	Message Expression
}

// FunctionDecl declares a named function. Declarations are hoisted before
// execution; a later declaration with the same name overwrites the
// earlier one.
type FunctionDecl struct {
	node

	Name   string
	Params []Param
	Body   []Statement
}

// FunctionCall invokes a function by name (system.exec) with
// named-argument bindings.
type FunctionCall struct {
	node

	Name string
	Args []Argument
}

// Include is a structurally parsed system.include statement. The core
// never evaluates it; the import specs are forwarded to the module resolver
// before execution.
type Include struct {
	node

	Specs []ImportSpec
}

// Return halts the enclosing function body and yields its optional value.
type Return struct {
	node

	Value Expression // nil yields Null
}

func (*VariableInit) stmtNode() {}
func (*VariableSet) stmtNode()  {}
func (*Log) stmtNode()          {}
func (*FunctionDecl) stmtNode() {}
func (*FunctionCall) stmtNode() {}
func (*Include) stmtNode()      {}
func (*Return) stmtNode()       {}

// Expression nodes.

// StringLit is a double-quoted string literal.
type StringLit struct {
	node

	Value string
}

// NumberLit is an integer or decimal literal, stored as a 64-bit float.
type NumberLit struct {
	node

	Value float64
}

// BoolLit is a true/false literal.
type BoolLit struct {
	node

	Value bool
}

// NullLit is the null literal.
type NullLit struct {
	node
}

// Ident references a variable by name.
type Ident struct {
	node

	Name string
}

// Member selects which facet of a variable a MemberAccess surfaces.
type Member int

const (
	MemberValue Member = iota // .value: the raw stored Value
	MemberType                // .type: the declared datatype tag as text
)

// String returns the surface member name.
func (m Member) String() string {
	if m == MemberType {
		return "type"
	}

	return "value"
}

// MemberAccess surfaces a variable's stored value or declared tag.
// It is only valid when Base resolves to a variable reference; anything
// else is a static-shape error at evaluation time.
type MemberAccess struct {
	node

	Base   Expression
	Member Member
}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	OpConcat BinaryOp = iota // &: text concatenation, total
	OpAdd                    // +
	OpSub                    // -
	OpMul                    // *
	OpDiv                    // /
)

// String returns the surface operator text.
func (op BinaryOp) String() string {
	switch op {
	case OpConcat:
		return "&"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// Binary applies a binary operator to two operands. All binary operators
// are left-associative.
type Binary struct {
	node

	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (*StringLit) exprNode()    {}
func (*NumberLit) exprNode()    {}
func (*BoolLit) exprNode()      {}
func (*NullLit) exprNode()      {}
func (*Ident) exprNode()        {}
func (*MemberAccess) exprNode() {}
func (*Binary) exprNode()       {}

// Includes returns the ordered import specs of every system.include
// statement in the program, in source order. This is the list handed to
// the module resolver.
func (p *Program) Includes() []ImportSpec {
	var specs []ImportSpec

	for _, stmt := range p.Statements {
		if inc, ok := stmt.(*Include); ok {
			specs = append(specs, inc.Specs...)
		}
	}

	return specs
}

// Functions returns the top-level function declarations in source order.
func (p *Program) Functions() []*FunctionDecl {
	var decls []*FunctionDecl

	for _, stmt := range p.Statements {
		if fn, ok := stmt.(*FunctionDecl); ok {
			decls = append(decls, fn)
		}
	}

	return decls
}
