package lang

import (
	"log/slog"

	jsoniter "github.com/json-iterator/go"
)

// json is the codec used for program artifacts. The drop-in config keeps
// output byte-compatible with encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalProgram encodes a parsed program as JSON. The encoding is a
// complete round-trip representation of the tree, including source
// positions, and is the artifact format written by the build pipeline.
func MarshalProgram(prog *Program) ([]byte, error) {
	dto := programDTO{Statements: encodeStatements(prog.Statements)}

	data, err := json.MarshalIndent(dto, "", "  ")
	if err != nil {
		return nil, ErrMarshal.Wrap(err)
	}

	return data, nil
}

// UnmarshalProgram decodes a program artifact produced by
// MarshalProgram.
func UnmarshalProgram(data []byte) (*Program, error) {
	var dto programDTO

	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, ErrUnmarshal.Wrap(err)
	}

	stmts, err := decodeStatements(dto.Statements)
	if err != nil {
		return nil, err
	}

	return &Program{Statements: stmts}, nil
}

// Statement and expression nodes encode as flat objects with a "kind"
// discriminator. Only the fields relevant to each kind are present.

type programDTO struct {
	Statements []stmtDTO `json:"statements"`
}

type posDTO struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

func encodePos(p Position) posDTO {
	return posDTO{Line: p.Line, Column: p.Column}
}

func (d posDTO) position() Position {
	return Position{Line: d.Line, Column: d.Column}
}

type stmtDTO struct {
	Kind string `json:"kind"`
	Pos  posDTO `json:"pos,omitempty"`

	Name     string     `json:"name,omitempty"`
	Datatype string     `json:"datatype,omitempty"`
	Value    *exprDTO   `json:"value,omitempty"`
	Level    string     `json:"level,omitempty"`
	Message  *exprDTO   `json:"message,omitempty"`
	Exprs    []exprDTO  `json:"arguments,omitempty"`
	Args     []argDTO   `json:"parameters,omitempty"`
	Params   []paramDTO `json:"params,omitempty"`
	Body     []stmtDTO  `json:"body,omitempty"`
	Specs    []specDTO  `json:"specs,omitempty"`
}

type exprDTO struct {
	Kind string `json:"kind"`
	Pos  posDTO `json:"pos,omitempty"`

	Str    string   `json:"str,omitempty"`
	Num    float64  `json:"num,omitempty"`
	Bool   bool     `json:"bool,omitempty"`
	Name   string   `json:"name,omitempty"`
	Member string   `json:"member,omitempty"`
	Op     string   `json:"op,omitempty"`
	Left   *exprDTO `json:"left,omitempty"`
	Right  *exprDTO `json:"right,omitempty"`
	Base   *exprDTO `json:"base,omitempty"`
}

type argDTO struct {
	Name  string  `json:"name"`
	Value exprDTO `json:"value"`
}

type paramDTO struct {
	Name     string `json:"name"`
	Datatype string `json:"datatype"`
}

type specDTO struct {
	Alias  string `json:"alias"`
	Remote string `json:"remote"`
	Source string `json:"source"`
}

func encodeStatements(stmts []Statement) []stmtDTO {
	out := make([]stmtDTO, len(stmts))
	for i, stmt := range stmts {
		out[i] = encodeStatement(stmt)
	}

	return out
}

func encodeStatement(stmt Statement) stmtDTO {
	dto := stmtDTO{Pos: encodePos(stmt.Pos())}

	switch s := stmt.(type) {
	case *VariableInit:
		dto.Kind = "init"
		dto.Name = s.Name
		dto.Datatype = s.Type.String()

		if s.Init != nil {
			v := encodeExpression(s.Init)
			dto.Value = &v
		}

	case *VariableSet:
		dto.Kind = "set"
		dto.Name = s.Name
		v := encodeExpression(s.Value)
		dto.Value = &v

	case *Log:
		dto.Kind = "log"
		dto.Level = s.Level.String()
		msg := encodeExpression(s.Message)
		dto.Message = &msg

		for _, arg := range s.Args {
			dto.Exprs = append(dto.Exprs, encodeExpression(arg))
		}

	case *FunctionDecl:
		dto.Kind = "function"
		dto.Name = s.Name

		for _, param := range s.Params {
			dto.Params = append(dto.Params, paramDTO{
				Name:     param.Name,
				Datatype: param.Type.String(),
			})
		}

		dto.Body = encodeStatements(s.Body)

	case *FunctionCall:
		dto.Kind = "exec"
		dto.Name = s.Name

		for _, arg := range s.Args {
			dto.Args = append(dto.Args, argDTO{
				Name:  arg.Name,
				Value: encodeExpression(arg.Value),
			})
		}

	case *Include:
		dto.Kind = "include"

		for _, spec := range s.Specs {
			dto.Specs = append(dto.Specs, specDTO(spec))
		}

	case *Return:
		dto.Kind = "return"

		if s.Value != nil {
			v := encodeExpression(s.Value)
			dto.Value = &v
		}
	}

	return dto
}

func encodeExpression(expr Expression) exprDTO {
	dto := exprDTO{Pos: encodePos(expr.Pos())}

	switch e := expr.(type) {
	case *StringLit:
		dto.Kind = "string"
		dto.Str = e.Value

	case *NumberLit:
		dto.Kind = "number"
		dto.Num = e.Value

	case *BoolLit:
		dto.Kind = "bool"
		dto.Bool = e.Value

	case *NullLit:
		dto.Kind = "null"

	case *Ident:
		dto.Kind = "ident"
		dto.Name = e.Name

	case *MemberAccess:
		dto.Kind = "member"
		dto.Member = e.Member.String()
		base := encodeExpression(e.Base)
		dto.Base = &base

	case *Binary:
		dto.Kind = "binary"
		dto.Op = e.Op.String()
		left := encodeExpression(e.Left)
		right := encodeExpression(e.Right)
		dto.Left = &left
		dto.Right = &right
	}

	return dto
}

func decodeStatements(dtos []stmtDTO) ([]Statement, error) {
	if len(dtos) == 0 {
		return nil, nil
	}

	out := make([]Statement, len(dtos))

	for i, dto := range dtos {
		stmt, err := decodeStatement(dto)
		if err != nil {
			return nil, err
		}

		out[i] = stmt
	}

	return out, nil
}

func decodeStatement(dto stmtDTO) (Statement, error) {
	pos := node{Position: dto.Pos.position()}

	switch dto.Kind {
	case "init":
		typ, err := decodeDataType(dto.Datatype)
		if err != nil {
			return nil, err
		}

		stmt := &VariableInit{node: pos, Name: dto.Name, Type: typ}

		if dto.Value != nil {
			init, err := decodeExpression(*dto.Value)
			if err != nil {
				return nil, err
			}

			stmt.Init = init
		}

		return stmt, nil

	case "set":
		if dto.Value == nil {
			return nil, badField("set", "value")
		}

		value, err := decodeExpression(*dto.Value)
		if err != nil {
			return nil, err
		}

		return &VariableSet{node: pos, Name: dto.Name, Value: value}, nil

	case "log":
		if dto.Message == nil {
			return nil, badField("log", "message")
		}

		msg, err := decodeExpression(*dto.Message)
		if err != nil {
			return nil, err
		}

		level, err := decodeLogLevel(dto.Level)
		if err != nil {
			return nil, err
		}

		stmt := &Log{node: pos, Level: level, Message: msg}

		for _, arg := range dto.Exprs {
			expr, err := decodeExpression(arg)
			if err != nil {
				return nil, err
			}

			stmt.Args = append(stmt.Args, expr)
		}

		return stmt, nil

	case "function":
		stmt := &FunctionDecl{node: pos, Name: dto.Name}

		for _, param := range dto.Params {
			typ, err := decodeDataType(param.Datatype)
			if err != nil {
				return nil, err
			}

			stmt.Params = append(stmt.Params, Param{
				Name: param.Name,
				Type: typ,
			})
		}

		body, err := decodeStatements(dto.Body)
		if err != nil {
			return nil, err
		}

		stmt.Body = body

		return stmt, nil

	case "exec":
		stmt := &FunctionCall{node: pos, Name: dto.Name}

		for _, arg := range dto.Args {
			value, err := decodeExpression(arg.Value)
			if err != nil {
				return nil, err
			}

			stmt.Args = append(stmt.Args, Argument{
				Name:  arg.Name,
				Value: value,
			})
		}

		return stmt, nil

	case "include":
		stmt := &Include{node: pos}

		for _, spec := range dto.Specs {
			stmt.Specs = append(stmt.Specs, ImportSpec(spec))
		}

		return stmt, nil

	case "return":
		stmt := &Return{node: pos}

		if dto.Value != nil {
			value, err := decodeExpression(*dto.Value)
			if err != nil {
				return nil, err
			}

			stmt.Value = value
		}

		return stmt, nil

	default:
		return nil, badField("statement", dto.Kind)
	}
}

func decodeExpression(dto exprDTO) (Expression, error) {
	pos := node{Position: dto.Pos.position()}

	switch dto.Kind {
	case "string":
		return &StringLit{node: pos, Value: dto.Str}, nil

	case "number":
		return &NumberLit{node: pos, Value: dto.Num}, nil

	case "bool":
		return &BoolLit{node: pos, Value: dto.Bool}, nil

	case "null":
		return &NullLit{node: pos}, nil

	case "ident":
		return &Ident{node: pos, Name: dto.Name}, nil

	case "member":
		if dto.Base == nil {
			return nil, badField("member", "base")
		}

		base, err := decodeExpression(*dto.Base)
		if err != nil {
			return nil, err
		}

		member := MemberValue
		if dto.Member == "type" {
			member = MemberType
		}

		return &MemberAccess{node: pos, Base: base, Member: member}, nil

	case "binary":
		if dto.Left == nil || dto.Right == nil {
			return nil, badField("binary", "operands")
		}

		left, err := decodeExpression(*dto.Left)
		if err != nil {
			return nil, err
		}

		right, err := decodeExpression(*dto.Right)
		if err != nil {
			return nil, err
		}

		op, err := decodeBinaryOp(dto.Op)
		if err != nil {
			return nil, err
		}

		return &Binary{node: pos, Op: op, Left: left, Right: right}, nil

	default:
		return nil, badField("expression", dto.Kind)
	}
}

func decodeDataType(s string) (DataType, error) {
	switch s {
	case "string":
		return DataString, nil
	case "number":
		return DataNumber, nil
	case "bool":
		return DataBool, nil
	case "array":
		return DataArray, nil
	default:
		return 0, badField("datatype", s)
	}
}

func decodeLogLevel(s string) (LogLevel, error) {
	switch s {
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, badField("level", s)
	}
}

func decodeBinaryOp(s string) (BinaryOp, error) {
	switch s {
	case "&":
		return OpConcat, nil
	case "+":
		return OpAdd, nil
	case "-":
		return OpSub, nil
	case "*":
		return OpMul, nil
	case "/":
		return OpDiv, nil
	default:
		return 0, badField("operator", s)
	}
}

func badField(kind, value string) error {
	return ErrUnmarshal.With(
		slog.String("node", kind),
		slog.String("value", value),
	)
}
