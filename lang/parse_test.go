package lang

import (
	"context"
	"errors"
	"testing"
)

func parse(t *testing.T, source string) *Program {
	t.Helper()

	prog, err := Parse(context.Background(), source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return prog
}

func TestParse_Init(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		varName  string
		datatype DataType
		hasInit  bool
	}{
		{
			name:     "with value",
			input:    `system.init{"type": variable, "name": count, "datatype": number, "value": 2};`,
			varName:  "count",
			datatype: DataNumber,
			hasInit:  true,
		},
		{
			name:     "without value",
			input:    `system.init{"type": variable, "name": msg, "datatype": string};`,
			varName:  "msg",
			datatype: DataString,
			hasInit:  false,
		},
		{
			name:     "entries in any order",
			input:    `system.init{"datatype": bool, "name": flag, "type": variable};`,
			varName:  "flag",
			datatype: DataBool,
			hasInit:  false,
		},
		{
			name:     "array datatype",
			input:    `system.init{"type": variable, "name": xs, "datatype": array};`,
			varName:  "xs",
			datatype: DataArray,
			hasInit:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parse(t, tt.input)

			if len(prog.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
			}

			init, ok := prog.Statements[0].(*VariableInit)
			if !ok {
				t.Fatalf("expected *VariableInit, got %T", prog.Statements[0])
			}

			if init.Name != tt.varName {
				t.Errorf("expected name %q, got %q", tt.varName, init.Name)
			}

			if init.Type != tt.datatype {
				t.Errorf("expected datatype %v, got %v", tt.datatype, init.Type)
			}

			if (init.Init != nil) != tt.hasInit {
				t.Errorf("initializer presence: expected %v", tt.hasInit)
			}
		})
	}
}

func TestParse_Log(t *testing.T) {
	prog := parse(t, `system.log{"type": warn, arguments{count, 2 + 3}, "message": "total " & count};`)

	logStmt, ok := prog.Statements[0].(*Log)
	if !ok {
		t.Fatalf("expected *Log, got %T", prog.Statements[0])
	}

	if logStmt.Level != LevelWarn {
		t.Errorf("expected warn level, got %v", logStmt.Level)
	}

	if len(logStmt.Args) != 2 {
		t.Errorf("expected 2 arguments, got %d", len(logStmt.Args))
	}

	if _, ok := logStmt.Message.(*Binary); !ok {
		t.Errorf("expected binary message expression, got %T", logStmt.Message)
	}
}

func TestParse_FunctionDecl(t *testing.T) {
	prog := parse(t, `
function scale(n in number, by in number) {
	system.log{"type": info, "message": n * by};
	return n * by;
};
`)

	decl, ok := prog.Statements[0].(*FunctionDecl)
	if !ok {
		t.Fatalf("expected *FunctionDecl, got %T", prog.Statements[0])
	}

	if decl.Name != "scale" {
		t.Errorf("expected name scale, got %q", decl.Name)
	}

	if len(decl.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(decl.Params))
	}

	if decl.Params[0].Name != "n" || decl.Params[0].Type != DataNumber {
		t.Errorf("param 0: got %+v", decl.Params[0])
	}

	if len(decl.Body) != 2 {
		t.Errorf("expected 2 body statements, got %d", len(decl.Body))
	}

	if _, ok := decl.Body[1].(*Return); !ok {
		t.Errorf("expected return statement, got %T", decl.Body[1])
	}
}

func TestParse_Exec(t *testing.T) {
	prog := parse(t, `system.exec{"type": function, "name": scale, parameters{n => count, by => 10}};`)

	call, ok := prog.Statements[0].(*FunctionCall)
	if !ok {
		t.Fatalf("expected *FunctionCall, got %T", prog.Statements[0])
	}

	if call.Name != "scale" {
		t.Errorf("expected callee scale, got %q", call.Name)
	}

	if len(call.Args) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(call.Args))
	}

	if call.Args[0].Name != "n" || call.Args[1].Name != "by" {
		t.Errorf("argument names: got %q, %q", call.Args[0].Name, call.Args[1].Name)
	}
}

func TestParse_ExecNoParameters(t *testing.T) {
	prog := parse(t, `system.exec{"type": function, "name": setup};`)

	call := prog.Statements[0].(*FunctionCall)
	if len(call.Args) != 0 {
		t.Errorf("expected no arguments, got %d", len(call.Args))
	}
}

func TestParse_Include(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ImportSpec
	}{
		{
			name:  "with alias",
			input: `system.include{"name": helper, "from": "util.q", "as": util_helper};`,
			want:  ImportSpec{Alias: "util_helper", Remote: "helper", Source: "util.q"},
		},
		{
			name:  "alias defaults to remote name",
			input: `system.include{"name": helper, "from": "util.q"};`,
			want:  ImportSpec{Alias: "helper", Remote: "helper", Source: "util.q"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parse(t, tt.input)

			specs := prog.Includes()
			if len(specs) != 1 {
				t.Fatalf("expected 1 spec, got %d", len(specs))
			}

			if specs[0] != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, specs[0])
			}
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	// 1 + 2 * 3 & "x" parses as ((1 + (2 * 3)) & "x"): concatenation
	// binds loosest, multiplication tightest.
	prog := parse(t, `system.set{"name": v, "value": 1 + 2 * 3 & "x"};`)

	set := prog.Statements[0].(*VariableSet)

	concat, ok := set.Value.(*Binary)
	if !ok || concat.Op != OpConcat {
		t.Fatalf("expected concat at root, got %T", set.Value)
	}

	add, ok := concat.Left.(*Binary)
	if !ok || add.Op != OpAdd {
		t.Fatalf("expected add below concat, got %T", concat.Left)
	}

	mul, ok := add.Right.(*Binary)
	if !ok || mul.Op != OpMul {
		t.Fatalf("expected mul below add, got %T", add.Right)
	}
}

func TestParse_LeftAssociative(t *testing.T) {
	// 10 - 4 - 3 parses as ((10 - 4) - 3).
	prog := parse(t, `system.set{"name": v, "value": 10 - 4 - 3};`)

	set := prog.Statements[0].(*VariableSet)

	outer, ok := set.Value.(*Binary)
	if !ok || outer.Op != OpSub {
		t.Fatalf("expected sub at root, got %T", set.Value)
	}

	if _, ok := outer.Left.(*Binary); !ok {
		t.Errorf("expected nested sub on the left, got %T", outer.Left)
	}

	if _, ok := outer.Right.(*NumberLit); !ok {
		t.Errorf("expected literal on the right, got %T", outer.Right)
	}
}

func TestParse_Parenthesized(t *testing.T) {
	// (1 + 2) * 3 overrides precedence.
	prog := parse(t, `system.set{"name": v, "value": (1 + 2) * 3};`)

	set := prog.Statements[0].(*VariableSet)

	mul, ok := set.Value.(*Binary)
	if !ok || mul.Op != OpMul {
		t.Fatalf("expected mul at root, got %T", set.Value)
	}

	add, ok := mul.Left.(*Binary)
	if !ok || add.Op != OpAdd {
		t.Fatalf("expected add on the left, got %T", mul.Left)
	}
}

func TestParse_MemberAccess(t *testing.T) {
	prog := parse(t, `system.set{"name": v, "value": count.type & count.value};`)

	set := prog.Statements[0].(*VariableSet)
	concat := set.Value.(*Binary)

	left, ok := concat.Left.(*MemberAccess)
	if !ok || left.Member != MemberType {
		t.Fatalf("expected .type access on the left, got %T", concat.Left)
	}

	right, ok := concat.Right.(*MemberAccess)
	if !ok || right.Member != MemberValue {
		t.Fatalf("expected .value access on the right, got %T", concat.Right)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "unknown verb",
			input: `system.halt{"name": v};`,
			want:  ErrUnknownVerb,
		},
		{
			name:  "duplicate key",
			input: `system.init{"name": v, "name": w, "datatype": string};`,
			want:  ErrDuplicateKey,
		},
		{
			name:  "duplicate parameter binding",
			input: `system.exec{"type": function, "name": f, parameters{n => 1, n => 2}};`,
			want:  ErrDuplicateKey,
		},
		{
			name:  "missing closing brace",
			input: `system.init{"name": v, "datatype": string`,
			want:  ErrMissingDelim,
		},
		{
			name:  "missing function body brace",
			input: `function f() { system.log{"type": info, "message": "x"};`,
			want:  ErrMissingDelim,
		},
		{
			name:  "missing semicolon",
			input: `system.set{"name": v, "value": 1}`,
			want:  ErrMissingDelim,
		},
		{
			name:  "missing required name",
			input: `system.init{"type": variable, "datatype": string};`,
			want:  ErrUnexpectedToken,
		},
		{
			name:  "missing required value",
			input: `system.set{"name": v};`,
			want:  ErrUnexpectedToken,
		},
		{
			name:  "unknown key",
			input: `system.set{"name": v, "value": 1, "extra": 2};`,
			want:  ErrUnexpectedToken,
		},
		{
			name:  "bad datatype",
			input: `system.init{"name": v, "datatype": widget};`,
			want:  ErrUnexpectedToken,
		},
		{
			name:  "bad member name",
			input: `system.set{"name": v, "value": count.size};`,
			want:  ErrUnexpectedToken,
		},
		{
			name:  "nested function declaration",
			input: `function f() { function g() { return; }; };`,
			want:  ErrUnexpectedToken,
		},
		{
			name:  "statement outside any form",
			input: `count + 1;`,
			want:  ErrUnexpectedToken,
		},
		{
			name:  "lexical error propagates",
			input: `system.set{"name": v, "value": "open};`,
			want:  ErrUnterminatedString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if prog != nil {
				t.Errorf("expected no partial tree on error")
			}
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse(context.Background(), "system.set{\"name\": v,\n\"value\"};")

	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("expected *Error, got %T", err)
	}

	pos, ok := ee.Position()
	if !ok {
		t.Fatal("expected a position on the parse error")
	}

	if pos.Line != 2 {
		t.Errorf("expected error on line 2, got %d", pos.Line)
	}
}

func TestParse_WholeProgram(t *testing.T) {
	prog := parse(t, `
// setup
system.include{"name": helper, "from": "util.q"};
system.init{"type": variable, "name": count, "datatype": number, "value": 2};

function bump(by in number) {
	system.set{"name": count, "value": count + by};
	return count;
};

system.exec{"type": function, "name": bump, parameters{by => 3}};
system.log{"type": info, "message": "count is " & count};
`)

	if len(prog.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(prog.Statements))
	}

	if len(prog.Functions()) != 1 {
		t.Errorf("expected 1 function declaration")
	}

	if len(prog.Includes()) != 1 {
		t.Errorf("expected 1 include spec")
	}
}
