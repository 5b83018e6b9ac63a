package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const marshalFixture = `
system.include{"name": helper, "from": "util.q", "as": util_helper};
system.init{"type": variable, "name": count, "datatype": number, "value": 2};

function scale(n in number, by in number) {
	system.log{"type": warn, arguments{n, by}, "message": n & "x" & by};
	return n * by;
};

system.exec{"type": function, "name": scale, parameters{n => count, by => 10}};
system.log{"type": info, "message": "done: " & count.value & " " & count.type};
return null;
`

func TestMarshalProgram_RoundTrip(t *testing.T) {
	ctx := context.Background()

	prog, err := Parse(ctx, marshalFixture)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	data, err := MarshalProgram(prog)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	decoded, err := UnmarshalProgram(data)
	if err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if len(decoded.Statements) != len(prog.Statements) {
		t.Fatalf("expected %d statements, got %d",
			len(prog.Statements), len(decoded.Statements))
	}

	// The decoded tree must execute identically to the original.
	for name, tree := range map[string]*Program{"original": prog, "decoded": decoded} {
		sink := &recorder{}

		in := NewInterp(
			WithSink(sink),
			WithResolver(&stubResolver{values: map[string]Value{
				"util.q:helper": Str("h"),
			}}),
		)

		if err := in.Run(ctx, tree); err != nil {
			t.Fatalf("%s run error: %v", name, err)
		}

		if len(sink.entries) != 2 {
			t.Fatalf("%s: expected 2 log lines, got %d", name, len(sink.entries))
		}

		if sink.entries[0].Message != "2x10" {
			t.Errorf("%s: expected %q, got %q", name, "2x10", sink.entries[0].Message)
		}

		if sink.entries[1].Message != "done: 2 number" {
			t.Errorf("%s: expected %q, got %q", name, "done: 2 number", sink.entries[1].Message)
		}
	}
}

func TestMarshalProgram_PreservesPositions(t *testing.T) {
	ctx := context.Background()

	prog, err := Parse(ctx, "\nsystem.set{\"name\": v, \"value\": 1};")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	data, err := MarshalProgram(prog)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	decoded, err := UnmarshalProgram(data)
	if err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if got := decoded.Statements[0].Pos(); got.Line != 2 {
		t.Errorf("expected line 2 after round trip, got %v", got)
	}
}

func TestMarshalProgram_ArtifactShape(t *testing.T) {
	prog, err := Parse(context.Background(),
		`system.init{"type": variable, "name": v, "datatype": string, "value": "x"};`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	data, err := MarshalProgram(prog)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	for _, want := range []string{`"kind": "init"`, `"name": "v"`, `"datatype": "string"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("artifact missing %s:\n%s", want, data)
		}
	}
}

func TestUnmarshalProgram_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{{`},
		{name: "unknown statement kind", data: `{"statements": [{"kind": "jump"}]}`},
		{name: "unknown expression kind", data: `{"statements": [{"kind": "set", "name": "v", "value": {"kind": "regex"}}]}`},
		{name: "set without value", data: `{"statements": [{"kind": "set", "name": "v"}]}`},
		{name: "bad datatype", data: `{"statements": [{"kind": "init", "name": "v", "datatype": "widget"}]}`},
		{name: "bad operator", data: `{"statements": [{"kind": "set", "name": "v", "value": {"kind": "binary", "op": "%", "left": {"kind": "null"}, "right": {"kind": "null"}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalProgram([]byte(tt.data)); !errors.Is(err, ErrUnmarshal) {
				t.Fatalf("expected unmarshal error, got %v", err)
			}
		})
	}
}
