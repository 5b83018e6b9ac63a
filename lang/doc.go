// Package lang implements the Q language: lexer, parser, static
// analyzer, and tree-walking interpreter.
//
// Q is a declarative scripting language in which every side effect is an
// explicit system verb applied to a keyed block:
//
//	system.init{"type": variable, "name": count, "datatype": number, "value": 2};
//	system.set{"name": count, "value": count + 1};
//	system.log{"type": info, "message": "count is " & count};
//
//	function scale(n in number, by in number) {
//	    system.log{"type": info, "message": n * by};
//	};
//
//	system.exec{"type": function, "name": scale, parameters{n => count, by => 10}};
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → Statement* EOF
//	Statement   → SystemStmt | FunctionDecl | Return
//	SystemStmt  → 'system' '.' Verb KeyedBlock ';'
//	Verb        → 'init' | 'set' | 'log' | 'exec' | 'include'
//	KeyedBlock  → '{' (Entry (',' Entry)*)? '}'
//	Entry       → StringLit ':' EntryValue | 'arguments' ArgBlock | 'parameters' ParamBlock
//	ArgBlock    → '{' (Expr (',' Expr)*)? '}'
//	ParamBlock  → '{' (Ident '=>' Expr (',' Ident '=>' Expr)*)? '}'
//	FunctionDecl→ 'function' Ident '(' (Ident 'in' Datatype)* ')' '{' Statement* '}' ';'
//	Return      → 'return' Expr? ';'
//	Expr        → Concat; precedence & < + - < * / < member access
//
// Braces never disambiguate themselves: a '{' always follows a header
// (verb, bare block name, or function signature) that selects the parse
// by keyword dispatch, so keyed blocks, argument blocks, and function
// bodies need no lookahead into their contents.
//
// # Execution model
//
// Programs execute top to bottom. Function declarations are hoisted into
// a global table before the first statement runs; later declarations of
// the same name overwrite earlier ones. Scoping is two-level: one global
// frame, plus one frame per active function call chained directly to the
// global frame. There are no closures and no dynamic scoping.
//
// Variables carry a declared datatype tag fixed at system.init time,
// surfaced by the .type member; the tag never constrains the value
// stored by system.set. Concatenation with & is total over all value
// kinds via their canonical text rendering, while + - * / require two
// numbers.
//
// # Entry points
//
// [Parse] builds a tree, [Analyze] performs static checks, and
// [Interp.Run] executes. [Eval] combines all three for one-shot use.
// [ParseCached] and [ParseReader] add content-addressed memoization for
// callers that parse the same source repeatedly, and [MarshalProgram]
// round-trips trees through the JSON artifact format used by build
// packages.
package lang
