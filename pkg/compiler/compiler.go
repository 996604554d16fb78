// Package compiler ties the pipeline's phases together behind a single
// Compile entry point, the same separation the teacher draws between
// pkg/parser.Parse (orchestration) and internal/builder.Builder
// (mechanism) — SPEC_FULL.md §4.12.
package compiler

import (
	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/internal/parser"
	"github.com/forge-lang/forgec/pkg/ast"
	"github.com/forge-lang/forgec/pkg/borrow"
	"github.com/forge-lang/forgec/pkg/bytecode"
	"github.com/forge-lang/forgec/pkg/symbols"
	"github.com/forge-lang/forgec/pkg/typecheck"
)

// Stage marks how far a Compile call was asked to go, used for the CLI's
// --lex/--parse/--typecheck early-stop flags (SPEC_FULL.md §4.11).
type Stage int

const (
	StageFull Stage = iota
	StageLex
	StageParse
	StageTypecheck
)

// Options configures one Compile call.
type Options struct {
	File string
	Stop Stage
}

// Result carries whatever phases actually ran. Fields past the
// requested Stop stage are left zero.
type Result struct {
	Tokens   []lexer.Token
	Program  *ast.Program
	Bytecode *bytecode.CompiledProgram
	Compiler *bytecode.Compiler
}

// Compile runs lex -> parse -> typecheck -> borrow-check -> bytecode
// compile over source, consulting diags.HasErrors() after each phase and
// aborting early (spec.md §7, §5: "the driver decides whether to
// continue ... it does not, in the reference design").
func Compile(source string, opts Options, diags *diag.Collector) (*Result, error) {
	result := &Result{}

	lx := lexer.New(opts.File, source)
	tokens, err := lx.Tokenize()
	if err != nil {
		return result, err
	}
	result.Tokens = tokens
	if opts.Stop == StageLex {
		return result, nil
	}

	p := parser.New(opts.File, tokens, diags)
	program := p.Parse()
	result.Program = program
	if diags.HasErrors() || opts.Stop == StageParse {
		return result, nil
	}

	table := symbols.NewTable()
	checker := typecheck.New(diags)
	checker.AnalyzeProgram(program, table)
	if diags.HasErrors() || opts.Stop == StageTypecheck {
		return result, nil
	}

	model := borrow.NewMemoryModel(diags)
	borrowChecker := borrow.NewChecker(model, diags)
	borrowChecker.AnalyzeProgram(program, table)
	if diags.HasErrors() {
		return result, nil
	}

	bc := bytecode.New(diags, checker)
	compiled := bc.Compile(program)
	result.Bytecode = compiled
	result.Compiler = bc
	return result, nil
}
