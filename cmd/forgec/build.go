package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/pkg/ast"
	"github.com/forge-lang/forgec/pkg/bytecode"
	"github.com/forge-lang/forgec/pkg/compiler"
	"github.com/forge-lang/forgec/pkg/config"
	"github.com/forge-lang/forgec/pkg/version"
)

var (
	buildOutput        string
	buildStopLex       bool
	buildStopParse     bool
	buildStopTypecheck bool
	buildDumpTokens    bool
	buildDumpAST       bool
	buildDumpLLVM      bool
	buildDumpBytecode  bool
	buildOptLevel      int
	buildInteractive   bool
	buildVerbose       bool
)

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <files...>",
		Short: "Compile Forge source files to bytecode",
		Args:  cobra.MinimumNArgs(0),
		RunE:  runBuild,
	}

	cmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output file for the serialized bytecode program")
	cmd.Flags().BoolVar(&buildStopLex, "lex", false, "Stop after the lexer")
	cmd.Flags().BoolVar(&buildStopParse, "parse", false, "Stop after the parser")
	cmd.Flags().BoolVar(&buildStopTypecheck, "typecheck", false, "Stop after type checking")
	cmd.Flags().BoolVar(&buildDumpTokens, "dump-tokens", false, "Print the token stream")
	cmd.Flags().BoolVar(&buildDumpAST, "dump-ast", false, "Print a textual dump of the AST")
	cmd.Flags().BoolVar(&buildDumpLLVM, "dump-llvm", false, "Print the lowering-contract summary (no LLVM backend is implemented)")
	cmd.Flags().BoolVar(&buildDumpBytecode, "dump-bytecode", false, "Print a disassembly of the compiled bytecode")
	cmd.Flags().IntVarP(&buildOptLevel, "opt-level", "O", -1, "Optimization level (currently logged only, no passes run)")
	cmd.Flags().BoolVarP(&buildInteractive, "interactive", "i", false, "Read-lex-parse-print loop over stdin")
	cmd.Flags().BoolVar(&buildVerbose, "verbose", false, "Verbose phase-by-phase logging")

	return cmd
}

func loadConfig(cmd *cobra.Command) config.Config {
	cfg, _ := config.Load("forge.toml", ".env")
	cfg = cfg.OverrideOptLevel(buildOptLevel, buildOptLevel >= 0)
	cfg = cfg.OverrideVerbose(buildVerbose, cmd.Flags().Changed("verbose"))

	if running, err := version.Parse(Version); err == nil {
		if err := cfg.CheckVersion(running); err != nil {
			fmt.Fprintln(os.Stderr, "forgec:", err)
		}
	}
	return cfg
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	if buildInteractive {
		return runInteractive(cfg)
	}

	if len(args) == 0 {
		return fmt.Errorf("build requires at least one input file (or -i for interactive mode)")
	}

	exitCode := 0
	for _, path := range args {
		if err := buildFile(path, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			exitCode = 1
		}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

func buildFile(path string, cfg config.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	d := diag.NewCollector()
	stage := compiler.StageFull
	switch {
	case buildStopLex:
		stage = compiler.StageLex
	case buildStopParse:
		stage = compiler.StageParse
	case buildStopTypecheck:
		stage = compiler.StageTypecheck
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "forgec: compiling %s (target=%s, opt=%d)\n", path, cfg.Target, cfg.OptLevel)
	}

	result, err := compiler.Compile(string(data), compiler.Options{File: path, Stop: stage}, d)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if buildDumpTokens {
		dumpTokens(result.Tokens)
	}
	if buildDumpAST && result.Program != nil {
		dumpAST(result.Program)
	}
	if buildDumpLLVM {
		fmt.Println("forgec: no LLVM backend is implemented; the compiled bytecode is the sole lowering target (SPEC_FULL.md §6).")
	}
	if buildDumpBytecode && result.Bytecode != nil {
		fmt.Print(bytecode.Disassemble(result.Bytecode))
	}

	d.Print(os.Stderr)
	if d.HasErrors() {
		return fmt.Errorf("%s: compilation failed", path)
	}

	if result.Bytecode != nil && buildOutput != "" {
		out, err := os.Create(buildOutput)
		if err != nil {
			return fmt.Errorf("cannot create %s: %w", buildOutput, err)
		}
		defer out.Close()
		if err := bytecode.Write(out, result.Bytecode); err != nil {
			return fmt.Errorf("writing %s: %w", buildOutput, err)
		}
	}

	return nil
}

func dumpTokens(tokens []lexer.Token) {
	for _, tok := range tokens {
		fmt.Printf("%-15s %q (line %d, col %d)\n", tok.Kind, tok.Lexeme, tok.Line, tok.Column)
	}
}

func dumpAST(prog *ast.Program) {
	for i, stmt := range prog.Statements {
		fmt.Printf("[%d] %#v\n", i, stmt)
	}
}

func runInteractive(cfg config.Config) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("forgec interactive mode (read-lex-parse-print). Ctrl-D to exit.")
	for {
		fmt.Print("forge> ")
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()
		d := diag.NewCollector()
		result, err := compiler.Compile(line, compiler.Options{File: "<stdin>", Stop: compiler.StageParse}, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		d.Print(os.Stderr)
		if result.Program != nil {
			fmt.Printf("parsed %d statement(s)\n", len(result.Program.Statements))
		}
	}
}
