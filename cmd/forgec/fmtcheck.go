package main

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/pkg/compiler"
)

func newFmtCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt-check <glob>",
		Short: "Check that every matched Forge source file lexes and parses cleanly",
		Args:  cobra.ExactArgs(1),
		RunE:  runFmtCheck,
	}
}

func runFmtCheck(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("invalid glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("fmt-check: no files matched %q", pattern)
	}

	failed := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read: %v\n", path, err)
			failed++
			continue
		}

		d := diag.NewCollector()
		if _, err := compiler.Compile(string(data), compiler.Options{File: path, Stop: compiler.StageParse}, d); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if d.HasErrors() {
			d.Print(os.Stderr)
			failed++
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("fmt-check: %d of %d file(s) failed", failed, len(matches))
	}
	return nil
}
