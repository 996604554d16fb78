package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/pkg/compiler"
	"github.com/forge-lang/forgec/pkg/vm"
)

var runWatch bool

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Build a Forge source file and execute it on the bytecode VM",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	cmd.Flags().BoolVar(&runWatch, "watch", false, "Recompile and re-run whenever the file changes")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !runWatch {
		return buildAndRun(path)
	}
	return watchAndRun(path)
}

func buildAndRun(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	d := diag.NewCollector()
	result, err := compiler.Compile(string(data), compiler.Options{File: path}, d)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	d.Print(os.Stderr)
	if d.HasErrors() {
		return fmt.Errorf("%s: compilation failed", path)
	}

	machine := vm.Load(d, result.Bytecode, result.Compiler.Functions(), result.Compiler.GlobalSlots(), result.Compiler.GlobalCount())
	if err := machine.Run(); err != nil {
		d.Print(os.Stderr)
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Println("global table:")
	for name, slot := range result.Compiler.GlobalSlots() {
		fmt.Printf("  %s = <function, global slot %d>\n", name, slot)
	}
	return nil
}

// watchAndRun recompiles and reruns path whenever it changes on disk. The
// watcher goroutine only ever sends a notification over a channel; it
// never touches the collector, symbol table, or VM state directly —
// SPEC_FULL.md §5's "no two phases hold the collector concurrently"
// invariant holds at the process level because every rebuild still runs
// on this single goroutine.
func watchAndRun(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	if err := buildAndRun(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Printf("forgec: %s changed, rebuilding\n", path)
			if err := buildAndRun(path); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "forgec: watch error:", err)
		}
	}
}
