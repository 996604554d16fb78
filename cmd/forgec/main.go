// Command forgec is Forge's compile driver: a cobra root command with
// build-info version detection, mirroring the teacher's cmd/solast/main.go
// shape (SPEC_FULL.md §4.11).
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.Main.Version != "" && info.Main.Version != "(devel)" {
				Version = info.Main.Version
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					if len(setting.Value) >= 7 {
						GitCommit = setting.Value[:7]
					}
				case "vcs.time":
					BuildTime = setting.Value
				}
			}
		}
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "forgec",
		Short: "forgec: the Forge language compiler",
		Long: `forgec compiles Forge source to bytecode and runs it on the
bundled stack-based virtual machine.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	}

	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newFmtCheckCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
