// Command loopkernel mines innermost array-touching loops out of a C/C++
// translation unit and reconstructs each as a standalone, compile-checked
// kernel.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version info, set by ldflags during build — mirrors the teacher's own
// cmd/ailang/main.go version plumbing.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	root := &cobra.Command{
		Use:   "loopkernel",
		Short: "Mine and reconstruct standalone kernels from C/C++ loops",
	}

	shared := pflag.NewFlagSet("loopkernel-shared", pflag.ContinueOnError)
	verbose := shared.Bool("verbose", false, "print per-loop diagnostics to stderr")
	root.PersistentFlags().AddFlagSet(shared)

	root.AddCommand(newReconstructCmd(verbose))
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("loopkernel %s\n", bold(Version))
			if Commit != "unknown" {
				fmt.Printf("commit: %s\n", Commit)
			}
			if BuildTime != "unknown" {
				fmt.Printf("built:  %s\n", BuildTime)
			}
		},
	}
}
