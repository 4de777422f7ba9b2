// Package root assembles the cdcl command-line tool's cobra commands.
package root

import (
	"github.com/spf13/cobra"

	"github.com/c-cube/cdcl/cmd/cdcl/solve"
)

// NewRootCmd builds the top-level "cdcl" command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cdcl",
		Short: "cdcl is a CDCL(T) satisfiability solver",
		Long:  "cdcl solves propositional satisfiability problems given in DIMACS CNF format.",
	}

	rootCmd.AddCommand(solve.NewSolveCmd())

	return rootCmd
}
