// Package solve implements the "cdcl solve" subcommand: parse a DIMACS
// CNF file, run the solver, and print a SAT/UNSAT verdict in the SAT
// competition's output convention.
package solve

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/c-cube/cdcl/dimacs"
	"github.com/c-cube/cdcl/solver"
	"github.com/c-cube/cdcl/theory"
)

// NewSolveCmd builds the "solve" command.
func NewSolveCmd() *cobra.Command {
	var (
		proof   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "solve <path.cnf>",
		Short: "Solve a DIMACS CNF file",
		Long: `Solve a DIMACS CNF file. For instance:
c this is a comment
p cnf 2 2
1 2 0
1 -2 0
c cnf: (1 or 2) and (1 or not 2)
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(args[0], proof, verbose)
		},
	}

	cmd.Flags().BoolVar(&proof, "proof", false, "print the root clause of the resolution proof on UNSAT")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print search statistics to stderr")

	return cmd
}

func runSolve(path string, wantProof, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	problem, err := dimacs.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	s := solver.New(theory.NoTheory{}, solver.WithProof(wantProof))
	atoms, ok := dimacs.Load(s, problem)

	start := time.Now()
	var res *solver.Result
	if ok {
		res = s.Solve(nil)
	}
	elapsed := time.Since(start)

	if verbose {
		printStats(s.Stats(), elapsed)
	}

	if !ok || res.Kind() == solver.ResultUnsat {
		fmt.Println("s UNSATISFIABLE")
		if wantProof && ok {
			if conflict, err := res.GetProof(); err == nil {
				fmt.Println("c resolution proof root:")
				if err := dimacs.WriteClause(os.Stdout, conflict.Atoms()); err != nil {
					return err
				}
			}
		}
		os.Exit(20)
	}

	fmt.Println("s SATISFIABLE")
	if err := dimacs.WriteModel(os.Stdout, res, atoms); err != nil {
		return err
	}
	os.Exit(10)
	return nil
}

func printStats(st solver.Stats, elapsed time.Duration) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "c time:          %.3fs\n", elapsed.Seconds())
	fmt.Fprintf(os.Stderr, "c variables:     %d\n", st.NVars)
	fmt.Fprintf(os.Stderr, "c clauses:       %d\n", st.NbClauses)
	fmt.Fprintf(os.Stderr, "c conflicts:     %d\n", st.NConflicts)
	fmt.Fprintf(os.Stderr, "c decisions:     %d\n", st.NDecisions)
	fmt.Fprintf(os.Stderr, "c propagations:  %d\n", st.NPropagations)
	fmt.Fprintf(os.Stderr, "c restarts:      %d\n", st.NRestarts)
	fmt.Fprintf(os.Stderr, "c minimized:     %d\n", st.NMinimizedAway)
	fmt.Fprintf(os.Stderr, "\n")
}
