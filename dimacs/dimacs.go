// Package dimacs reads and writes the DIMACS CNF format used by the SAT
// competition tooling, mapping 1-based signed integers onto solver atoms
// through internal/boolformula.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/internal/boolformula"
	"github.com/c-cube/cdcl/solver"
)

// Problem is a parsed CNF instance: nVars variables and a list of clauses,
// each a slice of signed DIMACS literals.
type Problem struct {
	NVars   int
	Clauses [][]int
}

// Parse reads a DIMACS "p cnf <nvars> <nclauses>" file from in. Comment
// lines ("c ...") are skipped; the problem line's clause count is
// advisory and not checked against the number of clauses actually read.
func Parse(in io.Reader) (*Problem, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	p := &Problem{}
	sawHeader := false
	var clause []int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			if len(fields) < 4 || fields[1] != "cnf" {
				return nil, errors.Errorf("dimacs: malformed problem line %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrap(err, "dimacs: problem line variable count")
			}
			p.NVars = n
			sawHeader = true
			continue
		}
		for _, field := range strings.Fields(line) {
			lit, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Wrapf(err, "dimacs: literal %q", field)
			}
			if lit == 0 {
				p.Clauses = append(p.Clauses, clause)
				clause = nil
				continue
			}
			clause = append(clause, lit)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "dimacs: scan")
	}
	if len(clause) > 0 {
		p.Clauses = append(p.Clauses, clause)
	}
	if !sawHeader {
		return nil, errors.New("dimacs: missing problem line")
	}
	return p, nil
}

// Load builds every variable of p through s.NewAtom and adds every clause,
// returning the dense atom.Atom for each 1-based DIMACS variable (index 0
// unused so the slice can be indexed directly by variable number).
func Load(s *solver.Solver, p *Problem) ([]atom.Atom, bool) {
	atoms := make([]atom.Atom, p.NVars+1)
	for i := 1; i <= p.NVars; i++ {
		atoms[i] = s.NewAtom(boolformula.NewVar(i))
	}

	ok := true
	for _, cl := range p.Clauses {
		lits := make([]atom.Atom, len(cl))
		for i, lit := range cl {
			a := atoms[abs(lit)]
			if lit < 0 {
				a = a.Not()
			}
			lits[i] = a
		}
		if !s.AddClauseA(lits, nil) {
			ok = false
		}
	}
	return atoms, ok
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// WriteModel writes a satisfying assignment in the format the SAT
// competition's "v" lines use, one literal per variable in 1..nvars,
// followed by a trailing 0.
func WriteModel(w io.Writer, res *solver.Result, atoms []atom.Atom) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("v"); err != nil {
		return err
	}
	for i := 1; i < len(atoms); i++ {
		val, err := res.Eval(atoms[i])
		if err != nil {
			return err
		}
		lit := i
		if !val {
			lit = -i
		}
		if _, err := fmt.Fprintf(bw, " %d", lit); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString(" 0\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteClause writes a single clause as a space-separated, 0-terminated
// line of signed DIMACS literals, used to print proofs and unsat cores.
func WriteClause(w io.Writer, lits []atom.Atom) error {
	bw := bufio.NewWriter(w)
	for _, a := range lits {
		if _, err := fmt.Fprintf(bw, "%d ", a.Dimacs()); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("0\n"); err != nil {
		return err
	}
	return bw.Flush()
}
