// cmd/highs is a minimal CLI: read an MPS file, solve it, print the
// solution. The option *parser* proper (spec.md §6's full table) is
// out of scope for a command line, so only a handful of direct flags
// are exposed, in the teacher's plain-os.Args-adjacent style.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.lp/highs/highs"
	"go.lp/highs/logging"
	"go.lp/highs/mps"
	"go.lp/highs/options"
)

func main() {
	mpsFile := flag.String("mps", "", "path to an MPS file")
	maxIter := flag.Int("max-iterations", 0, "bound on major iterations (0 = unbounded)")
	presolve := flag.Bool("presolve", true, "no-op, acknowledged for compatibility")
	strategy := flag.String("strategy", "dual", "simplex strategy: dual|primal|sip|pami")
	flag.Parse()

	if *mpsFile == "" {
		fmt.Fprintln(os.Stderr, "usage: highs -mps problem.mps")
		os.Exit(2)
	}
	if !*presolve {
		fmt.Fprintln(os.Stderr, "highs: -presolve=false acknowledged; presolve is not implemented")
	}

	opt := options.Default()
	switch *strategy {
	case "dual":
		opt.SimplexStrategy = options.StrategyDual
	case "primal":
		opt.SimplexStrategy = options.StrategyPrimal
		fmt.Fprintln(os.Stderr, "highs: -strategy=primal acknowledged; no primal-specific path exists, running the dual algorithm")
	case "sip":
		opt.SimplexStrategy = options.StrategySIP
		fmt.Fprintln(os.Stderr, "highs: -strategy=sip acknowledged; no SIP-specific path exists, running the dual algorithm")
	case "pami":
		opt.SimplexStrategy = options.StrategyPAMI
	default:
		fmt.Fprintf(os.Stderr, "highs: unknown -strategy %q\n", *strategy)
		os.Exit(2)
	}
	opt.MaxIterations = *maxIter

	logger := logging.New(os.Stdout)

	m, code, err := mps.Read(*mpsFile, opt, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "highs: reading %s: %v (%s)\n", *mpsFile, err, code)
		os.Exit(1)
	}

	h := highs.New()
	h.Options = opt
	h.Logger = logger
	if err := h.PassModel(m); err != nil {
		fmt.Fprintf(os.Stderr, "highs: %v\n", err)
		os.Exit(1)
	}

	if _, err := h.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "highs: %v\n", err)
		os.Exit(1)
	}

	if err := h.WriteSolution(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "highs: %v\n", err)
		os.Exit(1)
	}
}
