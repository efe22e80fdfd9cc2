package main

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/mat"

	"q.log/tableau/instance"
	"q.log/tableau/metrics"
	"q.log/tableau/mip"
	"q.log/tableau/model"
	"q.log/tableau/simplex"
)

// checkTolerance is looser than the pivot epsilon: the reported point has
// gone through many eliminations.
const checkTolerance = 1e-6

type solveOptions struct {
	method   string
	search   string
	integer  []int
	maxDepth int
	maxNodes int
	maxCuts  int
	maxIter  int
	epsilon  float64

	strictAlternate bool
	history         bool
	metrics         bool
}

func newSolveCmd(logger *logrus.Logger) *cobra.Command {
	o := solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Solve the problem in FILE (.mps, .yaml, .yml or .json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.OutOrStdout(), logger.WithField("file", filepath.Base(args[0])), args[0])
		},
	}

	o.addFlags(cmd.Flags())

	return cmd
}

func (o *solveOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.method, "method", mip.Primal.String(), "solution method: primal, dual, bnb or gomory")
	fs.StringVar(&o.search, "search", mip.DepthFirst.String(), "branch-and-bound search order: dfs or best")
	fs.IntSliceVar(&o.integer, "integer", nil, "indices of the integer variables (default: as marked in the file, else all)")
	fs.IntVar(&o.maxDepth, "max-depth", 64, "branch-and-bound depth limit")
	fs.IntVar(&o.maxNodes, "max-nodes", 10000, "branch-and-bound node limit")
	fs.IntVar(&o.maxCuts, "max-cuts", 100, "Gomory cut limit")
	fs.IntVar(&o.maxIter, "max-iter", 10000, "pivot limit per simplex solve")
	fs.Float64Var(&o.epsilon, "epsilon", 1e-9, "numerical tolerance")

	fs.BoolVar(&o.strictAlternate, "strict-alternate", false, "report alternate optima only from zero reduced costs")
	fs.BoolVar(&o.history, "history", false, "print the model, every tableau of the final solve, the final basis and the node trace")
	fs.BoolVar(&o.metrics, "metrics", false, "print solver counters in Prometheus text format")
}

func (o *solveOptions) run(out io.Writer, logger logrus.FieldLogger, path string) error {
	method, err := mip.ParseMethod(o.method)
	if err != nil {
		return err
	}
	search, err := mip.ParseSearch(o.search)
	if err != nil {
		return err
	}

	m, err := instance.Load(path)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return errors.Wrapf(err, "validating %s", path)
	}
	logger.WithFields(logrus.Fields{
		"rows":      m.NumRows,
		"cols":      m.NumCols,
		"direction": m.Direction,
	}).Info("loaded problem")

	lp := []simplex.Option{
		simplex.WithMaxIterations(o.maxIter),
		simplex.WithHistory(o.history),
	}
	if o.strictAlternate {
		lp = append(lp, simplex.WithStrictAlternate())
	}
	opts := []mip.Option{
		mip.WithLogger(logger),
		mip.WithEpsilon(o.epsilon),
		mip.WithMaxDepth(o.maxDepth),
		mip.WithMaxNodes(o.maxNodes),
		mip.WithMaxCuts(o.maxCuts),
		mip.WithSearch(search),
		mip.WithSimplexOptions(lp...),
	}
	if len(o.integer) > 0 {
		opts = append(opts, mip.WithInteger(o.integer...))
	}

	var reg *prometheus.Registry
	if o.metrics {
		reg = prometheus.NewRegistry()
		rec, err := metrics.NewRecorder(reg)
		if err != nil {
			return err
		}
		opts = append(opts, mip.WithMetrics(rec))
	}

	res, err := mip.Solve(m, method, opts...)
	if err != nil {
		return errors.Wrapf(err, "solving %s", path)
	}
	logger.WithFields(logrus.Fields{
		"method":     method,
		"status":     res.Status,
		"iterations": res.Iterations,
	}).Info("solved")

	report(out, m, method, res)
	if o.history {
		printHistory(out, m, res)
	}
	if reg != nil {
		fmt.Fprintln(out)
		if err := metrics.WriteText(out, reg); err != nil {
			return err
		}
	}
	return nil
}

func report(w io.Writer, m *model.Model, method mip.Method, res *mip.Result) {
	fmt.Fprintf(w, "status: %s\n", res.Status)
	if res.Solution == nil {
		fmt.Fprintf(w, "iterations: %d\n", res.Iterations)
		return
	}

	fmt.Fprintf(w, "objective: %g\n", res.Objective)
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for j, v := range res.Solution {
		fmt.Fprintf(tw, "  %s\t= %g\n", m.V[j].Name, v)
	}
	tw.Flush()

	switch method {
	case mip.Primal, mip.Dual:
		fmt.Fprintf(w, "alternate optimum: %t\n", res.Alternate)
	case mip.BranchAndBound:
		fmt.Fprintf(w, "nodes: %d\n", len(res.Nodes))
	case mip.Gomory:
		fmt.Fprintf(w, "cuts: %d\n", res.Cuts)
	}
	fmt.Fprintf(w, "iterations: %d\n", res.Iterations)

	if err := m.Check(res.Solution, checkTolerance); err != nil {
		fmt.Fprintf(w, "check: %v\n", err)
		return
	}
	fmt.Fprintln(w, "check: ok")
}

func printHistory(w io.Writer, m *model.Model, res *mip.Result) {
	fmt.Fprintln(w, "\nmodel:")
	m.Fprint(w)

	for i, snap := range res.History {
		fmt.Fprintf(w, "\ntableau %d:\n%v\n", i, mat.Formatted(snap, mat.Squeeze()))
	}
	if res.Tableau != nil {
		fmt.Fprintln(w, "\nfinal tableau:")
		res.Tableau.Fprint(w)
	}

	if len(res.Nodes) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tPARENT\tDEPTH\tVAR\tBOUND\tOUTCOME")
	for _, n := range res.Nodes {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%g\t%s\n", n.ID, n.Parent, n.Depth, n.Var, n.Bound, n.Outcome)
	}
	tw.Flush()
}
