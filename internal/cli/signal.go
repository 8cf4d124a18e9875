// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/regreg/fista"
	"github.com/curioloop/regreg/signal"
)

type signalOutput struct {
	Beta       []float64 `json:"beta"`
	Objective  float64   `json:"objective"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Status     string    `json:"status"`
}

func (c *CLI) newSignalCommand() *cobra.Command {
	var y []float64
	var lambda float64
	var fused bool
	var stop fista.Termination

	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Fit a lasso or fused lasso signal approximation",
		Args:  cobra.NoArgs,
		Example: `  # Soft-threshold a signal
  regreg signal --y 1,-2,0.5 --lambda 1

  # Fused lasso (total variation) denoising
  regreg signal --y 0.1,-0.2,2,2.2,1.7 --lambda 0.5 --fused`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(y) == 0 {
				return errors.New("signal is required")
			}
			if fused && len(y) < 2 {
				return errors.New("fused penalty needs at least two points")
			}

			var d *mat.Dense
			if fused {
				d = signal.FirstDifference(len(y))
			} else {
				d = mat.NewDense(len(y), len(y), nil)
				for i := range y {
					d.Set(i, i, 1)
				}
			}

			a, err := signal.New(d, y, lambda)
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := a.Fit(stop, c.solverLogger())
			if err != nil {
				return err
			}
			slog.Debug("Signal approximation completed",
				"iterations", res.NumIter, "status", res.Status.String(), "duration", time.Since(start))

			beta, _ := a.Output()
			return printJSON(cmd, signalOutput{
				Beta:       beta,
				Objective:  a.Objective(a.Coefs()),
				Iterations: res.NumIter,
				Converged:  res.OK,
				Status:     res.Status.String(),
			})
		},
	}

	cmd.Flags().Float64SliceVar(&y, "y", nil, "Observed signal")
	cmd.Flags().Float64Var(&lambda, "lambda", 1, "Penalty parameter")
	cmd.Flags().BoolVar(&fused, "fused", false, "Penalize first differences instead of values")
	cmd.Flags().IntVar(&stop.MaxIterations, "max-its", 5000, "Maximum number of iterations")
	cmd.Flags().IntVar(&stop.MinIterations, "min-its", 5, "Minimum number of iterations")
	cmd.Flags().Float64Var(&stop.Tolerance, "tol", 1e-12, "Relative objective change tolerance")
	cmd.Flags().DurationVar(&stop.MaxDuration, "timeout", 0, "Wall-clock limit (0 for none)")
	return cmd
}
