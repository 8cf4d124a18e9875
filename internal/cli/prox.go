// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/atoms"
	"github.com/curioloop/regreg/composite"
	"github.com/curioloop/regreg/container"
	"github.com/curioloop/regreg/signal"
)

type proxOutput struct {
	X          []float64 `json:"x"`
	Exact      bool      `json:"exact"`
	Iterations int       `json:"iterations,omitempty"`
}

func (c *CLI) newProxCommand() *cobra.Command {
	var y []float64
	var lambda, coef float64
	var fused, forceDual bool

	cmd := &cobra.Command{
		Use:   "prox",
		Short: "Evaluate the proximal map of an ℓ₁ penalty at a point",
		Args:  cobra.NoArgs,
		Example: `  # Exact soft-thresholding
  regreg prox --y 1,-2,0.5 --lambda 1

  # Same point through the dual solver
  regreg prox --y 1,-2,0.5 --lambda 1 --dual

  # Proximal map of the fused penalty λ‖Dx‖₁
  regreg prox --y 0,1,3,2 --lambda 0.5 --fused`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := len(y)
			if n == 0 {
				return errors.New("point is required")
			}

			var atom atoms.Atom
			switch {
			case fused:
				if n < 2 {
					return errors.New("fused penalty needs at least two points")
				}
				d := signal.FirstDifference(n)
				atom = atoms.NewAffine(affine.NewLinear(d, nil), atoms.L1Norm{N: n - 1, Lambda: lambda})
			case forceDual:
				ones := make([]float64, n)
				for i := range ones {
					ones[i] = 1
				}
				atom = atoms.NewAffine(affine.NewLinear(mat.NewDiagDense(n, ones), nil), atoms.L1Norm{N: n, Lambda: lambda})
			default:
				atom = atoms.L1Norm{N: n, Lambda: lambda}
			}

			ct, err := container.New(atom)
			if err != nil {
				return err
			}
			s := ct.Session()
			s.Control.Logger = c.solverLogger()

			x := make([]float64, n)
			res, err := ct.ProximalWith(s, x, composite.Term{Coef: coef, Center: y})
			if err != nil {
				return err
			}

			out := proxOutput{X: x, Exact: res == nil}
			if res != nil {
				out.Iterations = res.NumIter
				slog.Debug("Dual solve completed", "iterations", res.NumIter, "status", res.Status.String())
			}
			return printJSON(cmd, out)
		},
	}

	cmd.Flags().Float64SliceVar(&y, "y", nil, "Proximal center")
	cmd.Flags().Float64Var(&lambda, "lambda", 1, "Penalty parameter")
	cmd.Flags().Float64Var(&coef, "coef", 1, "Quadratic coefficient of the proximal map")
	cmd.Flags().BoolVar(&fused, "fused", false, "Penalize first differences instead of values")
	cmd.Flags().BoolVar(&forceDual, "dual", false, "Route the penalty through the dual solver")
	return cmd
}
