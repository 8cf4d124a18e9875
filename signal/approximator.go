// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package signal fits generalized lasso signal approximations
//
//	minᵦ ½‖y - β‖² + λ‖Dβ‖₁
//
// through their dual
//
//	minᵤ ½‖y - Dᵀu‖²  s.t. ‖u‖∞ ≤ λ
//
// with β = y - Dᵀu at the solution.
package signal

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/atoms"
	"github.com/curioloop/regreg/composite"
	"github.com/curioloop/regreg/container"
	"github.com/curioloop/regreg/fista"
)

// Approximator is the dual problem of a signal approximation over u ∈ ℝᵐ
// for a penalty matrix D of shape m×n. It is a composite objective.
type Approximator struct {
	*container.Container
	d      *mat.Dense
	y      []float64
	lambda float64
}

// New returns the approximator of y under the penalty λ‖Dβ‖₁.
func New(d *mat.Dense, y []float64, lambda float64) (*Approximator, error) {
	m, n := d.Dims()
	if n != len(y) {
		return nil, composite.ErrShapeMismatch
	}
	if lambda < 0 {
		return nil, errors.New("penalty must not less than 0")
	}
	c, err := container.New(
		atoms.NewSquaredError(d.T(), y),
		atoms.LInfBall{N: m, Bound: lambda},
	)
	if err != nil {
		return nil, err
	}
	return &Approximator{Container: c, d: d, y: slices.Clone(y), lambda: lambda}, nil
}

// Lambda returns the penalty parameter.
func (a *Approximator) Lambda() float64 { return a.lambda }

// Output returns the primal fit β = y - Dᵀu and the residual r = Dᵀu at the
// current coefficients u.
func (a *Approximator) Output() (beta, r []float64) {
	_, n := a.d.Dims()
	r = make([]float64, n)
	u := a.Coefs()
	mat.NewVecDense(n, r).MulVec(a.d.T(), mat.NewVecDense(len(u), u))
	beta = make([]float64, n)
	floats.SubTo(beta, a.y, r)
	return
}

// Objective evaluates the primal objective ½‖Dᵀu‖² + λ‖Dβ‖₁ at β = y - Dᵀu.
func (a *Approximator) Objective(u []float64) float64 {
	m, n := a.d.Dims()
	r := mat.NewVecDense(n, nil)
	r.MulVec(a.d.T(), mat.NewVecDense(m, u))
	beta := mat.NewVecDense(n, nil)
	beta.SubVec(mat.NewVecDense(n, a.y), r)
	db := mat.NewVecDense(m, nil)
	db.MulVec(a.d, beta)
	return mat.Dot(r, r)/2 + a.lambda*floats.Norm(db.RawVector().Data, 1)
}

// Lipschitz estimates the Lipschitz constant ‖D‖² of the dual gradient.
func (a *Approximator) Lipschitz(opts affine.PowerOptions) float64 {
	return affine.PowerL(affine.NewLinear(a.d, nil), opts).Norm
}

// Fit solves the dual with FISTA from the current coefficients using a step
// of 1.05 times the estimated Lipschitz constant.
func (a *Approximator) Fit(stop fista.Termination, logger *composite.Logger) (*fista.Result, error) {
	lip := 1.05 * a.Lipschitz(affine.PowerOptions{Logger: logger})
	return a.Solve(fista.Problem{
		Stop:      stop,
		Lipschitz: math.Max(lip, 1e-12),
	}, logger)
}

// FirstDifference returns the (n-1)×n matrix of the fused lasso penalty,
// (Dβ)ᵢ = βᵢ₊₁ - βᵢ.
func FirstDifference(n int) *mat.Dense {
	if n < 2 {
		panic("signal: first difference needs at least two points")
	}
	d := mat.NewDense(n-1, n, nil)
	for i := 0; i < n-1; i++ {
		d.Set(i, i, -1)
		d.Set(i, i+1, 1)
	}
	return d
}
