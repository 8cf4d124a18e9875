// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package atoms

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/regreg/composite"
	"github.com/curioloop/regreg/numdiff"
)

// quadratic is the attached perturbation shared by the smooth atoms.
type quadratic struct {
	q composite.Quadratic
}

func (q *quadratic) Quadratic() composite.Quadratic { return q.q }

// SetQuadratic replaces the attached perturbation.
func (q *quadratic) SetQuadratic(p composite.Quadratic) { q.q = p }

// SquaredError is the loss ½‖Ax - y‖₂².
type SquaredError struct {
	quadratic
	a    mat.Matrix
	y    []float64
	r    []float64
	grad *mat.VecDense
}

// NewSquaredError returns the squared error of the design a against y.
// A nil design stands for the identity.
func NewSquaredError(a mat.Matrix, y []float64) *SquaredError {
	n := len(y)
	if a != nil {
		r, c := a.Dims()
		if r != len(y) {
			panic("atoms: design rows not match response")
		}
		n = c
	}
	return &SquaredError{
		a:    a,
		y:    slices.Clone(y),
		r:    make([]float64, len(y)),
		grad: mat.NewVecDense(n, nil),
	}
}

func (s *SquaredError) Shape() int { return s.grad.Len() }
func (*SquaredError) Kind() Kind   { return KindSmooth }

// SmoothObjective evaluates the loss and its gradient Aᵀ(Ax - y).
// It uses internal buffers and must not be called concurrently.
func (s *SquaredError) SmoothObjective(x, g []float64, mode composite.Mode) (f float64, err error) {
	if !mode.Valid() {
		return 0, composite.ErrMode
	}
	if s.a == nil {
		copy(s.r, x)
	} else {
		mat.NewVecDense(len(s.r), s.r).MulVec(s.a, mat.NewVecDense(len(x), x))
	}
	floats.Sub(s.r, s.y)

	if mode.NeedFunc() {
		f = floats.Dot(s.r, s.r) / 2
	}
	if mode.NeedGrad() {
		if s.a == nil {
			copy(g, s.r)
		} else {
			s.grad.MulVec(s.a.T(), mat.NewVecDense(len(s.r), s.r))
			copy(g, s.grad.RawVector().Data)
		}
	}
	return
}

// SmoothFunc wraps a user supplied differentiable function.
type SmoothFunc struct {
	quadratic
	n    int
	f    numdiff.Func
	grad func(x, g []float64)
}

// NewSmoothFunc returns the smooth atom f on ℝⁿ. When grad is nil the gradient
// is approximated by central differences.
func NewSmoothFunc(n int, f numdiff.Func, grad func(x, g []float64)) *SmoothFunc {
	if grad == nil {
		grad = func(x, g []float64) {
			numdiff.Gradient(f, slices.Clone(x), g, numdiff.Central)
		}
	}
	return &SmoothFunc{n: n, f: f, grad: grad}
}

func (s *SmoothFunc) Shape() int { return s.n }
func (*SmoothFunc) Kind() Kind   { return KindSmooth }

func (s *SmoothFunc) SmoothObjective(x, g []float64, mode composite.Mode) (f float64, err error) {
	if !mode.Valid() {
		return 0, composite.ErrMode
	}
	if mode.NeedGrad() {
		s.grad(x, g)
	}
	if mode.NeedFunc() {
		f = s.f(x)
	}
	return
}
