// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dual

import (
	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/atoms"
	"github.com/curioloop/regreg/composite"
)

// Problem is the Fenchel dual of the proximal problem
//
//	minₓ g(Ax + b) + c/2‖x - p‖²
//
// where c and p are the coefficient and the minimizer of a proximal quadratic.
// Over the dual variable v it minimizes
//
//	F(v) + g*(v),  F(v) = c/2(‖x(v)‖² - ‖p‖²) - vᵀb
//
// with the primal reconstruction x(v) = p - Aᵀ(v/c) and ∇F(v) = -(Ax(v) + b).
// The gradient of F is Lipschitz with constant ‖A‖²/c.
//
// Problem is a composite objective whose coefficients are the dual variable.
// It keeps internal buffers and must be owned by a single solver.
type Problem struct {
	t    affine.Transform
	g    atoms.Nonsmooth
	conj atoms.Nonsmooth

	c     float64   // proximal coefficient
	p     []float64 // n, proximal point
	pp    float64   // ‖p‖²
	b     []float64 // m, offset of the transform
	coefs []float64 // m, dual variable

	x []float64 // n, reconstruction buffer
	u []float64 // m, scaled dual buffer
}

// NewProblem returns the dual of the proximal problem of g∘t under quadratic q.
// The dual variable starts at the proximal point of g* at zero, which lies in the
// domain of g* even when g* is the indicator of a set excluding the origin.
func NewProblem(q composite.Quadratic, t affine.Transform, g atoms.Nonsmooth) (*Problem, error) {
	if t.DualShape() != g.Shape() {
		return nil, composite.ErrShapeMismatch
	}
	n, m := t.PrimalShape(), t.DualShape()
	d := &Problem{
		t:     t,
		g:     g,
		conj:  g.Conjugate(),
		p:     make([]float64, n),
		b:     make([]float64, m),
		coefs: make([]float64, m),
		x:     make([]float64, n),
		u:     make([]float64, m),
	}
	// b = 𝒜(0)
	t.AffineMap(d.b, d.x)
	d.conj.Proximal(d.coefs, composite.Term{Coef: 1})
	if err := d.SetQuadratic(q); err != nil {
		return nil, err
	}
	return d, nil
}

// SetQuadratic replaces the proximal quadratic, keeping the dual variable as a warm start.
func (d *Problem) SetQuadratic(q composite.Quadratic) error {
	term := q.Collapse(len(d.p))
	if !(term.Coef > 0) {
		return composite.ErrCoef
	}
	d.c = term.Coef
	term.Point(d.p)
	d.pp = floats.Dot(d.p, d.p)
	return nil
}

// Coef returns the proximal coefficient c.
func (d *Problem) Coef() float64 { return d.c }

// Transform returns the stacked transform A.
func (d *Problem) Transform() affine.Transform { return d.t }

// Atom returns the primal atom g.
func (d *Problem) Atom() atoms.Nonsmooth { return d.g }

// Lipschitz scales an estimate of ‖A‖² to the Lipschitz constant of ∇F.
func (d *Problem) Lipschitz(ref float64) float64 { return ref / d.c }

func (d *Problem) Coefs() []float64 { return d.coefs }

// Primal writes the reconstruction x(v) = p - Aᵀ(v/c) into dst.
func (d *Problem) Primal(dst, v []float64) {
	floats.ScaleTo(d.u, 1/d.c, v)
	d.t.AdjointMap(dst, d.u)
	floats.SubTo(dst, d.p, dst)
}

func (d *Problem) SmoothObjective(v, g []float64, mode composite.Mode) (f float64, err error) {
	if !mode.Valid() {
		return 0, composite.ErrMode
	}
	d.Primal(d.x, v)
	if mode.NeedFunc() {
		f = d.c/2*(floats.Dot(d.x, d.x)-d.pp) - floats.Dot(v, d.b)
	}
	if mode.NeedGrad() {
		d.t.AffineMap(g, d.x)
		floats.Scale(-1, g)
	}
	return
}

func (d *Problem) NonsmoothObjective(v []float64, check bool) float64 {
	return d.conj.NonsmoothObjective(v, check)
}

func (d *Problem) Proximal(dst []float64, q composite.Term) error {
	if !(q.Coef > 0) {
		return composite.ErrCoef
	}
	d.conj.Proximal(dst, q)
	return nil
}
