// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package container combines smooth and nonsmooth atoms into one composite objective.
//
// The objective of a container is
//
//	F(x) = ∑ fᵢ(x) + ∑ hⱼ(𝒜ⱼx) + smoothq(x) + quadratic(x)
//
// where smoothq is the sum of the quadratics attached to the smooth atoms and quadratic
// is attached to the container itself. Both quadratics are reported by NonsmoothObjective
// only, and take part in every proximal evaluation; SmoothObjective never includes them.
// An outer solver that perturbs the container by its own quadratic therefore never
// counts them twice.
//
// The proximal operator of the nonsmooth part is exact when the stacked transform is the
// identity or a coordinate selector. Otherwise it is computed by solving the dual problem
// with FISTA, keeping the dual state in a Session.
package container

import (
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/atoms"
	"github.com/curioloop/regreg/composite"
	"github.com/curioloop/regreg/dual"
	"github.com/curioloop/regreg/fista"
)

// Container is a composite objective built from atoms.
// It owns its coefficients and a default session, so it must be fitted by
// one solver at a time.
type Container struct {
	n         int
	smooth    []atoms.Smooth
	nonsmooth []atoms.Atom
	smoothq   composite.Quadratic
	quadratic composite.Quadratic

	t    affine.Transform
	h    atoms.Nonsmooth
	segs affine.Segments
	fast bool

	coefs   []float64
	grad    []float64
	session *Session
}

// New classifies the atoms and stacks the nonsmooth ones. A container without
// nonsmooth atoms uses the zero atom.
func New(as ...atoms.Atom) (*Container, error) {
	if len(as) == 0 {
		return nil, composite.ErrNoAtoms
	}

	c := &Container{n: as[0].Shape()}
	for _, a := range as {
		if a.Shape() != c.n {
			return nil, composite.ErrShapeMismatch
		}
		switch a := a.(type) {
		case atoms.Smooth:
			c.smooth = append(c.smooth, a)
			c.smoothq = c.smoothq.Add(a.Quadratic())
		case atoms.Composed, atoms.Nonsmooth:
			c.nonsmooth = append(c.nonsmooth, a)
		default:
			return nil, composite.ErrUnknownAtom
		}
	}

	stacked := c.nonsmooth
	if len(stacked) == 0 {
		stacked = []atoms.Atom{atoms.Zero{N: c.n}}
	}
	t, h, segs, err := dual.Stack(c.n, stacked...)
	if err != nil {
		return nil, err
	}
	c.t, c.h, c.segs = t, h, segs
	c.fast = t.IsIdentity() || t.IsSelector() && distinct(t.(affine.Selection).Indices())

	c.coefs = make([]float64, c.n)
	c.grad = make([]float64, c.n)
	c.session = NewSession(DefaultControl())
	return c, nil
}

func distinct(idx []int) bool {
	s := slices.Clone(idx)
	slices.Sort(s)
	return len(slices.Compact(s)) == len(idx)
}

func (c *Container) Shape() int { return c.n }

func (c *Container) Coefs() []float64 { return c.coefs }

// Transform returns the stacked transform of the nonsmooth atoms.
func (c *Container) Transform() affine.Transform { return c.t }

// Atom returns the stacked nonsmooth atom.
func (c *Container) Atom() atoms.Nonsmooth { return c.h }

// Segments returns the blocks of the stacked atom, one per nonsmooth atom.
func (c *Container) Segments() affine.Segments { return c.segs }

// Quadratic returns the quadratic attached to the container.
func (c *Container) Quadratic() composite.Quadratic { return c.quadratic }

// SetQuadratic replaces the quadratic attached to the container.
func (c *Container) SetQuadratic(q composite.Quadratic) { c.quadratic = q }

// SmoothQuadratic returns the sum of the quadratics attached to the smooth atoms.
func (c *Container) SmoothQuadratic() composite.Quadratic { return c.smoothq }

// Session returns the session used by Proximal.
func (c *Container) Session() *Session { return c.session }

// SmoothObjective sums the smooth atoms, excluding their attached quadratics.
func (c *Container) SmoothObjective(x, g []float64, mode composite.Mode) (f float64, err error) {
	if !mode.Valid() {
		return 0, composite.ErrMode
	}
	if mode.NeedGrad() {
		clear(g)
	}
	for _, a := range c.smooth {
		v, err := a.SmoothObjective(x, c.grad, mode)
		if err != nil {
			return 0, err
		}
		f += v
		if mode.NeedGrad() {
			floats.Add(g, c.grad)
		}
	}
	return
}

// NonsmoothObjective sums the nonsmooth atoms, the quadratics of the smooth atoms
// and the quadratic of the container.
func (c *Container) NonsmoothObjective(x []float64, check bool) float64 {
	var v float64
	for _, a := range c.nonsmooth {
		switch a := a.(type) {
		case atoms.Composed:
			v += a.NonsmoothObjective(x, check)
		case atoms.Nonsmooth:
			v += a.NonsmoothObjective(x, check)
		}
	}
	return v + c.smoothq.Value(x) + c.quadratic.Value(x)
}

// Proximal writes argmin h(z) + q(z) + smoothq(z) + quadratic(z) into dst using the
// session owned by the container.
func (c *Container) Proximal(dst []float64, q composite.Term) error {
	_, err := c.ProximalWith(c.session, dst, q)
	return err
}

// ProximalWith is Proximal with an explicit session. The result of the inner dual
// solve is returned, or nil when the proximal point was computed exactly.
func (c *Container) ProximalWith(s *Session, dst []float64, q composite.Term) (*fista.Result, error) {
	if !(q.Coef > 0) {
		return nil, composite.ErrCoef
	}
	if len(dst) != c.n {
		panic("bound check error")
	}

	agg := composite.NewQuadratic(q).Add(c.smoothq).Add(c.quadratic)

	if c.fast {
		c.exactProximal(dst, agg.Collapse(c.n))
		return nil, nil
	}

	if err := s.prepare(c, agg); err != nil {
		return nil, err
	}
	res, err := s.solve()
	if err != nil {
		return nil, err
	}
	s.dual.Primal(dst, s.dual.Coefs())
	return res, nil
}

// exactProximal evaluates the proximal map of the single stacked atom directly.
// Coordinates outside a selector stay at the proximal point.
func (c *Container) exactProximal(dst []float64, q composite.Term) {
	if c.t.IsIdentity() {
		c.h.Proximal(dst, q)
		return
	}
	idx := c.t.(affine.Selection).Indices()
	sub := composite.Term{Coef: q.Coef, Linear: make([]float64, len(idx))}
	for k, i := range idx {
		sub.Linear[k] = q.Linear[i]
	}
	out := make([]float64, len(idx))
	c.h.Proximal(out, sub)

	q.Point(dst)
	for k, i := range idx {
		dst[i] = out[k]
	}
}

// Solve minimizes the container with FISTA configured by p, ignoring p.Objective.
// The solution is left in Coefs.
func (c *Container) Solve(p fista.Problem, logger *composite.Logger) (*fista.Result, error) {
	p.Objective = c
	opt, err := p.New(logger)
	if err != nil {
		return nil, err
	}
	return opt.Fit(opt.Init())
}
