// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package atoms defines the terms a composite objective is built from.
//
// An atom is one of four closed variants:
//   - Smooth: differentiable, with a value and gradient and an attached quadratic.
//   - Nonsmooth: a seminorm, constraint or penalty with a proximal operator and a conjugate.
//   - Affine: a Nonsmooth atom composed with an affine transform, h(𝒜x).
//   - Cone: a cone constraint composed with an affine transform, 𝒜x ∈ 𝒦.
//
// Affine and Cone atoms have no proximal operator of their own; they are handled
// through their transform and inner atom (see Split).
package atoms

import (
	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/composite"
)

// Kind tags the variant of an atom.
type Kind int

const (
	KindSmooth Kind = iota
	KindNonsmooth
	KindAffine
	KindCone
)

func (k Kind) String() string {
	switch k {
	case KindSmooth:
		return "smooth"
	case KindNonsmooth:
		return "nonsmooth"
	case KindAffine:
		return "affine"
	case KindCone:
		return "cone"
	default:
		return "unknown"
	}
}

// Atom is a term of a composite objective over ℝⁿ with n = Shape().
type Atom interface {
	Shape() int
	Kind() Kind
}

// Smooth is a differentiable atom.
type Smooth interface {
	Atom
	// SmoothObjective evaluates the atom without its attached quadratic.
	SmoothObjective(x, g []float64, mode composite.Mode) (float64, error)
	// Quadratic returns the attached quadratic perturbation.
	Quadratic() composite.Quadratic
}

// Nonsmooth is an atom with a cheap proximal operator.
type Nonsmooth interface {
	Atom
	// NonsmoothObjective evaluates the atom. Constraints evaluate to zero unless
	// checkFeasibility is set, in which case infeasible points yield +Inf.
	NonsmoothObjective(x []float64, checkFeasibility bool) float64
	// Proximal writes argmin h(z) + q(z) into dst. q.Coef must be positive.
	Proximal(dst []float64, q composite.Term)
	// Conjugate returns the Fenchel conjugate h*(u) = sup xᵀu - h(x), on the same shape.
	Conjugate() Nonsmooth
	// Constraint reports whether the atom is the indicator of a set.
	Constraint() bool
}

// Composed is a nonsmooth atom acting through an affine transform, x ↦ h(𝒜x).
type Composed interface {
	Atom
	NonsmoothObjective(x []float64, checkFeasibility bool) float64
	Transform() affine.Transform
	Inner() Nonsmooth
}

// Split returns the transform and the inner atom of a nonsmooth or composed atom.
// A plain nonsmooth atom acts through the identity. Smooth atoms report false.
func Split(a Atom) (affine.Transform, Nonsmooth, bool) {
	switch a := a.(type) {
	case Composed:
		return a.Transform(), a.Inner(), true
	case Nonsmooth:
		return affine.Identity(a.Shape()), a, true
	}
	return nil, nil, false
}

// point writes the proximal center of q into dst and returns its coefficient.
func point(dst []float64, q composite.Term) float64 {
	if q.Coef <= 0 {
		panic("proximal coefficient must be positive")
	}
	q.Point(dst)
	return q.Coef
}
