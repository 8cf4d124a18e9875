// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package atoms

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/regreg/composite"
)

// Zero is the zero function. It stands in for an empty set of nonsmooth atoms.
type Zero struct{ N int }

func (a Zero) Shape() int                                   { return a.N }
func (Zero) Kind() Kind                                     { return KindNonsmooth }
func (Zero) Constraint() bool                               { return false }
func (a Zero) Conjugate() Nonsmooth                         { return ZeroConstraint(a) }
func (Zero) NonsmoothObjective(_ []float64, _ bool) float64 { return 0 }

func (Zero) Proximal(dst []float64, q composite.Term) { point(dst, q) }

// ZeroConstraint is the indicator of {0}.
type ZeroConstraint struct{ N int }

func (a ZeroConstraint) Shape() int           { return a.N }
func (ZeroConstraint) Kind() Kind             { return KindNonsmooth }
func (ZeroConstraint) Constraint() bool       { return true }
func (a ZeroConstraint) Conjugate() Nonsmooth { return Zero(a) }

func (ZeroConstraint) NonsmoothObjective(x []float64, check bool) float64 {
	return indicator(!violated(floats.Norm(x, math.Inf(1)), 0), check)
}

func (ZeroConstraint) Proximal(dst []float64, q composite.Term) {
	point(dst, q)
	clear(dst)
}

// NonNegative is the indicator of the cone {x : x ≥ 0}.
type NonNegative struct{ N int }

func (a NonNegative) Shape() int           { return a.N }
func (NonNegative) Kind() Kind             { return KindNonsmooth }
func (NonNegative) Constraint() bool       { return true }
func (a NonNegative) Conjugate() Nonsmooth { return NonPositive(a) }

func (NonNegative) NonsmoothObjective(x []float64, check bool) float64 {
	return indicator(!violated(-floats.Min(x), 0), check)
}

func (NonNegative) Proximal(dst []float64, q composite.Term) {
	point(dst, q)
	for i, x := range dst {
		dst[i] = math.Max(x, 0)
	}
}

// NonPositive is the indicator of the cone {x : x ≤ 0}, the polar of NonNegative.
type NonPositive struct{ N int }

func (a NonPositive) Shape() int           { return a.N }
func (NonPositive) Kind() Kind             { return KindNonsmooth }
func (NonPositive) Constraint() bool       { return true }
func (a NonPositive) Conjugate() Nonsmooth { return NonNegative(a) }

func (NonPositive) NonsmoothObjective(x []float64, check bool) float64 {
	return indicator(!violated(floats.Max(x), 0), check)
}

func (NonPositive) Proximal(dst []float64, q composite.Term) {
	point(dst, q)
	for i, x := range dst {
		dst[i] = math.Min(x, 0)
	}
}

// Box is the indicator of {x : l ≤ x ≤ u}. Infinite bounds are allowed.
type Box struct {
	lower, upper []float64
}

// NewBox returns the box [lower, upper]. It panics if the bounds differ in
// length or cross.
func NewBox(lower, upper []float64) *Box {
	if len(lower) == 0 || len(lower) != len(upper) {
		panic("atoms: box bounds dimension not match")
	}
	for i := range lower {
		if lower[i] > upper[i] {
			panic("atoms: box lower bound exceeds upper bound")
		}
	}
	return &Box{lower: slices.Clone(lower), upper: slices.Clone(upper)}
}

func (b *Box) Shape() int           { return len(b.lower) }
func (*Box) Kind() Kind             { return KindNonsmooth }
func (*Box) Constraint() bool       { return true }
func (b *Box) Conjugate() Nonsmooth { return &BoxSupport{box: b} }
func (b *Box) Lower() []float64     { return b.lower }
func (b *Box) Upper() []float64     { return b.upper }

func (b *Box) NonsmoothObjective(x []float64, check bool) float64 {
	if !check {
		return 0
	}
	for i, v := range x {
		if violated(b.lower[i]-v, 0) || violated(v-b.upper[i], 0) {
			return math.Inf(1)
		}
	}
	return 0
}

// Proximal clips the proximal center to the box.
func (b *Box) Proximal(dst []float64, q composite.Term) {
	point(dst, q)
	b.clip(dst)
}

func (b *Box) clip(v []float64) {
	for i, x := range v {
		v[i] = math.Max(b.lower[i], math.Min(b.upper[i], x))
	}
}

// BoxSupport is the support function σ(u) = sup{uᵀx : l ≤ x ≤ u} of a box.
type BoxSupport struct {
	box *Box
}

func (s *BoxSupport) Shape() int           { return s.box.Shape() }
func (*BoxSupport) Kind() Kind             { return KindNonsmooth }
func (*BoxSupport) Constraint() bool       { return false }
func (s *BoxSupport) Conjugate() Nonsmooth { return s.box }

func (s *BoxSupport) NonsmoothObjective(x []float64, _ bool) float64 {
	var v float64
	for i, u := range x {
		switch {
		case u > 0:
			v += u * s.box.upper[i]
		case u < 0:
			v += u * s.box.lower[i]
		}
	}
	return v
}

// Proximal applies the Moreau decomposition p - Π(cp)/c.
func (s *BoxSupport) Proximal(dst []float64, q composite.Term) {
	c := point(dst, q)
	proj := make([]float64, len(dst))
	floats.ScaleTo(proj, c, dst)
	s.box.clip(proj)
	floats.AddScaled(dst, -1/c, proj)
}
