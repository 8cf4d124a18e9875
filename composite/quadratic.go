// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package composite

import (
	"slices"

	"gonum.org/v1/gonum/floats"
)

const zero = 0.0

// Term is the quadratic
//
//	q(x) = ½c‖x - a‖₂² + bᵀx + k
//
// with coefficient c = Coef, center a = Center, linear term b = Linear and constant k.
// A nil Center or Linear stands for the zero vector.
type Term struct {
	Coef     float64
	Center   []float64
	Linear   []float64
	Constant float64
}

// Value evaluates q(x).
func (t Term) Value(x []float64) float64 {
	v := t.Constant
	if t.Coef != zero {
		v += t.Coef / 2 * sqDist(x, t.Center)
	}
	if t.Linear != nil {
		v += floats.Dot(t.Linear, x)
	}
	return v
}

// Gradient writes ∇q(x) = c(x - a) + b into dst.
func (t Term) Gradient(dst, x []float64) {
	clear(dst)
	t.addGradient(dst, x)
}

func (t Term) addGradient(dst, x []float64) {
	if len(dst) != len(x) {
		panic("bound check error")
	}
	if t.Coef != zero {
		floats.AddScaled(dst, t.Coef, x)
		if t.Center != nil {
			floats.AddScaled(dst, -t.Coef, t.Center)
		}
	}
	if t.Linear != nil {
		floats.Add(dst, t.Linear)
	}
}

// Objective evaluates q at x in the given mode.
func (t Term) Objective(x, g []float64, mode Mode) (f float64, err error) {
	if !mode.Valid() {
		return 0, ErrMode
	}
	if mode.NeedGrad() {
		t.Gradient(g, x)
	}
	if mode.NeedFunc() {
		f = t.Value(x)
	}
	return
}

// Point writes the minimizer of q, a - b/c, into dst.
// A zero coefficient leaves the linear term out and yields the center.
func (t Term) Point(dst []float64) {
	if t.Center != nil {
		copy(dst, t.Center)
	} else {
		clear(dst)
	}
	if t.Coef != zero && t.Linear != nil {
		floats.AddScaled(dst, -1/t.Coef, t.Linear)
	}
}

// Segment restricts the term to the coordinates [off, off+n).
// The constant does not belong to any block and is dropped.
func (t Term) Segment(off, n int) Term {
	s := Term{Coef: t.Coef}
	if t.Center != nil {
		s.Center = t.Center[off : off+n]
	}
	if t.Linear != nil {
		s.Linear = t.Linear[off : off+n]
	}
	return s
}

// IsZero reports whether the term vanishes everywhere.
func (t Term) IsZero() bool {
	if t.Coef != zero || t.Constant != zero {
		return false
	}
	for _, l := range t.Linear {
		if l != zero {
			return false
		}
	}
	return true
}

// Quadratic is a running sum of terms.
//
// Terms with different centers are kept apart instead of being merged,
// so the value of a sum is always the sum of the values of its parts.
// The zero value is the zero quadratic.
type Quadratic struct {
	terms []Term
}

// NewQuadratic returns the sum of the given terms.
func NewQuadratic(terms ...Term) Quadratic {
	return Quadratic{terms: slices.Clone(terms)}
}

// AddTerm returns q + t, leaving q unchanged.
func (q Quadratic) AddTerm(t Term) Quadratic {
	terms := make([]Term, len(q.terms), len(q.terms)+1)
	copy(terms, q.terms)
	return Quadratic{terms: append(terms, t)}
}

// Add returns q + o, leaving both unchanged.
func (q Quadratic) Add(o Quadratic) Quadratic {
	terms := make([]Term, 0, len(q.terms)+len(o.terms))
	terms = append(terms, q.terms...)
	return Quadratic{terms: append(terms, o.terms...)}
}

// Terms returns the parts of the sum.
func (q Quadratic) Terms() []Term { return q.terms }

// Coef returns the total quadratic coefficient.
func (q Quadratic) Coef() float64 {
	c := zero
	for _, t := range q.terms {
		c += t.Coef
	}
	return c
}

// IsZero reports whether every part vanishes.
func (q Quadratic) IsZero() bool {
	for _, t := range q.terms {
		if !t.IsZero() {
			return false
		}
	}
	return true
}

// Value evaluates the sum at x.
func (q Quadratic) Value(x []float64) float64 {
	v := zero
	for _, t := range q.terms {
		v += t.Value(x)
	}
	return v
}

// Objective evaluates the sum at x in the given mode.
func (q Quadratic) Objective(x, g []float64, mode Mode) (f float64, err error) {
	if !mode.Valid() {
		return 0, ErrMode
	}
	if mode.NeedGrad() {
		clear(g)
		for _, t := range q.terms {
			t.addGradient(g, x)
		}
	}
	if mode.NeedFunc() {
		f = q.Value(x)
	}
	return
}

// Collapse returns a single term on ℝⁿ that agrees with the sum everywhere.
//
//	∑ ½cᵢ‖x - aᵢ‖² + bᵢᵀx + kᵢ = ½(∑cᵢ)‖x‖² + (∑bᵢ - cᵢaᵢ)ᵀx + ∑(kᵢ + ½cᵢ‖aᵢ‖²)
//
// The collapsed term has a nil center.
func (q Quadratic) Collapse(n int) Term {
	out := Term{Linear: make([]float64, n)}
	for _, t := range q.terms {
		out.Coef += t.Coef
		out.Constant += t.Constant
		if t.Linear != nil {
			floats.Add(out.Linear, t.Linear)
		}
		if t.Center != nil && t.Coef != zero {
			floats.AddScaled(out.Linear, -t.Coef, t.Center)
			out.Constant += t.Coef / 2 * sqDist(t.Center, nil)
		}
	}
	return out
}

func sqDist(x, c []float64) float64 {
	var d float64
	if c == nil {
		d = floats.Norm(x, 2)
	} else {
		d = floats.Distance(x, c, 2)
	}
	return d * d
}
