// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package affine

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Transform is an affine map 𝒜(x) = Ax + b from ℝⁿ to ℝᵐ
// with n = PrimalShape and m = DualShape.
//
// IsIdentity and IsSelector are capability flags; a transform reporting IsSelector
// must also implement Selection.
type Transform interface {
	PrimalShape() int
	DualShape() int
	// LinearMap writes Ax into dst.
	LinearMap(dst, x []float64)
	// AdjointMap writes Aᵀu into dst.
	AdjointMap(dst, u []float64)
	// AffineMap writes Ax + b into dst.
	AffineMap(dst, x []float64)
	IsIdentity() bool
	IsSelector() bool
}

// Selection is a transform that picks a subset of the coordinates.
type Selection interface {
	Transform
	Indices() []int
}

// Identity returns the identity map on ℝⁿ.
func Identity(n int) Transform {
	if n <= 0 {
		panic("affine: identity dimension must be positive")
	}
	return identity(n)
}

type identity int

func (t identity) PrimalShape() int            { return int(t) }
func (t identity) DualShape() int              { return int(t) }
func (t identity) LinearMap(dst, x []float64)  { copy(dst, x) }
func (t identity) AdjointMap(dst, u []float64) { copy(dst, u) }
func (t identity) AffineMap(dst, x []float64)  { copy(dst, x) }
func (identity) IsIdentity() bool              { return true }
func (identity) IsSelector() bool              { return false }

// Selector is the coordinate projection x ↦ (x[i₁], ..., x[iₘ]).
type Selector struct {
	n   int
	idx []int
}

// NewSelector returns the selector of the given indices on ℝⁿ.
func NewSelector(n int, idx []int) *Selector {
	if n <= 0 || len(idx) == 0 {
		panic("affine: empty selector")
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			panic("affine: selector index out of range")
		}
	}
	return &Selector{n: n, idx: slices.Clone(idx)}
}

func (s *Selector) PrimalShape() int { return s.n }
func (s *Selector) DualShape() int   { return len(s.idx) }
func (s *Selector) Indices() []int   { return s.idx }
func (*Selector) IsIdentity() bool   { return false }
func (*Selector) IsSelector() bool   { return true }

func (s *Selector) LinearMap(dst, x []float64) {
	for k, i := range s.idx {
		dst[k] = x[i]
	}
}

// AdjointMap scatters u back into ℝⁿ. Repeated indices accumulate.
func (s *Selector) AdjointMap(dst, u []float64) {
	clear(dst[:s.n])
	for k, i := range s.idx {
		dst[i] += u[k]
	}
}

func (s *Selector) AffineMap(dst, x []float64) { s.LinearMap(dst, x) }

// Linear is a matrix backed transform x ↦ Mx + b.
type Linear struct {
	m      mat.Matrix
	offset []float64
}

// NewLinear returns the transform x ↦ Mx + offset. A nil offset means no offset.
func NewLinear(m mat.Matrix, offset []float64) *Linear {
	r, _ := m.Dims()
	if offset != nil && len(offset) != r {
		panic("affine: offset dimension not match matrix")
	}
	return &Linear{m: m, offset: slices.Clone(offset)}
}

func (*Linear) IsIdentity() bool { return false }
func (*Linear) IsSelector() bool { return false }

func (l *Linear) PrimalShape() int {
	_, c := l.m.Dims()
	return c
}

func (l *Linear) DualShape() int {
	r, _ := l.m.Dims()
	return r
}

// Matrix returns the matrix of the linear part.
func (l *Linear) Matrix() mat.Matrix { return l.m }

// Offset returns b, or nil when there is none.
func (l *Linear) Offset() []float64 { return l.offset }

func (l *Linear) LinearMap(dst, x []float64) {
	r, c := l.m.Dims()
	mat.NewVecDense(r, dst[:r]).MulVec(l.m, mat.NewVecDense(c, x[:c]))
}

func (l *Linear) AdjointMap(dst, u []float64) {
	r, c := l.m.Dims()
	mat.NewVecDense(c, dst[:c]).MulVec(l.m.T(), mat.NewVecDense(r, u[:r]))
}

func (l *Linear) AffineMap(dst, x []float64) {
	l.LinearMap(dst, x)
	if l.offset != nil {
		floats.Add(dst[:len(l.offset)], l.offset)
	}
}
