// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package atoms

import (
	"github.com/curioloop/regreg/affine"
)

// Affine is the nonsmooth atom x ↦ h(𝒜x) for a transform 𝒜 and a nonsmooth atom h.
type Affine struct {
	t     affine.Transform
	inner Nonsmooth
	kind  Kind
	work  []float64
}

// NewAffine composes h with t. It panics if the output of t does not match h.
func NewAffine(t affine.Transform, h Nonsmooth) *Affine {
	return newComposed(t, h, KindAffine)
}

// NewAffineCone returns the cone constraint 𝒜x ∈ 𝒦 for the indicator h of a cone 𝒦.
func NewAffineCone(t affine.Transform, h Nonsmooth) *Affine {
	if !h.Constraint() {
		panic("atoms: cone atom needs a constraint")
	}
	return newComposed(t, h, KindCone)
}

func newComposed(t affine.Transform, h Nonsmooth, kind Kind) *Affine {
	if t.DualShape() != h.Shape() {
		panic("atoms: transform output dimension not match atom")
	}
	return &Affine{t: t, inner: h, kind: kind, work: make([]float64, t.DualShape())}
}

func (a *Affine) Shape() int                  { return a.t.PrimalShape() }
func (a *Affine) Kind() Kind                  { return a.kind }
func (a *Affine) Transform() affine.Transform { return a.t }
func (a *Affine) Inner() Nonsmooth            { return a.inner }

// NonsmoothObjective evaluates h(𝒜x). It uses an internal buffer and must not be
// called concurrently.
func (a *Affine) NonsmoothObjective(x []float64, check bool) float64 {
	a.t.AffineMap(a.work, x)
	return a.inner.NonsmoothObjective(a.work, check)
}
