// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dual

import (
	"slices"

	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/atoms"
	"github.com/curioloop/regreg/composite"
)

// Separable is the block separable atom h(u) = ∑ hᵢ(uᵢ) where uᵢ is the i-th
// segment of u.
type Separable struct {
	segs  affine.Segments
	atoms []atoms.Nonsmooth
	conj  *Separable
}

// NewSeparable lays the atoms over consecutive segments of their own shapes.
func NewSeparable(hs ...atoms.Nonsmooth) *Separable {
	if len(hs) == 0 {
		panic("dual: separable atom needs some atoms")
	}
	sizes := make([]int, len(hs))
	for i, h := range hs {
		sizes[i] = h.Shape()
	}
	return &Separable{segs: affine.Of(sizes...), atoms: slices.Clone(hs)}
}

func (s *Separable) Shape() int                { return s.segs.Total() }
func (*Separable) Kind() atoms.Kind            { return atoms.KindNonsmooth }
func (s *Separable) Segments() affine.Segments { return s.segs }
func (s *Separable) Atoms() []atoms.Nonsmooth  { return s.atoms }

// Constraint reports whether every block is a constraint.
func (s *Separable) Constraint() bool {
	for _, h := range s.atoms {
		if !h.Constraint() {
			return false
		}
	}
	return true
}

func (s *Separable) NonsmoothObjective(u []float64, check bool) float64 {
	var v float64
	for i, h := range s.atoms {
		v += h.NonsmoothObjective(s.segs.Slice(u, i), check)
	}
	return v
}

// Proximal applies the proximal operator of each block to its segment of q.
func (s *Separable) Proximal(dst []float64, q composite.Term) {
	for i, h := range s.atoms {
		seg := s.segs[i]
		h.Proximal(s.segs.Slice(dst, i), q.Segment(seg.Offset, seg.Length))
	}
}

// Conjugate returns the separable atom of the block conjugates over the same segments.
func (s *Separable) Conjugate() atoms.Nonsmooth {
	if s.conj == nil {
		hs := make([]atoms.Nonsmooth, len(s.atoms))
		for i, h := range s.atoms {
			hs[i] = h.Conjugate()
		}
		s.conj = &Separable{segs: s.segs, atoms: hs, conj: s}
	}
	return s.conj
}
