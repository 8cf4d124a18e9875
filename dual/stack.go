// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dual turns the proximal operator of a sum of affinely composed atoms
//
//	argminₓ ∑ hᵢ(𝒜ᵢx) + q(x)
//
// into a smooth dual problem over the stacked output of the transforms, and
// reconstructs the primal proximal point from a dual solution.
package dual

import (
	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/atoms"
	"github.com/curioloop/regreg/composite"
)

// Stack combines nonsmooth atoms on ℝⁿ into one transform and one separable atom.
//
// Atoms keep their order as segment order. A single atom is returned as its own
// transform and inner atom without stacking.
func Stack(n int, as ...atoms.Atom) (affine.Transform, atoms.Nonsmooth, affine.Segments, error) {
	if len(as) == 0 {
		return nil, nil, nil, composite.ErrNoAtoms
	}

	ts := make([]affine.Transform, len(as))
	hs := make([]atoms.Nonsmooth, len(as))
	for i, a := range as {
		t, h, ok := atoms.Split(a)
		if !ok {
			return nil, nil, nil, composite.ErrUnknownAtom
		}
		if t.PrimalShape() != n {
			return nil, nil, nil, composite.ErrShapeMismatch
		}
		ts[i], hs[i] = t, h
	}

	if len(as) == 1 {
		return ts[0], hs[0], affine.Of(hs[0].Shape()), nil
	}

	t, segs := affine.Vstack(ts...)
	return t, NewSeparable(hs...), segs, nil
}
