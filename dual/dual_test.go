// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dual

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/atoms"
	"github.com/curioloop/regreg/composite"
	"github.com/curioloop/regreg/fista"
	"github.com/curioloop/regreg/numdiff"
)

func randVec(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return v
}

func difference(n int) *mat.Dense {
	d := mat.NewDense(n-1, n, nil)
	for i := 0; i < n-1; i++ {
		d.Set(i, i, -1)
		d.Set(i, i+1, 1)
	}
	return d
}

func TestStack(t *testing.T) {
	_, _, _, err := Stack(3)
	assert.ErrorIs(t, err, composite.ErrNoAtoms)

	_, _, _, err = Stack(3, atoms.L1Norm{N: 3, Lambda: 1}, atoms.Zero{N: 2})
	assert.ErrorIs(t, err, composite.ErrShapeMismatch)

	_, _, _, err = Stack(1, atoms.NewSquaredError(nil, []float64{1}))
	assert.ErrorIs(t, err, composite.ErrUnknownAtom)

	l1 := atoms.L1Norm{N: 3, Lambda: 1}
	tr, h, segs, err := Stack(3, l1)
	require.NoError(t, err)
	assert.True(t, tr.IsIdentity())
	assert.Equal(t, l1, h)
	assert.Equal(t, affine.Segments{{Offset: 0, Length: 3}}, segs)

	fused := atoms.NewAffine(affine.NewLinear(difference(3), nil), atoms.L1Norm{N: 2, Lambda: 2})
	tr, h, segs, err = Stack(3, l1, fused, atoms.NonNegative{N: 3})
	require.NoError(t, err)
	assert.False(t, tr.IsIdentity())
	assert.Equal(t, 8, tr.DualShape())
	assert.Equal(t, affine.Segments{{Offset: 0, Length: 3}, {Offset: 3, Length: 2}, {Offset: 5, Length: 3}}, segs)
	sep, ok := h.(*Separable)
	require.True(t, ok)
	assert.Equal(t, segs, sep.Segments())
	assert.False(t, sep.Constraint())
}

func TestSeparability(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	box := atoms.NewBox([]float64{-1, -1}, []float64{1, 2})
	hs := []atoms.Nonsmooth{
		atoms.L1Norm{N: 3, Lambda: 0.5},
		atoms.LInfNorm{N: 1, Lambda: 2},
		box.Conjugate(),
		atoms.L1Ball{N: 2, Bound: 1},
	}
	sep := NewSeparable(hs...)
	require.Equal(t, 8, sep.Shape())

	for range 20 {
		u := randVec(rng, 8)
		var want float64
		for i, h := range hs {
			want += h.NonsmoothObjective(sep.Segments().Slice(u, i), false)
		}
		assert.InDelta(t, want, sep.NonsmoothObjective(u, false), 1e-12)

		q := composite.Term{Coef: 1.5, Center: randVec(rng, 8), Linear: randVec(rng, 8)}
		got := make([]float64, 8)
		sep.Proximal(got, q)
		for i, h := range hs {
			seg := sep.Segments()[i]
			blk := make([]float64, seg.Length)
			h.Proximal(blk, q.Segment(seg.Offset, seg.Length))
			assert.Equal(t, blk, sep.Segments().Slice(got, i))
		}
	}

	conj := sep.Conjugate()
	assert.Same(t, sep, conj.Conjugate())
	assert.Same(t, conj, sep.Conjugate())
}

func TestDualGradient(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	a := mat.NewDense(4, 3, randVec(rng, 12))
	tr := affine.NewLinear(a, []float64{0.5, -1, 2, 0})
	q := composite.NewQuadratic(
		composite.Term{Coef: 2, Center: randVec(rng, 3)},
		composite.Term{Coef: 0.5, Linear: randVec(rng, 3), Constant: 7},
	)
	d, err := NewProblem(q, tr, atoms.L1Norm{N: 4, Lambda: 1})
	require.NoError(t, err)
	assert.Equal(t, 2.5, d.Coef())

	f := func(v []float64) float64 {
		y, err := d.SmoothObjective(v, nil, composite.Func)
		require.NoError(t, err)
		return y
	}
	grad := func(v, g []float64) {
		_, err := d.SmoothObjective(v, g, composite.Grad)
		require.NoError(t, err)
	}
	for range 5 {
		assert.Less(t, numdiff.Check(f, grad, randVec(rng, 4)), 1e-6)
	}

	_, err = d.SmoothObjective(make([]float64, 4), nil, composite.Mode(0))
	assert.ErrorIs(t, err, composite.ErrMode)
	assert.ErrorIs(t, d.SetQuadratic(composite.NewQuadratic()), composite.ErrCoef)
	assert.ErrorIs(t, d.Proximal(make([]float64, 4), composite.Term{}), composite.ErrCoef)
}

// The gradient and the returned primal point use one reconstruction.
func TestPrimalMatchesGradient(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	tr := affine.NewLinear(mat.NewDense(2, 3, randVec(rng, 6)), []float64{1, -1})
	q := composite.NewQuadratic(composite.Term{Coef: 3, Center: randVec(rng, 3)})
	d, err := NewProblem(q, tr, atoms.LInfNorm{N: 2, Lambda: 1})
	require.NoError(t, err)

	v := randVec(rng, 2)
	x := make([]float64, 3)
	d.Primal(x, v)

	g, ax := make([]float64, 2), make([]float64, 2)
	_, err = d.SmoothObjective(v, g, composite.Grad)
	require.NoError(t, err)
	tr.AffineMap(ax, x)
	floats.Scale(-1, ax)
	assert.Equal(t, ax, g)
}

func solve(t *testing.T, d *Problem, lip float64) *fista.Result {
	opt, err := (&fista.Problem{
		Objective: d,
		Stop:      fista.Termination{MaxIterations: 20000, MinIterations: 5, Tolerance: 1e-14},
		Lipschitz: lip,
	}).New(nil)
	require.NoError(t, err)
	res, err := opt.Fit(opt.Init())
	require.NoError(t, err)
	return res
}

// A box constraint behind a non-flagged identity matrix has the closed form prox clip(p).
func TestDualityConsistencyBox(t *testing.T) {
	lower, upper := []float64{-1, 0, -2}, []float64{1, 0.5, 2}
	box := atoms.NewBox(lower, upper)
	tr := affine.NewLinear(mat.NewDiagDense(3, []float64{1, 1, 1}), nil)

	center := []float64{3, 0.25, -5}
	q := composite.NewQuadratic(composite.Term{Coef: 2, Center: center})
	d, err := NewProblem(q, tr, box)
	require.NoError(t, err)

	est := affine.PowerL(tr, affine.PowerOptions{})
	res := solve(t, d, d.Lipschitz(1.05*est.Norm))
	require.True(t, res.OK)

	x := make([]float64, 3)
	d.Primal(x, d.Coefs())
	assert.InDeltaSlice(t, []float64{1, 0.25, -2}, x, 1e-6)

	want := make([]float64, 3)
	box.Proximal(want, q.Collapse(3))
	assert.InDeltaSlice(t, want, x, 1e-6)
}

// The support function of a box away from the origin has the box as conjugate,
// so the dual variable cannot start at zero.
func TestFeasibleStart(t *testing.T) {
	box := atoms.NewBox([]float64{1, 1, 1}, []float64{2, 2, 2})
	tr := affine.NewLinear(mat.NewDiagDense(3, []float64{1, 1, 1}), nil)

	q := composite.NewQuadratic(composite.Term{Coef: 1, Center: []float64{0, 3, 5}})
	d, err := NewProblem(q, tr, box.Conjugate())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, d.Coefs())
	assert.Zero(t, d.NonsmoothObjective(d.Coefs(), true))

	res := solve(t, d, d.Lipschitz(1.05))
	require.True(t, res.OK)

	x := make([]float64, 3)
	d.Primal(x, d.Coefs())
	assert.InDeltaSlice(t, []float64{-1, 1, 3}, x, 1e-6)
}

// Strong duality for the fused lasso prox: P(x(v*)) = -(F(v*) + g*(v*)).
func TestStrongDuality(t *testing.T) {
	const n = 6
	tr := affine.NewLinear(difference(n), nil)
	g := atoms.L1Norm{N: n - 1, Lambda: 0.4}
	y := []float64{1, 1.2, 0.9, 3, 3.1, 2.8}
	q := composite.NewQuadratic(composite.Term{Coef: 1, Center: y})

	d, err := NewProblem(q, tr, g)
	require.NoError(t, err)
	res := solve(t, d, d.Lipschitz(4))
	require.True(t, res.OK)

	x := make([]float64, n)
	d.Primal(x, d.Coefs())
	dx := make([]float64, n-1)
	tr.AffineMap(dx, x)
	primal := g.NonsmoothObjective(dx, false) + q.Value(x)

	fv, err := d.SmoothObjective(d.Coefs(), nil, composite.Func)
	require.NoError(t, err)
	dualValue := fv + d.NonsmoothObjective(d.Coefs(), false)
	assert.InDelta(t, primal, -dualValue, 1e-7)

	// the dual variable is feasible for ‖v‖∞ ≤ λ
	assert.False(t, math.IsInf(d.NonsmoothObjective(d.Coefs(), true), 1))
	// the primal point preserves the mean of y
	assert.InDelta(t, floats.Sum(y), floats.Sum(x), 1e-9)
}
