// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package atoms

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/composite"
	"github.com/curioloop/regreg/numdiff"
)

func catalog() map[string]Nonsmooth {
	inf := math.Inf(1)
	box := NewBox([]float64{-1, 0, -inf, -2}, []float64{1, 2, 0.5, inf})
	return map[string]Nonsmooth{
		"l1":          L1Norm{N: 4, Lambda: 0.7},
		"linf":        LInfNorm{N: 4, Lambda: 1.3},
		"l1_ball":     L1Ball{N: 4, Bound: 1.5},
		"linf_ball":   LInfBall{N: 4, Bound: 0.4},
		"zero":        Zero{N: 4},
		"zero_cons":   ZeroConstraint{N: 4},
		"nonnegative": NonNegative{N: 4},
		"nonpositive": NonPositive{N: 4},
		"box":         box,
		"box_support": box.Conjugate(),
	}
}

func randVec(rng *rand.Rand, n int, scale float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = scale * rng.NormFloat64()
	}
	return v
}

// prox_{h/c}(p) + prox_{c h*}(cp)/c = p
func TestMoreauDecomposition(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const c = 2.5
	for name, h := range catalog() {
		t.Run(name, func(t *testing.T) {
			for range 20 {
				p := randVec(rng, 4, 2)
				cp := make([]float64, 4)
				floats.ScaleTo(cp, c, p)

				z1, z2 := make([]float64, 4), make([]float64, 4)
				h.Proximal(z1, composite.Term{Coef: c, Center: p})
				h.Conjugate().Proximal(z2, composite.Term{Coef: 1 / c, Center: cp})
				floats.AddScaled(z1, 1/c, z2)
				assert.InDeltaSlice(t, p, z1, 1e-12)
			}
		})
	}
}

// The proximal point beats random perturbations of itself.
func TestProximalIsMinimal(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	const c = 1.7
	for name, h := range catalog() {
		t.Run(name, func(t *testing.T) {
			for range 10 {
				q := composite.Term{Coef: c, Linear: randVec(rng, 4, 3)}
				obj := func(x []float64) float64 {
					return h.NonsmoothObjective(x, true) + q.Value(x)
				}
				z := make([]float64, 4)
				h.Proximal(z, q)
				best := obj(z)
				require.False(t, math.IsInf(best, 0), "prox point must be feasible")
				for range 50 {
					w := randVec(rng, 4, 0.1)
					floats.Add(w, z)
					assert.LessOrEqual(t, best, obj(w)+1e-10)
				}
			}
		})
	}
}

func TestConjugateInvolution(t *testing.T) {
	for name, h := range catalog() {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, h, h.Conjugate().Conjugate())
			assert.Equal(t, h.Shape(), h.Conjugate().Shape())
			assert.Equal(t, KindNonsmooth, h.Kind())
		})
	}
}

func TestSoftThreshold(t *testing.T) {
	z := make([]float64, 3)
	L1Norm{N: 3, Lambda: 1}.Proximal(z, composite.Term{Coef: 2, Center: []float64{3, -0.5, -2}})
	assert.Equal(t, []float64{2.5, 0, -1.5}, z)

	// box support of [-1, 1]ⁿ is ‖·‖₁
	box := NewBox([]float64{-1, -1}, []float64{1, 1})
	box.Conjugate().Proximal(z[:2], composite.Term{Coef: 1, Center: []float64{3, 0.5}})
	assert.Equal(t, []float64{2, 0}, z[:2])
	assert.Equal(t, 3.5, box.Conjugate().NonsmoothObjective([]float64{3, -0.5}, false))
}

func TestProjectL1(t *testing.T) {
	v := []float64{3, -1}
	projectL1(v, 2)
	assert.Equal(t, []float64{2, 0}, v)

	v = []float64{0.5, -0.25}
	projectL1(v, 2)
	assert.Equal(t, []float64{0.5, -0.25}, v)

	v = []float64{1, 1, 1, 1}
	projectL1(v, 2)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5, 0.5}, v, 1e-15)
}

func TestFeasibility(t *testing.T) {
	ball := LInfBall{N: 2, Bound: 1}
	assert.Zero(t, ball.NonsmoothObjective([]float64{2, 0}, false))
	assert.True(t, math.IsInf(ball.NonsmoothObjective([]float64{2, 0}, true), 1))
	assert.Zero(t, ball.NonsmoothObjective([]float64{1 + 1e-12, 0}, true))

	assert.True(t, math.IsInf(NonNegative{N: 2}.NonsmoothObjective([]float64{1, -1}, true), 1))
	assert.Zero(t, NonPositive{N: 2}.NonsmoothObjective([]float64{-1, 0}, true))

	box := NewBox([]float64{0, 0}, []float64{1, 1})
	assert.True(t, math.IsInf(box.NonsmoothObjective([]float64{0.5, 1.5}, true), 1))
	assert.Panics(t, func() { NewBox([]float64{1}, []float64{0}) })

	assert.Panics(t, func() {
		L1Norm{N: 1, Lambda: 1}.Proximal(make([]float64, 1), composite.Term{Coef: 0})
	})
}

func TestSplit(t *testing.T) {
	d := mat.NewDense(2, 3, []float64{1, -1, 0, 0, 1, -1})
	tr := affine.NewLinear(d, nil)
	l1 := L1Norm{N: 2, Lambda: 1}

	fused := NewAffine(tr, l1)
	assert.Equal(t, KindAffine, fused.Kind())
	assert.Equal(t, 3, fused.Shape())
	assert.Equal(t, 3.0, fused.NonsmoothObjective([]float64{1, 2, 0}, false))

	gotT, gotH, ok := Split(fused)
	require.True(t, ok)
	assert.Same(t, tr, gotT)
	assert.Equal(t, l1, gotH)

	gotT, gotH, ok = Split(l1)
	require.True(t, ok)
	assert.True(t, gotT.IsIdentity())
	assert.Equal(t, l1, gotH)

	_, _, ok = Split(NewSquaredError(nil, []float64{1}))
	assert.False(t, ok)

	cone := NewAffineCone(tr, NonNegative{N: 2})
	assert.Equal(t, KindCone, cone.Kind())
	assert.True(t, math.IsInf(cone.NonsmoothObjective([]float64{0, 1, 0}, true), 1))
	assert.Panics(t, func() { NewAffineCone(tr, l1) })
	assert.Panics(t, func() { NewAffine(tr, L1Norm{N: 3}) })
}

func TestSquaredError(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{1, 2, 0, 1, -1, 3})
	y := []float64{1, 0, 2}
	s := NewSquaredError(a, y)
	require.Equal(t, 2, s.Shape())

	f := func(x []float64) float64 {
		v, err := s.SmoothObjective(x, nil, composite.Func)
		require.NoError(t, err)
		return v
	}
	grad := func(x, g []float64) {
		_, err := s.SmoothObjective(x, g, composite.Grad)
		require.NoError(t, err)
	}
	assert.Less(t, numdiff.Check(f, grad, []float64{0.3, -1.2}), 1e-7)

	g := make([]float64, 2)
	v, err := s.SmoothObjective([]float64{1, 0}, g, composite.Both)
	require.NoError(t, err)
	// r = Ax - y = [0, 0, -3]
	assert.Equal(t, 4.5, v)
	assert.Equal(t, []float64{3, -9}, g)

	_, err = s.SmoothObjective([]float64{1, 0}, g, composite.Mode(7))
	assert.ErrorIs(t, err, composite.ErrMode)

	id := NewSquaredError(nil, []float64{1, 2})
	v, err = id.SmoothObjective([]float64{0, 0}, g, composite.Both)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
	assert.Equal(t, []float64{-1, -2}, g)

	assert.True(t, id.Quadratic().IsZero())
	id.SetQuadratic(composite.NewQuadratic(composite.Term{Coef: 1}))
	assert.Equal(t, 1.0, id.Quadratic().Coef())
}

func TestSmoothFuncNumericGradient(t *testing.T) {
	f := func(x []float64) float64 { return math.Exp(x[0]) + x[0]*x[1]*x[1] }
	s := NewSmoothFunc(2, f, nil)

	x := []float64{0.5, -1}
	g := make([]float64, 2)
	v, err := s.SmoothObjective(x, g, composite.Both)
	require.NoError(t, err)
	assert.Equal(t, f(x), v)
	assert.InDeltaSlice(t, []float64{math.Exp(0.5) + 1, -1}, g, 1e-8)
	assert.Equal(t, []float64{0.5, -1}, x, "evaluation must not perturb x")
}
