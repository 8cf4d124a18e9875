// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package composite

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermAtCenter(t *testing.T) {
	q := Term{Coef: 3, Center: []float64{1, -2, 4}, Constant: 0.75}
	assert.InDelta(t, 0.75, q.Value([]float64{1, -2, 4}), 1e-15)

	g := make([]float64, 3)
	q.Gradient(g, []float64{1, -2, 4})
	assert.Equal(t, []float64{0, 0, 0}, g)
}

func TestTermObjective(t *testing.T) {
	q := Term{Coef: 2, Center: []float64{1, 1}, Linear: []float64{0.5, -1}, Constant: 1}
	x := []float64{3, -1}

	// ½·2·(4+4) + (1.5+1) + 1
	want := 8.0 + 2.5 + 1
	g := make([]float64, 2)
	f, err := q.Objective(x, g, Both)
	require.NoError(t, err)
	assert.InDelta(t, want, f, 1e-12)
	assert.InDeltaSlice(t, []float64{4.5, -5}, g, 1e-12)

	_, err = q.Objective(x, g, Mode(0))
	assert.ErrorIs(t, err, ErrMode)
	_, err = q.Objective(x, g, Mode(8))
	assert.ErrorIs(t, err, ErrMode)
}

func TestTermPoint(t *testing.T) {
	dst := make([]float64, 2)

	Term{Coef: 4, Center: []float64{1, 2}, Linear: []float64{4, -8}}.Point(dst)
	assert.Equal(t, []float64{0, 4}, dst)

	// a zero coefficient must not divide
	Term{Center: []float64{1, 2}, Linear: []float64{4, -8}}.Point(dst)
	assert.Equal(t, []float64{1, 2}, dst)

	Term{Coef: 1}.Point(dst)
	assert.Equal(t, []float64{0, 0}, dst)
}

func TestQuadraticSum(t *testing.T) {
	a := Term{Coef: 1, Center: []float64{1, 0, 2}, Constant: 1}
	b := Term{Coef: 3, Center: []float64{-1, 4, 0}, Linear: []float64{1, 1, 1}}
	c := Term{Linear: []float64{0, -2, 0.5}, Constant: -3}

	q := NewQuadratic(a).AddTerm(b).Add(NewQuadratic(c))
	require.Len(t, q.Terms(), 3)
	assert.Equal(t, 4.0, q.Coef())

	points := [][]float64{{0, 0, 0}, {1, 2, 3}, {-0.5, 7, 1e-3}}
	for _, x := range points {
		want := a.Value(x) + b.Value(x) + c.Value(x)
		assert.InDelta(t, want, q.Value(x), 1e-12)

		collapsed := q.Collapse(3)
		assert.Nil(t, collapsed.Center)
		assert.InDelta(t, want, collapsed.Value(x), 1e-12)

		g, gc := make([]float64, 3), make([]float64, 3)
		_, err := q.Objective(x, g, Grad)
		require.NoError(t, err)
		collapsed.Gradient(gc, x)
		assert.InDeltaSlice(t, g, gc, 1e-12)
	}

	// the collapsed point is the coefficient-weighted center shifted by the linear part
	p := make([]float64, 3)
	q.Collapse(3).Point(p)
	want := []float64{
		(1*1 + 3*-1 - 1) / 4.0,
		(1*0 + 3*4 - 1 + 2) / 4.0,
		(1*2 + 3*0 - 1 - 0.5) / 4.0,
	}
	assert.InDeltaSlice(t, want, p, 1e-12)
}

func TestQuadraticZero(t *testing.T) {
	var q Quadratic
	assert.True(t, q.IsZero())
	assert.Equal(t, 0.0, q.Coef())
	assert.Equal(t, 0.0, q.Value([]float64{1, 2}))

	q = q.AddTerm(Term{Linear: []float64{0, 0}})
	assert.True(t, q.IsZero())
	q = q.AddTerm(Term{Coef: math.SmallestNonzeroFloat64})
	assert.False(t, q.IsZero())
}

func TestQuadraticAddIsPersistent(t *testing.T) {
	base := NewQuadratic(Term{Coef: 1})
	left := base.AddTerm(Term{Coef: 2})
	right := base.AddTerm(Term{Coef: 5})
	assert.Equal(t, 1.0, base.Coef())
	assert.Equal(t, 3.0, left.Coef())
	assert.Equal(t, 6.0, right.Coef())
}
