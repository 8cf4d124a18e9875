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

// feasTol is the relative slack allowed by feasibility checks.
const feasTol = 1e-9

func violated(v, bound float64) bool {
	return v > bound+feasTol*math.Max(1, math.Abs(bound))
}

func indicator(feasible, check bool) float64 {
	if check && !feasible {
		return math.Inf(1)
	}
	return 0
}

// L1Norm is the seminorm λ‖x‖₁.
type L1Norm struct {
	N      int
	Lambda float64
}

func (a L1Norm) Shape() int           { return a.N }
func (L1Norm) Kind() Kind             { return KindNonsmooth }
func (L1Norm) Constraint() bool       { return false }
func (a L1Norm) Conjugate() Nonsmooth { return LInfBall{N: a.N, Bound: a.Lambda} }

func (a L1Norm) NonsmoothObjective(x []float64, _ bool) float64 {
	return a.Lambda * floats.Norm(x, 1)
}

// Proximal soft-thresholds the proximal center at λ/c.
func (a L1Norm) Proximal(dst []float64, q composite.Term) {
	c := point(dst, q)
	softThreshold(dst, a.Lambda/c)
}

func softThreshold(v []float64, t float64) {
	for i, x := range v {
		switch {
		case x > t:
			v[i] = x - t
		case x < -t:
			v[i] = x + t
		default:
			v[i] = 0
		}
	}
}

// LInfBall is the indicator of {x : ‖x‖∞ ≤ Bound}.
type LInfBall struct {
	N     int
	Bound float64
}

func (a LInfBall) Shape() int           { return a.N }
func (LInfBall) Kind() Kind             { return KindNonsmooth }
func (LInfBall) Constraint() bool       { return true }
func (a LInfBall) Conjugate() Nonsmooth { return L1Norm{N: a.N, Lambda: a.Bound} }

func (a LInfBall) NonsmoothObjective(x []float64, check bool) float64 {
	return indicator(!violated(floats.Norm(x, math.Inf(1)), a.Bound), check)
}

// Proximal clips the proximal center to [-Bound, Bound].
func (a LInfBall) Proximal(dst []float64, q composite.Term) {
	point(dst, q)
	for i, x := range dst {
		dst[i] = math.Max(-a.Bound, math.Min(a.Bound, x))
	}
}

// LInfNorm is the seminorm λ‖x‖∞.
type LInfNorm struct {
	N      int
	Lambda float64
}

func (a LInfNorm) Shape() int           { return a.N }
func (LInfNorm) Kind() Kind             { return KindNonsmooth }
func (LInfNorm) Constraint() bool       { return false }
func (a LInfNorm) Conjugate() Nonsmooth { return L1Ball{N: a.N, Bound: a.Lambda} }

func (a LInfNorm) NonsmoothObjective(x []float64, _ bool) float64 {
	return a.Lambda * floats.Norm(x, math.Inf(1))
}

// Proximal uses the Moreau decomposition p - Π(p) with Π the projection
// onto the ℓ₁ ball of radius λ/c.
func (a LInfNorm) Proximal(dst []float64, q composite.Term) {
	c := point(dst, q)
	proj := slices.Clone(dst)
	projectL1(proj, a.Lambda/c)
	floats.Sub(dst, proj)
}

// L1Ball is the indicator of {x : ‖x‖₁ ≤ Bound}.
type L1Ball struct {
	N     int
	Bound float64
}

func (a L1Ball) Shape() int           { return a.N }
func (L1Ball) Kind() Kind             { return KindNonsmooth }
func (L1Ball) Constraint() bool       { return true }
func (a L1Ball) Conjugate() Nonsmooth { return LInfNorm{N: a.N, Lambda: a.Bound} }

func (a L1Ball) NonsmoothObjective(x []float64, check bool) float64 {
	return indicator(!violated(floats.Norm(x, 1), a.Bound), check)
}

// Proximal projects the proximal center onto the ball.
func (a L1Ball) Proximal(dst []float64, q composite.Term) {
	point(dst, q)
	projectL1(dst, a.Bound)
}

// projectL1 projects v onto {x : ‖x‖₁ ≤ r} in place by sorting magnitudes
// and soft-thresholding at the level that exhausts the radius.
func projectL1(v []float64, r float64) {
	if r <= 0 {
		clear(v)
		return
	}
	if floats.Norm(v, 1) <= r {
		return
	}
	u := make([]float64, len(v))
	for i, x := range v {
		u[i] = math.Abs(x)
	}
	slices.Sort(u)
	slices.Reverse(u)

	var sum, theta float64
	for i, x := range u {
		sum += x
		t := (sum - r) / float64(i+1)
		if x <= t {
			break
		}
		theta = t
	}
	softThreshold(v, theta)
}
