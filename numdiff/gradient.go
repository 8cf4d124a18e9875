// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numdiff approximates gradients of scalar objectives by finite differences.
//
// It backs smooth atoms that only supply a function value, and it is the reference
// used to check analytic gradients such as the gradient of a dual problem.
package numdiff

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
var cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)

type Method int

const (
	// Forward use the first order accuracy forward difference.
	Forward Method = iota
	// Central use the second order accuracy central difference.
	Central
)

// Func is a scalar objective f : ℝⁿ → ℝ.
type Func func(x []float64) float64

// Step returns the absolute step for coordinate value v
//
//	h = 𝚎𝚙𝚜 × 𝚜𝚒𝚐𝚗(v) × 𝚖𝚊𝚡(1, |v|)
//
// where 𝚎𝚙𝚜 is √ε for Forward and ∛ε for Central.
func Step(v float64, method Method) float64 {
	var eps float64
	switch method {
	case Forward:
		eps = sqrtEps
	case Central:
		eps = cubeEps
	default:
		panic("unknown method")
	}
	return math.Copysign(eps, v) * math.Max(1.0, math.Abs(v))
}

// Gradient writes the finite difference approximation of ∇f(x) into g.
// The entries of x are perturbed in turn and restored before returning.
func Gradient(f Func, x, g []float64, method Method) {

	if len(x) != len(g) {
		panic("bound check error")
	}

	switch method {
	case Forward:
		f0 := f(x)
		for i, t := range x {
			h := Step(t, method)
			h = (t + h) - t // exactly representable step
			x[i] = t + h
			g[i] = (f(x) - f0) / h
			x[i] = t
		}
	case Central:
		for i, t := range x {
			h := Step(t, method)
			h = (t + h) - t
			x[i] = t - h
			f1 := f(x)
			x[i] = t + h
			f2 := f(x)
			g[i] = (f2 - f1) / (2 * h)
			x[i] = t
		}
	default:
		panic("unknown method")
	}
}

// Check compares an analytic gradient with the central difference approximation at x
// and returns the largest deviation relative to 𝚖𝚊𝚡(1, ‖∇f(x)‖∞).
func Check(f Func, grad func(x, g []float64), x []float64) float64 {
	n := len(x)
	want, got := make([]float64, n), make([]float64, n)
	grad(x, got)
	Gradient(f, x, want, Central)
	scale := math.Max(1, floats.Norm(got, math.Inf(1)))
	return floats.Distance(want, got, math.Inf(1)) / scale
}
