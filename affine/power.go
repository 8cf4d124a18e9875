// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package affine

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/regreg/composite"
)

// PowerOptions configures PowerL. Zero fields take their defaults.
type PowerOptions struct {
	// MaxIterations bounds the number of products with AᵀA (default: 500).
	MaxIterations int
	// Tol is the relative change of the estimate at which the iteration stops (default: 1e-8).
	Tol float64
	// Seed of the random starting vector (default: 1).
	Seed uint64
	// Trace keeps the estimate of every iteration.
	Trace bool
	// Logger receives one line per iteration at LogTrace.
	Logger *composite.Logger
}

// Estimate is the result of a power iteration.
type Estimate struct {
	Norm       float64   // Estimate of ‖AᵀA‖₂ = ‖A‖₂².
	Iterations int       // Number of products with AᵀA performed.
	Converged  bool      // Whether the relative change fell below the tolerance.
	Trace      []float64 // Estimate after each iteration when requested.
}

// PowerL estimates the largest eigenvalue of AᵀA for the linear part of t
//
//	vₖ₊₁ = AᵀAvₖ / ‖AᵀAvₖ‖₂
//
// starting from a seeded standard normal vector. For a positive semi-definite AᵀA
// the estimates ‖AᵀAvₖ‖₂ are non-decreasing and bounded by ‖A‖₂².
//
// The result is only an estimate: rank-deficient or badly separated spectra may not
// converge within MaxIterations and callers should apply a safety factor.
func PowerL(t Transform, opts PowerOptions) Estimate {

	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 500
	}
	if opts.Tol <= 0 {
		opts.Tol = 1e-8
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}

	n, m := t.PrimalShape(), t.DualShape()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	v := make([]float64, n)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	floats.Scale(1/floats.Norm(v, 2), v)

	u := make([]float64, m)
	w := make([]float64, n)

	var est Estimate
	norm, old := 0.0, 0.0
	log := opts.Logger

	for est.Iterations < opts.MaxIterations {
		t.LinearMap(u, v)
		t.AdjointMap(w, u)
		old, norm = norm, floats.Norm(w, 2)
		est.Iterations++

		if opts.Trace {
			est.Trace = append(est.Trace, norm)
		}
		if log.Enable(composite.LogTrace) {
			log.Logf("power iteration %4d    L= %14.8e\n", est.Iterations, norm)
		}

		if norm == 0 {
			// v lies in the null space of A
			est.Converged = true
			break
		}
		floats.ScaleTo(v, 1/norm, w)
		if math.Abs(norm-old)/norm <= opts.Tol {
			est.Converged = true
			break
		}
	}

	est.Norm = norm
	if log.Enable(composite.LogLast) {
		log.Logf("power iteration: ‖AᵀA‖ ≈ %.8e after %d iterations (converged: %v)\n",
			est.Norm, est.Iterations, est.Converged)
	}
	return est
}
