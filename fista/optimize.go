// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fista minimizes composite objectives F(x) = f(x) + h(x) by accelerated
// (FISTA) or plain (ISTA) proximal gradient descent.
//
// Each iteration forms the gradient step quadratic L/2‖z - y‖² + ∇f(y)ᵀz at the
// momentum point y and asks the objective for its proximal point. With backtracking
// the step is shrunk until the sufficient decrease condition
//
//	f(z) ≤ f(y) + ∇f(y)ᵀ(z - y) + L/2‖z - y‖²
//
// holds. The objective owns the coefficients: the fit starts from Coefs() and
// writes the final iterate back into it.
package fista

import (
	"errors"
	"math"
	"slices"
	"time"

	"github.com/curioloop/regreg/composite"
)

// Termination specifies the stopping criteria for the optimization algorithm.
type Termination struct {
	// The iteration stop when the number of iteration exceeds limit.
	MaxIterations int
	// The tolerance is ignored before this many iterations.
	MinIterations int
	// The iteration will stop when the objective value satisfied:
	//   |Fₖ₊₁ - Fₖ|/𝚖𝚊𝚡(|Fₖ|,|Fₖ₊₁|,1) ≤ 𝚝𝚘𝚕
	Tolerance float64
	// The iteration stop when the elapsed wall-clock time exceeds quota (0 means no quota).
	MaxDuration time.Duration
}

// Problem specifies the problem for FISTA optimizer.
type Problem struct {
	Objective composite.Objective // Composite objective and owner of the coefficients
	Stop      Termination         // Stop condition
	Lipschitz float64             // Initial step-size reciprocal L₀ (default: 1)
	Backtrack bool                // Increase L until sufficient decrease holds
	Growth    float64             // Backtracking growth factor of L (default: 1.1)
	Restart   bool                // Reject increasing steps and reset the momentum (implied by Backtrack)
	ISTA      bool                // Disable the momentum
	History   bool                // Record the objective value of every iteration
	X0        []float64           // Optional initial point overriding Coefs()
}

// New creates a new FISTA optimizer for given problem.
func (p *Problem) New(logger *composite.Logger) (optimizer *Optimizer, err error) {

	if logger == nil {
		logger = composite.Noop
	}

	prob := *p
	if prob.Lipschitz == zero {
		prob.Lipschitz = one
	}
	if prob.Growth == zero {
		prob.Growth = 1.1
	}
	if prob.Backtrack {
		// sufficient decrease only bounds F(z) by F(x) for a step taken from x
		prob.Restart = true
	}

	var n int
	if prob.Objective != nil {
		n = len(prob.Objective.Coefs())
	}

	switch {
	case prob.Objective == nil:
		err = errors.New("objective is required")
	case n <= 0:
		err = errors.New("problem dimension must greater than 0")
	case prob.Stop.MaxIterations <= 0:
		err = errors.New("max iteration must greater than 1")
	case prob.Stop.MinIterations < 0:
		err = errors.New("min iteration must not less than 0")
	case math.IsNaN(prob.Stop.Tolerance) || prob.Stop.Tolerance < zero:
		err = errors.New("tolerance must not less than 0")
	case prob.Stop.MaxDuration < 0:
		err = errors.New("time limit must not less than 0")
	case !(prob.Lipschitz > zero) || math.IsInf(prob.Lipschitz, 1):
		err = errors.New("initial lipschitz constant must be positive")
	case !(prob.Growth > one):
		err = errors.New("backtracking growth must greater than 1")
	case prob.X0 != nil && len(prob.X0) != n:
		err = errors.New("initial point size must equal to n")
	}

	if err != nil {
		return
	}

	prob.X0 = slices.Clone(prob.X0)
	optimizer = &Optimizer{
		fistaSpec{
			n:       n,
			Problem: prob,
			logger:  logger,
		},
	}
	return
}

// Optimizer implemented using the FISTA algorithm.
type Optimizer struct {
	fistaSpec
}

// Workspace contains the state and context of the optimization process.
// Given problem dimension n, total work space is approximately float64[5×n].
type Workspace struct {
	n int
	fistaLoc
	fistaCtx
}

// Result contains the final result of the optimization process.
type Result struct {
	OK      bool      // Whether the optimization was converged.
	F       float64   // Final objective value.
	X       []float64 // Final solution.
	History []float64 // Objective value after each iteration when requested.
	Summary           // Optimization summary.
}

// Summary contains a summary of the optimization process.
type Summary struct {
	Status    Status  // Final status after optimization.
	NumIter   int     // Number of iterations performed.
	NumProx   int     // Number of proximal evaluations performed.
	Lipschitz float64 // Final step-size reciprocal.
}

// Init allocate the workspace for FISTA optimizer.
// The objective carries the coefficients, so an optimizer and its workspace
// must not be shared between goroutines.
func (o *Optimizer) Init() *Workspace {
	w := new(Workspace)
	w.n = o.n
	wrk := make([]float64, 5*w.n)
	w.fistaLoc = fistaLoc{
		x: wrk[0*w.n : 1*w.n],
		y: wrk[1*w.n : 2*w.n],
		z: wrk[2*w.n : 3*w.n],
		g: wrk[3*w.n : 4*w.n],
		d: wrk[4*w.n : 5*w.n],
	}
	return w
}

// Fit runs the optimization process from the current coefficients of the objective
// (or X0 when given) using workspace w.
//
// Failing to converge is not an error: the result reports OK=false with the status.
// Errors are returned for invalid evaluation modes, failing proximal evaluations
// and an infeasible initial point (composite.ErrInfeasible).
func (o *Optimizer) Fit(w *Workspace) (*Result, error) {

	if w.n != o.n || len(o.Objective.Coefs()) != o.n {
		panic("workspace dimension not match spec")
	}

	if o.X0 != nil {
		copy(w.x, o.X0)
	} else {
		copy(w.x, o.Objective.Coefs())
	}

	driver := iterDriver{
		optimizer: o,
		workspace: w,
	}

	status, err := driver.mainLoop()
	if err != nil {
		return nil, err
	}

	copy(o.Objective.Coefs(), w.x)
	res := &Result{
		OK: status == ConvTolerance,
		F:  w.f,
		X:  slices.Clone(w.x),
		Summary: Summary{
			Status:    status,
			NumIter:   w.iter,
			NumProx:   w.numProx,
			Lipschitz: w.lip,
		},
	}
	if o.History {
		res.History = slices.Clone(w.hist)
	}
	return res, nil
}
