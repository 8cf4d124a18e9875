// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package composite

// Mode selects what a smooth evaluation computes.
type Mode int

const (
	// Func evaluates the function value only.
	Func Mode = 1 << iota
	// Grad evaluates the gradient only.
	Grad
	// Both evaluates the function value and the gradient.
	Both = Func | Grad
)

// Valid reports whether m is one of Func, Grad or Both.
func (m Mode) Valid() bool {
	return m == Func || m == Grad || m == Both
}

// NeedFunc reports whether the function value is requested.
func (m Mode) NeedFunc() bool { return m&Func > 0 }

// NeedGrad reports whether the gradient is requested.
func (m Mode) NeedGrad() bool { return m&Grad > 0 }

func (m Mode) String() string {
	switch m {
	case Func:
		return "func"
	case Grad:
		return "grad"
	case Both:
		return "both"
	default:
		return "invalid"
	}
}

// Objective is the composite objective contract shared by solvers and containers.
//
// The objective is F(x) = f(x) + h(x) where f is smooth and h admits a proximal operator.
// Coefs exposes the mutable coefficient state owned by whichever solver is fitting the
// objective; an objective must not be fitted by two solvers at the same time.
type Objective interface {
	// SmoothObjective evaluates f at x. The gradient is written to g when mode requests it.
	SmoothObjective(x, g []float64, mode Mode) (float64, error)
	// NonsmoothObjective evaluates h at x. Constraint terms report +Inf for infeasible
	// points only when checkFeasibility is set.
	NonsmoothObjective(x []float64, checkFeasibility bool) float64
	// Proximal writes argmin h(z) + q(z) into dst.
	Proximal(dst []float64, q Term) error
	// Coefs returns the current coefficients.
	Coefs() []float64
}
