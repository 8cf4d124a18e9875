// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package container

import (
	"slices"

	"github.com/curioloop/regreg/affine"
	"github.com/curioloop/regreg/composite"
	"github.com/curioloop/regreg/dual"
	"github.com/curioloop/regreg/fista"
)

// Control configures the dual solve of a proximal evaluation.
type Control struct {
	// Stop condition of the inner FISTA run.
	Stop fista.Termination
	// Backtrack enables backtracking in the inner run, starting from the estimated constant.
	// It implies Restart.
	Backtrack bool
	// Restart rejects inner steps that increase the dual objective and resets the momentum.
	Restart bool
	// Safety multiplies the power iteration estimate of ‖A‖² (default: 1.05).
	Safety float64
	// ReferenceLipschitz overrides the estimate of ‖A‖² when positive.
	ReferenceLipschitz float64
	// History records the dual objective of every inner iteration.
	History bool
	// Power configures the power iteration.
	Power affine.PowerOptions
	// Logger receives the inner solver and power iteration output.
	Logger *composite.Logger
}

// DefaultControl returns the defaults for proximal evaluations.
func DefaultControl() Control {
	return Control{
		Stop: fista.Termination{
			MaxIterations: 5000,
			MinIterations: 5,
			Tolerance:     1e-14,
		},
		Safety: 1.05,
	}
}

// Session holds the dual-solve state of proximal evaluations:
// the dual problem, the cached estimate of ‖A‖² and the dual minimizer used
// as warm start by the next call.
//
// A session is bound to the first container it is used with; using it with
// another container resets it. A session must not be shared between goroutines.
type Session struct {
	Control Control

	owner *Container
	dual  *dual.Problem
	work  *fista.Workspace
	ref   float64
}

// NewSession returns an empty session.
func NewSession(ctrl Control) *Session {
	return &Session{Control: ctrl}
}

// Reset drops the cached state so the next call starts cold.
func (s *Session) Reset() {
	s.owner, s.dual, s.work, s.ref = nil, nil, nil, 0
}

// ReferenceLipschitz returns the cached estimate of ‖A‖², zero before the first dual solve.
func (s *Session) ReferenceLipschitz() float64 { return s.ref }

// Minimizer returns a copy of the last dual minimizer, nil before the first dual solve.
func (s *Session) Minimizer() []float64 {
	if s.dual == nil {
		return nil
	}
	return slices.Clone(s.dual.Coefs())
}

// prepare binds the session to c and points the dual problem at quadratic q.
func (s *Session) prepare(c *Container, q composite.Quadratic) error {
	if s.owner != c {
		s.Reset()
		s.owner = c
	}
	if s.dual == nil {
		d, err := dual.NewProblem(q, c.t, c.h)
		if err != nil {
			return err
		}
		s.dual = d
	} else if err := s.dual.SetQuadratic(q); err != nil {
		return err
	}

	ctrl := s.Control
	switch {
	case ctrl.ReferenceLipschitz > 0:
		s.ref = ctrl.ReferenceLipschitz
	case s.ref == 0:
		safety := ctrl.Safety
		if safety <= 0 {
			safety = 1.05
		}
		power := ctrl.Power
		if power.Logger == nil {
			power.Logger = ctrl.Logger
		}
		s.ref = safety * affine.PowerL(c.t, power).Norm
		if s.ref == 0 {
			// A vanishes on the power iterate
			s.ref = 1
		}
	}
	return nil
}

// solve runs the inner FISTA from the warm start held by the dual problem.
func (s *Session) solve() (*fista.Result, error) {
	ctrl := s.Control
	opt, err := (&fista.Problem{
		Objective: s.dual,
		Stop:      ctrl.Stop,
		Lipschitz: s.dual.Lipschitz(s.ref),
		Backtrack: ctrl.Backtrack,
		Restart:   ctrl.Restart,
		History:   ctrl.History,
	}).New(ctrl.Logger)
	if err != nil {
		return nil, err
	}
	if s.work == nil {
		s.work = opt.Init()
	}
	return opt.Fit(s.work)
}
