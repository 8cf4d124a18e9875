// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package composite

import "errors"

// Configuration errors are returned immediately and are never retried.
var (
	// ErrMode is returned when an evaluation mode is not one of Func, Grad or Both.
	ErrMode = errors.New("composite: mode specified incorrectly")

	// ErrNoAtoms is returned when a container or a stack is built from no atoms.
	ErrNoAtoms = errors.New("composite: must specify some atoms")

	// ErrShapeMismatch is returned when atoms sharing one objective disagree on the primal shape.
	ErrShapeMismatch = errors.New("composite: atoms have mismatched primal shapes")

	// ErrUnknownAtom is returned when an atom is neither smooth nor nonsmooth.
	ErrUnknownAtom = errors.New("composite: each atom should either be a smooth or nonsmooth atom")

	// ErrCoef is returned when a proximal quadratic has a non-positive coefficient.
	ErrCoef = errors.New("composite: proximal coefficient must be positive")
)

// ErrInfeasible is returned when the objective at the initial point is not finite.
var ErrInfeasible = errors.New("composite: initial point is infeasible")
