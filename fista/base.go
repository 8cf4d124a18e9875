// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fista

import (
	"time"

	"github.com/curioloop/regreg/composite"
)

const (
	zero = 0.0
	one  = 1.0
	two  = 2.0
	four = 4.0
)

// Status is the reason an optimization stopped.
type Status int

const (
	// ConvTolerance relative change of the objective fell below the tolerance.
	ConvTolerance Status = iota + 1
	// OverIterLimit more than max iterations.
	OverIterLimit
	// OverTimeLimit the wall-clock quota was exhausted.
	OverTimeLimit
)

func (s Status) String() string {
	switch s {
	case ConvTolerance:
		return "CONVERGENCE: REL_CHANGE_OF_F_<=_TOL"
	case OverIterLimit:
		return "STOP: TOTAL NO. of ITERATIONS REACHED LIMIT"
	case OverTimeLimit:
		return "STOP: WALL CLOCK EXCEEDING THE TIME LIMIT"
	default:
		return "UNKNOWN STATUS"
	}
}

type fistaSpec struct {
	n int
	Problem
	logger *composite.Logger
}

type fistaLoc struct {
	f float64   // composite objective at x
	x []float64 // n, current iterate
	y []float64 // n, momentum iterate
	z []float64 // n, trial iterate
	g []float64 // n, smooth gradient at y
	d []float64 // n, z - y
}

type fistaCtx struct {
	// extrapolation coefficient.
	t float64
	// current step-size reciprocal.
	lip float64
	// whether the last iteration was rejected by a restart.
	restarted bool
	// iteration counter.
	iter int
	// total number of proximal evaluations.
	numProx int
	// objective value history.
	hist []float64
	// wall-clock start.
	start time.Time
}
