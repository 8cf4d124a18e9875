// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fista

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/regreg/composite"
)

// iterDriver manages the flow of one FISTA fit.
type iterDriver struct {
	optimizer *Optimizer
	workspace *Workspace
}

// objective evaluates F(x) = f(x) + h(x).
func (d *iterDriver) objective(x []float64, check bool) (float64, error) {
	obj := d.optimizer.Objective
	f, err := obj.SmoothObjective(x, nil, composite.Func)
	if err != nil {
		return 0, err
	}
	return f + obj.NonsmoothObjective(x, check), nil
}

// proximalStep computes the trial point z from the momentum point y, growing L
// until the sufficient decrease condition holds when backtracking is enabled.
// It returns f(z) when it is known, NaN otherwise.
func (d *iterDriver) proximalStep() (fz float64, err error) {
	o, w := d.optimizer, d.workspace
	obj, log := o.Objective, o.logger

	fy, err := obj.SmoothObjective(w.y, w.g, composite.Both)
	if err != nil {
		return 0, err
	}

	for {
		q := composite.Term{Coef: w.lip, Center: w.y, Linear: w.g}
		if err = obj.Proximal(w.z, q); err != nil {
			return 0, err
		}
		w.numProx++

		if !o.Backtrack {
			return math.NaN(), nil
		}

		if fz, err = obj.SmoothObjective(w.z, nil, composite.Func); err != nil {
			return 0, err
		}
		floats.SubTo(w.d, w.z, w.y)
		bound := fy + floats.Dot(w.g, w.d) + w.lip/two*floats.Dot(w.d, w.d)
		if !math.IsNaN(fz) && !math.IsInf(fz, 0) &&
			fz <= bound+1e-14*math.Max(math.Abs(bound), one) {
			return fz, nil
		}

		w.lip *= o.Growth
		if log.Enable(composite.LogTrace) {
			log.Logf("  backtrack    f(z)= %12.5e    bound= %12.5e    L= %10.3e\n", fz, bound, w.lip)
		}
	}
}

// mainLoop runs the iterations and returns the final status.
func (d *iterDriver) mainLoop() (status Status, err error) {

	o, w := d.optimizer, d.workspace
	obj, log := o.Objective, o.logger

	w.fistaCtx = fistaCtx{
		t:     one,
		lip:   o.Lipschitz,
		hist:  w.hist[:0],
		start: time.Now(),
	}

	if w.f, err = d.objective(w.x, true); err != nil {
		return
	}
	if math.IsInf(w.f, 0) || math.IsNaN(w.f) {
		err = composite.ErrInfeasible
		return
	}
	copy(w.y, w.x)

	if log.Enable(composite.LogEval) {
		log.Logf("At iterate %5d    F= %12.5e    L= %10.3e\n", w.iter, w.f, w.lip)
	}

	for {
		var fz, fnew float64
		if fz, err = d.proximalStep(); err != nil {
			return
		}
		if math.IsNaN(fz) {
			fnew, err = d.objective(w.z, false)
		} else {
			fnew = fz + obj.NonsmoothObjective(w.z, false)
		}
		if err != nil {
			return
		}
		w.iter++

		if o.Restart && !w.restarted && fnew > w.f {
			// reject the step and restart the momentum from x
			w.t = one
			copy(w.y, w.x)
			w.restarted = true
			if log.Enable(composite.LogTrace) {
				log.Logf("  restart      F(z)= %12.5e > F(x)= %12.5e\n", fnew, w.f)
			}
		} else {
			w.restarted = false
			if o.ISTA {
				copy(w.y, w.z)
			} else {
				tNext := (one + math.Sqrt(one+four*w.t*w.t)) / two
				// y = z + (t - 1)/t' (z - x)
				floats.SubTo(w.d, w.z, w.x)
				floats.AddScaledTo(w.y, w.z, (w.t-one)/tNext, w.d)
				w.t = tNext
			}
			w.x, w.z = w.z, w.x
		}

		fold := w.f
		if !w.restarted {
			w.f = fnew
		}
		if o.History {
			w.hist = append(w.hist, w.f)
		}

		if log.Enable(composite.LogTrace) || log.Enable(composite.LogEval) && w.iter%int(log.Level) == 0 {
			log.Logf("At iterate %5d    F= %12.5e    L= %10.3e\n", w.iter, w.f, w.lip)
		}
		if log.Enable(composite.LogVerbose) {
			log.Vector("X", w.x)
		}

		change := math.Max(math.Abs(fold), math.Max(math.Abs(w.f), one))
		switch {
		case !w.restarted && w.iter >= o.Stop.MinIterations &&
			math.Abs(fold-w.f) <= o.Stop.Tolerance*change:
			status = ConvTolerance
		case w.iter >= o.Stop.MaxIterations:
			status = OverIterLimit
		case o.Stop.MaxDuration > 0 && time.Since(w.start) >= o.Stop.MaxDuration:
			status = OverTimeLimit
		}
		if status != 0 {
			break
		}
	}

	d.printExit(status)
	return
}

// printExit logs the final statistics and exit conditions of the optimization process.
func (d *iterDriver) printExit(status Status) {

	o, w := d.optimizer, d.workspace
	log := o.logger
	if !log.Enable(composite.LogLast) {
		return
	}

	log.Logf("\n           * * *\n")
	log.Logf("Tit   = total number of iterations\n")
	log.Logf("Tnp   = total number of proximal evaluations\n")
	log.Logf("L     = final step-size reciprocal\n")
	log.Logf("F     = final objective value\n")
	log.Logf("\n           * * *\n")
	log.Logf("\n   N      Tit      Tnp        L            F\n")
	log.Logf("%5d %6d %8d %10.3e %12.5e\n", o.n, w.iter, w.numProx, w.lip, w.f)
	log.Vector("X", w.x)

	log.Logf("\n%s\n", status)
	log.Logf("\n Total wall time = %.3f secs.\n", time.Since(w.start).Seconds())
}
