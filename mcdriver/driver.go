// Package mcdriver ties together a Propagator, a Hamiltonian, and an
// accepted/trial Space pair into the Metropolis sweep loop: sample a move,
// propose it against trial, evaluate the restricted energy delta, accept or
// reject, sync the two Space instances back to agreement.
package mcdriver

import (
	"math"

	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/energy"
	"github.com/molsim/mcengine/internal/mclog"
	"github.com/molsim/mcengine/internal/mcerr"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/propagator"
	"github.com/molsim/mcengine/space"
)

// DriftTolerance bounds the *relative* divergence of the incrementally-
// tracked total energy from a fresh full recomputation -- drift is judged
// against max(1, |full|), not as an absolute difference, so the bound
// stays meaningful whether the system's total energy is near zero or in
// the thousands of kT.
const DriftTolerance = 1e-4

// Driver runs the Metropolis loop described by the engine's core design:
// two Space instances (Accepted, Trial) kept in sync by Change, one shared
// Hamiltonian evaluated against whichever Space a step needs, one
// Propagator choosing the move, one rng.Pair driving every random draw.
//
// A single Hamiltonian instance serves both spaces: every concrete Term is
// stateless between calls (UpdateState is a no-op for all of them), so
// there is nothing a second instance would hold that the first doesn't --
// using one value for both "accepted" and "trial" evaluation avoids
// duplicating term configuration for no behavioral difference.
type Driver struct {
	Accepted *space.Space
	Trial    *space.Space
	H        *energy.Hamiltonian
	Prop     *propagator.Propagator
	RNG      *rng.Pair
	Logger   mclog.Logger

	StepCount int64

	// UTotal is the running total configurational energy of Accepted,
	// maintained incrementally (UTotal += restricted ΔU on every accept)
	// rather than recomputed from scratch each step. UInit is its value at
	// construction, kept for the drift report.
	UTotal float64
	UInit  float64

	// DriftCheckEvery triggers a full H.Energy(Accepted, all) recomputation
	// every this-many accepted steps, compared against UTotal. Zero
	// disables the check.
	DriftCheckEvery int64
	acceptedSince   int64

	c change.Change // scratch Change, reused across steps
}

// New builds a Driver and seeds UTotal/UInit from a full evaluation of the
// accepted state -- the only O(N) energy evaluation the driver ever
// performs outside of drift checks.
func New(accepted, trial *space.Space, h *energy.Hamiltonian, prop *propagator.Propagator, rng *rng.Pair, logger mclog.Logger) *Driver {
	u0 := h.Energy(accepted, &change.Change{All: true})
	return &Driver{
		Accepted:        accepted,
		Trial:           trial,
		H:               h,
		Prop:            prop,
		RNG:             rng,
		Logger:          logger,
		UTotal:          u0,
		UInit:           u0,
		DriftCheckEvery: 10000,
	}
}

// Step draws one move and runs it to an accept/reject decision. It returns
// (false, nil) both when no move was registered and when the drawn move's
// proposal came back empty (an expected rejection, e.g. a speciation
// attempt that found no feasible reactant) -- in neither case is energy
// ever evaluated.
func (d *Driver) Step() (accepted bool, err error) {
	mv := d.Prop.Sample(d.RNG)
	if mv == nil {
		return false, nil
	}

	d.c.Clear()
	mv.Propose(d.Trial, d.RNG, &d.c)

	if d.c.Empty() {
		mv.Reject(&d.c)
		d.Trial.Sync(d.Accepted, &d.c)
		d.StepCount++
		return false, nil
	}

	// uOld/uNew are the Hamiltonian restricted to exactly the same subset
	// (every group the change touches), evaluated once against the
	// pre-move state and once against the post-move state. Pairs that
	// involve no changed particle contribute identically to both sums and
	// cancel, so the difference is the exact global energy delta without
	// ever summing the untouched bulk of the system.
	uOld := d.H.Energy(d.Accepted, &d.c)
	uNew := d.H.Energy(d.Trial, &d.c)

	var deltaU float64
	if math.IsInf(uNew, 1) {
		deltaU = energy.Inf
	} else {
		bias := mv.Bias(&d.c, uOld, uNew)
		ideal := idealTerm(d.Accepted, d.Trial, &d.c)
		deltaU = (uNew - uOld) + bias + ideal
	}

	accepted = deltaU <= 0 || d.RNG.Move.Float64() < math.Exp(-deltaU)

	if accepted {
		mv.Accept(&d.c)
		d.Accepted.Sync(d.Trial, &d.c)
		d.H.UpdateState(d.Accepted, &d.c)
		if !math.IsInf(uNew, 1) {
			d.UTotal += uNew - uOld
		}
		d.acceptedSince++
		if d.DriftCheckEvery > 0 && d.acceptedSince >= d.DriftCheckEvery {
			d.acceptedSince = 0
			if cerr := d.checkDrift(mv.Name()); cerr != nil {
				d.StepCount++
				return true, cerr
			}
		}
	} else {
		mv.Reject(&d.c)
		d.Trial.Sync(d.Accepted, &d.c)
	}

	d.StepCount++
	return accepted, nil
}

// checkDrift recomputes the accepted state's total energy from scratch and
// compares it against the incrementally-tracked UTotal.
func (d *Driver) checkDrift(moveName string) error {
	full := d.H.Energy(d.Accepted, &change.Change{All: true})
	drift := math.Abs(full-d.UTotal) / math.Max(1, math.Abs(full))
	if drift > DriftTolerance {
		if d.Logger != nil {
			d.Logger.Errorf("energy drift %.3e exceeds tolerance at step %d", drift, d.StepCount)
		}
		return mcerr.NewConsistencyError(moveName, d.StepCount, -1, -1,
			"accumulated energy diverged from a full recomputation beyond tolerance")
	}
	d.UTotal = full
	if d.Logger != nil {
		d.Logger.Debugf("drift check ok at step %d: |%.6e| <= %.1e", d.StepCount, drift, DriftTolerance)
	}
	return nil
}

// Sweep runs n Propagator draws (n defaults to Prop.Repeat when n<=0),
// stopping early and returning the first error a Step reports.
func (d *Driver) Sweep(n int) error {
	if n <= 0 {
		n = d.Prop.Repeat
	}
	for i := 0; i < n; i++ {
		if _, err := d.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Run performs macro outer sweeps of micro Steps each. stop is checked
// before each sweep and Run returns as soon as it reports true; a sweep
// already started always runs to completion -- the cooperative
// cancellation point a CLI's signal handler or a replica-exchange round
// uses.
func (d *Driver) Run(macro, micro int, stop func() bool) error {
	for i := 0; i < macro; i++ {
		if stop != nil && stop() {
			return nil
		}
		if err := d.Sweep(micro); err != nil {
			return err
		}
	}
	return nil
}
