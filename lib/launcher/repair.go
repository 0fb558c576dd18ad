// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"fmt"

	"github.com/dfolaunch/dfolaunch/lib/pathswap"
	"github.com/dfolaunch/dfolaunch/lib/swapjournal"
)

// RepairOutcome describes what Repair found and did for one swap.
type RepairOutcome struct {
	Spec pathswap.Spec

	// Journaled is true when the swap was listed in the journal as not
	// switched back.
	Journaled bool

	// Broken is true when the swap was found half-done.
	Broken bool

	// Repaired is true when FixBroken succeeded.
	Repaired bool

	// Err is the FixBroken failure, if any.
	Err error
}

// Repair checks the configured swaps and every journaled swap, and
// fixes those left half-done by a crash. It refuses to run while a
// launch is in progress. Journal entries whose paths are healthy
// afterwards are dropped.
func (l *Launcher) Repair(ctx context.Context) ([]RepairOutcome, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	if l.state != StateNone || l.setup != nil || l.run != nil || l.repairing {
		state := l.state
		l.mu.Unlock()
		return nil, &StateError{Op: "repair", State: state, Err: ErrLaunchInProgress}
	}
	l.repairing = true
	config := l.config.Clone()
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.repairing = false
		l.mu.Unlock()
	}()

	type candidate struct {
		spec      pathswap.Spec
		journaled bool
	}
	var candidates []candidate
	index := make(map[string]int)
	add := func(spec pathswap.Spec, journaled bool) {
		id := swapjournal.EntryID(spec)
		if position, ok := index[id]; ok {
			candidates[position].journaled = candidates[position].journaled || journaled
			return
		}
		index[id] = len(candidates)
		candidates = append(candidates, candidate{spec: spec, journaled: journaled})
	}

	for position, spec := range config.Swaps {
		resolved, err := spec.Resolve(config.InstallDir)
		if err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("swaps[%d]", position), Err: err}
		}
		add(resolved, false)
	}
	if l.journal != nil {
		entries, err := l.journal.Entries()
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			add(entry.Spec(), true)
		}
	}

	outcomes := make([]RepairOutcome, 0, len(candidates))
	for _, item := range candidates {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		spec := item.spec
		outcome := RepairOutcome{Spec: spec, Journaled: item.journaled}
		logger := l.logger.With("normal", spec.Normal, "custom", spec.Custom, "temp", spec.Temp)

		if pathswap.IsBroken(spec) {
			outcome.Broken = true
			if err := pathswap.FixBroken(spec); err != nil {
				outcome.Err = err
				logger.Error("repairing swap failed", "inconsistent", isInconsistent(err), "error", err)
			} else {
				outcome.Repaired = true
				logger.Info("repaired interrupted swap")
			}
		}

		if item.journaled && outcome.Err == nil && !pathswap.IsBroken(spec) {
			if err := l.journal.Remove(spec); err != nil {
				logger.Warn("removing repaired swap from journal", "error", err)
			}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
