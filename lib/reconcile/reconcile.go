// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile turns a menu selection into membership changes.
// Planning is pure set arithmetic over the menu's candidate set;
// application re-checks the assignability guard per membership and
// tolerates partial failure, so one blocked membership never aborts
// the rest of the batch.
package reconcile

import (
	"context"

	"github.com/VinylRUS/mahrgibrolebot/lib/guard"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// Delta is the planned change set. Both slices follow the candidate
// order of the menu, so outcomes read the same way the menu does.
type Delta struct {
	// Grant: selected candidates the user does not hold yet.
	Grant []ref.MembershipID
	// Revoke: unselected candidates the user currently holds.
	Revoke []ref.MembershipID
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.Grant) == 0 && len(d.Revoke) == 0
}

// Plan computes the delta for one selection. current is the user's
// full membership set; candidate is the menu's offering; selected is
// what the user submitted. Memberships outside the candidate set are
// untouched: held ones stay held, and selected IDs that are not
// candidates are ignored.
func Plan(current, candidate, selected []ref.MembershipID) Delta {
	currentSet := toSet(current)
	selectedSet := toSet(selected)

	var delta Delta
	for _, id := range candidate {
		_, held := currentSet[id]
		_, wanted := selectedSet[id]
		switch {
		case wanted && !held:
			delta.Grant = append(delta.Grant, id)
		case !wanted && held:
			delta.Revoke = append(delta.Revoke, id)
		}
	}
	return delta
}

func toSet(ids []ref.MembershipID) map[ref.MembershipID]struct{} {
	set := make(map[ref.MembershipID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// MembershipApplier issues the actual membership changes. Satisfied
// by chat.Session.
type MembershipApplier interface {
	GrantMembership(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID, membershipID ref.MembershipID) error
	RevokeMembership(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID, membershipID ref.MembershipID) error
}

// Failure records one membership the batch could not change.
type Failure struct {
	Membership ref.MembershipID
	// Revoke is true when the failed operation was a revocation.
	Revoke bool
	Err    error
}

// Outcome is the result of applying a delta: what actually changed
// and what failed, in candidate order.
type Outcome struct {
	Granted  []ref.MembershipID
	Revoked  []ref.MembershipID
	Failures []Failure
}

// NoChange reports whether the batch was an explicit no-op: nothing
// changed and nothing failed.
func (o Outcome) NoChange() bool {
	return len(o.Granted) == 0 && len(o.Revoked) == 0 && len(o.Failures) == 0
}

// Apply executes a delta for one user. Every membership is
// re-validated through the guard at apply time, because space state
// may have shifted since the menu was created or the plan was made.
// Failures (guard or transport) are recorded per membership and the
// batch continues.
func Apply(ctx context.Context, applier MembershipApplier, space guard.SpaceView, spaceID ref.SpaceID, userID ref.UserID, delta Delta) Outcome {
	var outcome Outcome

	for _, id := range delta.Grant {
		if err := guard.EnsureAssignable(space, id); err != nil {
			outcome.Failures = append(outcome.Failures, Failure{Membership: id, Err: err})
			continue
		}
		if err := applier.GrantMembership(ctx, spaceID, userID, id); err != nil {
			outcome.Failures = append(outcome.Failures, Failure{Membership: id, Err: err})
			continue
		}
		outcome.Granted = append(outcome.Granted, id)
	}

	for _, id := range delta.Revoke {
		if err := guard.EnsureAssignable(space, id); err != nil {
			outcome.Failures = append(outcome.Failures, Failure{Membership: id, Revoke: true, Err: err})
			continue
		}
		if err := applier.RevokeMembership(ctx, spaceID, userID, id); err != nil {
			outcome.Failures = append(outcome.Failures, Failure{Membership: id, Revoke: true, Err: err})
			continue
		}
		outcome.Revoked = append(outcome.Revoked, id)
	}

	return outcome
}
