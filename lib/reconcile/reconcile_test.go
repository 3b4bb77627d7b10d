// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

func ids(suffixes ...int) []ref.MembershipID {
	out := make([]ref.MembershipID, len(suffixes))
	for i, s := range suffixes {
		out[i] = ref.MustParseMembershipID(fmt.Sprintf("4000000000000000%02d", s))
	}
	return out
}

func equalIDs(a, b []ref.MembershipID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name       string
		current    []ref.MembershipID
		candidate  []ref.MembershipID
		selected   []ref.MembershipID
		wantGrant  []ref.MembershipID
		wantRevoke []ref.MembershipID
	}{
		{
			name:       "swap one for two",
			current:    ids(1),
			candidate:  ids(1, 2, 3),
			selected:   ids(2, 3),
			wantGrant:  ids(2, 3),
			wantRevoke: ids(1),
		},
		{
			name:       "deselect everything",
			current:    ids(1, 2),
			candidate:  ids(1, 2, 3),
			selected:   nil,
			wantRevoke: ids(1, 2),
		},
		{
			name:      "select everything already held",
			current:   ids(1, 2, 3),
			candidate: ids(1, 2, 3),
			selected:  ids(1, 2, 3),
		},
		{
			name:      "memberships outside the candidate set are untouched",
			current:   ids(9),
			candidate: ids(1, 2),
			selected:  ids(1),
			wantGrant: ids(1),
		},
		{
			name:      "selected ids outside the candidate set are ignored",
			current:   nil,
			candidate: ids(1),
			selected:  ids(1, 9),
			wantGrant: ids(1),
		},
		{
			name:      "empty candidate set",
			current:   ids(1),
			candidate: nil,
			selected:  ids(1),
		},
		{
			name:       "output follows candidate order",
			current:    ids(3),
			candidate:  ids(1, 2, 3),
			selected:   ids(2, 1),
			wantGrant:  ids(1, 2),
			wantRevoke: ids(3),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			delta := Plan(test.current, test.candidate, test.selected)
			if !equalIDs(delta.Grant, test.wantGrant) {
				t.Errorf("Grant = %v, want %v", delta.Grant, test.wantGrant)
			}
			if !equalIDs(delta.Revoke, test.wantRevoke) {
				t.Errorf("Revoke = %v, want %v", delta.Revoke, test.wantRevoke)
			}
		})
	}
}

func TestPlanProperties(t *testing.T) {
	current := ids(1, 3, 9)
	candidate := ids(1, 2, 3, 4)
	selected := ids(2, 3)

	delta := Plan(current, candidate, selected)

	t.Run("grant and revoke are disjoint", func(t *testing.T) {
		for _, g := range delta.Grant {
			for _, r := range delta.Revoke {
				if g == r {
					t.Errorf("membership %s appears in both grant and revoke", g)
				}
			}
		}
	})

	t.Run("both contained in the candidate set", func(t *testing.T) {
		candidateSet := toSet(candidate)
		for _, id := range append(append([]ref.MembershipID{}, delta.Grant...), delta.Revoke...) {
			if _, ok := candidateSet[id]; !ok {
				t.Errorf("membership %s escaped the candidate set", id)
			}
		}
	})

	t.Run("idempotent at the fixed point", func(t *testing.T) {
		// After applying the delta, replanning the same selection
		// yields an empty delta.
		after := toSet(current)
		for _, id := range delta.Grant {
			after[id] = struct{}{}
		}
		for _, id := range delta.Revoke {
			delete(after, id)
		}
		var next []ref.MembershipID
		for id := range after {
			next = append(next, id)
		}
		replanned := Plan(next, candidate, selected)
		if !replanned.Empty() {
			t.Errorf("replanned delta not empty: %+v", replanned)
		}
	})
}

// fakeApplier records grant/revoke calls and fails on demand.
type fakeApplier struct {
	granted []ref.MembershipID
	revoked []ref.MembershipID
	fail    map[ref.MembershipID]error
}

func (f *fakeApplier) GrantMembership(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID, membershipID ref.MembershipID) error {
	if err := f.fail[membershipID]; err != nil {
		return err
	}
	f.granted = append(f.granted, membershipID)
	return nil
}

func (f *fakeApplier) RevokeMembership(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID, membershipID ref.MembershipID) error {
	if err := f.fail[membershipID]; err != nil {
		return err
	}
	f.revoked = append(f.revoked, membershipID)
	return nil
}

// openSpace is a SpaceView where every referenced membership exists
// below the bot.
type openSpace struct {
	missing map[ref.MembershipID]bool
}

func (s *openSpace) Actor() chat.Member {
	return chat.Member{
		Memberships: []ref.MembershipID{ref.MustParseMembershipID("400000000000000099")},
		Permissions: []chat.Permission{chat.PermissionManageMemberships},
	}
}

func (s *openSpace) Membership(id ref.MembershipID) (chat.Membership, bool) {
	if s.missing[id] {
		return chat.Membership{}, false
	}
	position := 10
	if id == ref.MustParseMembershipID("400000000000000099") {
		position = 90
	}
	return chat.Membership{ID: id, Position: position}, true
}

var (
	testSpaceID = ref.MustParseSpaceID("100000000000000001")
	testUserID  = ref.MustParseUserID("500000000000000001")
)

func TestApply(t *testing.T) {
	applier := &fakeApplier{}
	delta := Delta{Grant: ids(1, 2), Revoke: ids(3)}

	outcome := Apply(context.Background(), applier, &openSpace{}, testSpaceID, testUserID, delta)

	if !equalIDs(outcome.Granted, ids(1, 2)) {
		t.Errorf("Granted = %v, want %v", outcome.Granted, ids(1, 2))
	}
	if !equalIDs(outcome.Revoked, ids(3)) {
		t.Errorf("Revoked = %v, want %v", outcome.Revoked, ids(3))
	}
	if len(outcome.Failures) != 0 {
		t.Errorf("Failures = %v, want none", outcome.Failures)
	}
	if outcome.NoChange() {
		t.Error("NoChange = true for a batch that changed memberships")
	}
}

func TestApplyPartialFailure(t *testing.T) {
	// One transport failure and one guard failure; the rest of the
	// batch still applies.
	transportErr := errors.New("gateway unavailable")
	applier := &fakeApplier{fail: map[ref.MembershipID]error{ids(2)[0]: transportErr}}
	space := &openSpace{missing: map[ref.MembershipID]bool{ids(3)[0]: true}}

	delta := Delta{Grant: ids(1, 2, 3), Revoke: ids(4)}
	outcome := Apply(context.Background(), applier, space, testSpaceID, testUserID, delta)

	if !equalIDs(outcome.Granted, ids(1)) {
		t.Errorf("Granted = %v, want %v", outcome.Granted, ids(1))
	}
	if !equalIDs(outcome.Revoked, ids(4)) {
		t.Errorf("Revoked = %v, want %v", outcome.Revoked, ids(4))
	}
	if len(outcome.Failures) != 2 {
		t.Fatalf("failure count = %d, want 2: %v", len(outcome.Failures), outcome.Failures)
	}
	if outcome.Failures[0].Membership != ids(2)[0] || !errors.Is(outcome.Failures[0].Err, transportErr) {
		t.Errorf("first failure = %+v, want transport failure on %s", outcome.Failures[0], ids(2)[0])
	}
	if outcome.Failures[1].Membership != ids(3)[0] {
		t.Errorf("second failure = %+v, want guard failure on %s", outcome.Failures[1], ids(3)[0])
	}
}

func TestApplyEmptyDelta(t *testing.T) {
	applier := &fakeApplier{}
	outcome := Apply(context.Background(), applier, &openSpace{}, testSpaceID, testUserID, Delta{})
	if !outcome.NoChange() {
		t.Error("NoChange = false for an empty delta")
	}
	if len(applier.granted)+len(applier.revoked) != 0 {
		t.Error("empty delta issued gateway calls")
	}
}

func TestApplyRevokeFailureIsMarked(t *testing.T) {
	transportErr := errors.New("gateway unavailable")
	applier := &fakeApplier{fail: map[ref.MembershipID]error{ids(1)[0]: transportErr}}

	outcome := Apply(context.Background(), applier, &openSpace{}, testSpaceID, testUserID, Delta{Revoke: ids(1)})
	if len(outcome.Failures) != 1 {
		t.Fatalf("failure count = %d, want 1", len(outcome.Failures))
	}
	if !outcome.Failures[0].Revoke {
		t.Error("revoke failure not marked as a revocation")
	}
}
