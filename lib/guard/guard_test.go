// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"errors"
	"testing"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// fakeSpace is a SpaceView over fixed data.
type fakeSpace struct {
	actor       chat.Member
	memberships map[ref.MembershipID]chat.Membership
}

func (f *fakeSpace) Actor() chat.Member { return f.actor }

func (f *fakeSpace) Membership(id ref.MembershipID) (chat.Membership, bool) {
	membership, ok := f.memberships[id]
	return membership, ok
}

var (
	botMembership  = ref.MustParseMembershipID("400000000000000001")
	lowMembership  = ref.MustParseMembershipID("400000000000000002")
	topMembership  = ref.MustParseMembershipID("400000000000000003")
	goneMembership = ref.MustParseMembershipID("400000000000000004")
)

// space: bot holds a position-50 membership; one membership below it,
// one above it.
func testSpace(permissions ...chat.Permission) *fakeSpace {
	return &fakeSpace{
		actor: chat.Member{
			UserID:      ref.MustParseUserID("500000000000000001"),
			Memberships: []ref.MembershipID{botMembership},
			Permissions: permissions,
		},
		memberships: map[ref.MembershipID]chat.Membership{
			botMembership: {ID: botMembership, Name: "bot", Position: 50},
			lowMembership: {ID: lowMembership, Name: "member", Position: 10},
			topMembership: {ID: topMembership, Name: "moderator", Position: 90},
		},
	}
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var unassignable *UnassignableError
	if !errors.As(err, &unassignable) {
		t.Fatalf("expected *UnassignableError, got %T: %v", err, err)
	}
	return unassignable.Reason
}

func TestEnsureAssignable(t *testing.T) {
	space := testSpace(chat.PermissionManageMemberships)
	if err := EnsureAssignable(space, lowMembership); err != nil {
		t.Errorf("EnsureAssignable failed for a membership below the bot: %v", err)
	}
}

func TestEnsureAssignableNoPermission(t *testing.T) {
	space := testSpace()
	err := EnsureAssignable(space, lowMembership)
	if reasonOf(t, err) != ReasonNoManagePermission {
		t.Errorf("reason = %q, want %q", reasonOf(t, err), ReasonNoManagePermission)
	}
}

func TestEnsureAssignableAdministratorImpliesManage(t *testing.T) {
	space := testSpace(chat.PermissionAdministrator)
	if err := EnsureAssignable(space, lowMembership); err != nil {
		t.Errorf("EnsureAssignable failed for an administrator bot: %v", err)
	}
}

func TestEnsureAssignableHierarchy(t *testing.T) {
	space := testSpace(chat.PermissionManageMemberships)

	t.Run("above the bot", func(t *testing.T) {
		err := EnsureAssignable(space, topMembership)
		if reasonOf(t, err) != ReasonHierarchyTooLow {
			t.Errorf("reason = %q, want %q", reasonOf(t, err), ReasonHierarchyTooLow)
		}
	})

	t.Run("equal to the bot", func(t *testing.T) {
		// The bot's own membership is at its top position; "strictly
		// below" excludes it.
		err := EnsureAssignable(space, botMembership)
		if reasonOf(t, err) != ReasonHierarchyTooLow {
			t.Errorf("reason = %q, want %q", reasonOf(t, err), ReasonHierarchyTooLow)
		}
	})
}

func TestEnsureAssignableUnknownMembership(t *testing.T) {
	space := testSpace(chat.PermissionManageMemberships)
	err := EnsureAssignable(space, goneMembership)
	if reasonOf(t, err) != ReasonUnknownMembership {
		t.Errorf("reason = %q, want %q", reasonOf(t, err), ReasonUnknownMembership)
	}
}

func TestEnsureAssignableActorMembershipGone(t *testing.T) {
	// The bot's only held membership has been deleted from the space:
	// it sits at the bottom of the hierarchy and can assign nothing.
	space := testSpace(chat.PermissionManageMemberships)
	delete(space.memberships, botMembership)
	space.memberships[lowMembership] = chat.Membership{ID: lowMembership, Position: 10}

	err := EnsureAssignable(space, lowMembership)
	if reasonOf(t, err) != ReasonHierarchyTooLow {
		t.Errorf("reason = %q, want %q", reasonOf(t, err), ReasonHierarchyTooLow)
	}
}

func TestGuardIsReevaluated(t *testing.T) {
	// The same membership flips from assignable to unassignable when
	// space state changes between calls.
	space := testSpace(chat.PermissionManageMemberships)
	if err := EnsureAssignable(space, lowMembership); err != nil {
		t.Fatalf("EnsureAssignable failed: %v", err)
	}

	// The membership is repositioned above the bot.
	space.memberships[lowMembership] = chat.Membership{ID: lowMembership, Position: 99}
	if err := EnsureAssignable(space, lowMembership); err == nil {
		t.Error("expected failure after the membership moved above the bot")
	}
}

func TestEnsureAdministrator(t *testing.T) {
	admin := chat.Member{Permissions: []chat.Permission{chat.PermissionAdministrator}}
	if err := EnsureAdministrator(admin); err != nil {
		t.Errorf("EnsureAdministrator failed for an administrator: %v", err)
	}

	manager := chat.Member{Permissions: []chat.Permission{chat.PermissionManageMemberships}}
	if err := EnsureAdministrator(manager); err != nil {
		t.Errorf("EnsureAdministrator failed for a membership manager: %v", err)
	}

	ordinary := chat.Member{UserID: ref.MustParseUserID("500000000000000002")}
	if err := EnsureAdministrator(ordinary); err == nil {
		t.Error("expected failure for a member with no permissions")
	}
}
