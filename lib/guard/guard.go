// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package guard decides whether the bot may grant or revoke a given
// membership right now. The answer depends on live space state (the
// bot's permissions and the membership hierarchy), so callers evaluate
// it at every point of use and never cache the result.
package guard

import (
	"fmt"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// SpaceView is the slice of space state the guard needs. The service
// binary's space directory implements it over gateway snapshots.
type SpaceView interface {
	// Actor returns the bot's own member record in the space.
	Actor() chat.Member

	// Membership looks up a membership by ID in the space's current
	// membership set.
	Membership(id ref.MembershipID) (chat.Membership, bool)
}

// Reason classifies why a membership is not assignable.
type Reason string

const (
	// ReasonNoManagePermission: the bot lacks the manage-memberships
	// permission in the space.
	ReasonNoManagePermission Reason = "no_manage_permission"
	// ReasonHierarchyTooLow: the membership is positioned at or above
	// the bot's highest membership.
	ReasonHierarchyTooLow Reason = "hierarchy_too_low"
	// ReasonUnknownMembership: the membership no longer exists in the
	// space.
	ReasonUnknownMembership Reason = "unknown_membership"
)

// UnassignableError reports that the bot cannot grant or revoke a
// membership, and why.
type UnassignableError struct {
	Reason     Reason
	Membership ref.MembershipID
}

func (e *UnassignableError) Error() string {
	switch e.Reason {
	case ReasonNoManagePermission:
		return "guard: missing manage-memberships permission"
	case ReasonHierarchyTooLow:
		return fmt.Sprintf("guard: membership %s is not below the bot's highest membership", e.Membership)
	case ReasonUnknownMembership:
		return fmt.Sprintf("guard: membership %s does not exist in the space", e.Membership)
	default:
		return fmt.Sprintf("guard: membership %s is not assignable (%s)", e.Membership, e.Reason)
	}
}

// EnsureAssignable checks that the bot may grant or revoke the given
// membership in the space right now. Returns nil when assignable, or
// an *UnassignableError naming the blocking condition. The check runs
// against the view's current state; never reuse a past answer.
func EnsureAssignable(space SpaceView, membershipID ref.MembershipID) error {
	actor := space.Actor()
	if !actor.HasPermission(chat.PermissionManageMemberships) {
		return &UnassignableError{Reason: ReasonNoManagePermission, Membership: membershipID}
	}

	target, ok := space.Membership(membershipID)
	if !ok {
		return &UnassignableError{Reason: ReasonUnknownMembership, Membership: membershipID}
	}

	if target.Position >= actorTopPosition(space, actor) {
		return &UnassignableError{Reason: ReasonHierarchyTooLow, Membership: membershipID}
	}
	return nil
}

// EnsureAdministrator checks that a member may administer the bot's
// configuration in the space. Satisfied by the manage-memberships
// permission (administrator implies it).
func EnsureAdministrator(member chat.Member) error {
	if !member.HasPermission(chat.PermissionManageMemberships) {
		return fmt.Errorf("guard: %s lacks the manage-memberships permission", member.UserID)
	}
	return nil
}

// actorTopPosition returns the position of the actor's
// highest-positioned membership. Memberships the actor holds that no
// longer exist in the space contribute nothing. An actor with no
// resolvable memberships sits at the bottom of the hierarchy.
func actorTopPosition(space SpaceView, actor chat.Member) int {
	top := -1 << 31
	for _, held := range actor.Memberships {
		membership, ok := space.Membership(held)
		if !ok {
			continue
		}
		if membership.Position > top {
			top = membership.Position
		}
	}
	return top
}
