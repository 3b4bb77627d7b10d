// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package menu

import (
	"fmt"
	"strings"
	"testing"

	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
	"github.com/VinylRUS/mahrgibrolebot/lib/testutil"
)

var (
	testSpace   = ref.MustParseSpaceID("100000000000000001")
	testChannel = ref.MustParseChannelID("200000000000000001")
)

func memberships(n int) []ref.MembershipID {
	ids := make([]ref.MembershipID, n)
	for i := range ids {
		ids[i] = ref.MustParseMembershipID(fmt.Sprintf("4000000000000000%02d", i+1))
	}
	return ids
}

func TestNew(t *testing.T) {
	candidates := memberships(3)
	definition, err := New(testSpace, testChannel, "Pick your roles", candidates)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if definition.MenuID.IsZero() {
		t.Error("expected a generated menu ID")
	}
	if !definition.MessageID.IsZero() {
		t.Error("message ID must be zero until the message is posted")
	}
	if definition.Title != "Pick your roles" {
		t.Errorf("title = %q", definition.Title)
	}
	if len(definition.MembershipIDs) != 3 {
		t.Fatalf("candidate count = %d, want 3", len(definition.MembershipIDs))
	}

	// The candidate slice is copied, not aliased.
	candidates[0] = ref.MustParseMembershipID("499999999999999999")
	if definition.MembershipIDs[0] == candidates[0] {
		t.Error("Definition aliases the caller's membership slice")
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		memberships []ref.MembershipID
		wantErr     string
	}{
		{"empty title", "", memberships(1), "title is required"},
		{"no memberships", "t", nil, "at least one membership"},
		{"too many memberships", "t", memberships(MaxMemberships + 1), "exceeds the maximum"},
		{"duplicate membership", "t", append(memberships(2), memberships(1)...), "duplicate membership"},
		{"zero membership", "t", []ref.MembershipID{{}}, "must not be empty"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(testSpace, testChannel, test.title, test.memberships)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), test.wantErr)
			}
		})
	}
}

func TestNewAtMaximum(t *testing.T) {
	if _, err := New(testSpace, testChannel, "t", memberships(MaxMemberships)); err != nil {
		t.Fatalf("New failed at the maximum candidate count: %v", err)
	}
}

func TestNewGeneratesDistinctMenuIDs(t *testing.T) {
	first, err := New(testSpace, testChannel, testutil.UniqueID("menu"), memberships(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	second, err := New(testSpace, testChannel, testutil.UniqueID("menu"), memberships(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if first.MenuID == second.MenuID {
		t.Error("two menus share a menu ID")
	}
}

func TestOffers(t *testing.T) {
	definition, err := New(testSpace, testChannel, "t", memberships(2))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !definition.Offers(definition.MembershipIDs[0]) {
		t.Error("Offers = false for a candidate membership")
	}
	if definition.Offers(ref.MustParseMembershipID("499999999999999999")) {
		t.Error("Offers = true for a non-candidate membership")
	}
}
