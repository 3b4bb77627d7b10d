// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package restore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/menu"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

var (
	testSpace   = ref.MustParseSpaceID("100000000000000001")
	testChannel = ref.MustParseChannelID("200000000000000001")
	testMessage = ref.MustParseMessageID("300000000000000001")
)

// fakeDirectory resolves spaces from a fixed map.
type fakeDirectory struct {
	spaces map[ref.SpaceID]*chat.Space
}

func (f *fakeDirectory) Space(id ref.SpaceID) (*chat.Space, bool) {
	space, ok := f.spaces[id]
	return space, ok
}

// fakeFetcher serves or denies message fetches.
type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) FetchMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*chat.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &chat.Message{ID: messageID, ChannelID: channelID}, nil
}

func testDefinition(t *testing.T, memberships ...int) menu.Definition {
	t.Helper()
	ids := make([]ref.MembershipID, len(memberships))
	for i, m := range memberships {
		ids[i] = ref.MustParseMembershipID(fmt.Sprintf("4000000000000000%02d", m))
	}
	definition, err := menu.New(testSpace, testChannel, "Pick your roles", ids)
	if err != nil {
		t.Fatalf("menu.New failed: %v", err)
	}
	definition.MessageID = testMessage
	return definition
}

func healthySpace(memberships ...int) *chat.Space {
	space := &chat.Space{
		ID:       testSpace,
		Name:     "test space",
		Channels: []chat.Channel{{ID: testChannel, Name: "general"}},
	}
	for _, m := range memberships {
		id := ref.MustParseMembershipID(fmt.Sprintf("4000000000000000%02d", m))
		space.Memberships = append(space.Memberships, chat.Membership{ID: id, Name: fmt.Sprintf("role-%d", m), Position: m})
	}
	return space
}

func testRestorer(directory *fakeDirectory, fetcher *fakeFetcher, attach AttachFunc) *Restorer {
	if attach == nil {
		attach = func(ctx context.Context, definition menu.Definition, memberships []chat.Membership) error {
			return nil
		}
	}
	return &Restorer{
		Spaces:   directory,
		Messages: fetcher,
		Attach:   attach,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRestoreEntryAttaches(t *testing.T) {
	directory := &fakeDirectory{spaces: map[ref.SpaceID]*chat.Space{testSpace: healthySpace(1, 2)}}

	var attachedWith []chat.Membership
	restorer := testRestorer(directory, &fakeFetcher{}, func(ctx context.Context, definition menu.Definition, memberships []chat.Membership) error {
		attachedWith = memberships
		return nil
	})

	result := restorer.RestoreEntry(context.Background(), testDefinition(t, 1, 2))
	if result.State != Attached {
		t.Fatalf("state = %q, want attached (reason: %s, err: %v)", result.State, result.Reason, result.Err)
	}
	if len(attachedWith) != 2 {
		t.Errorf("attached with %d memberships, want 2", len(attachedWith))
	}
}

func TestRestoreEntryAbandonment(t *testing.T) {
	notFound := &chat.GatewayError{Code: chat.ErrCodeNotFound, StatusCode: http.StatusNotFound}

	tests := []struct {
		name       string
		directory  *fakeDirectory
		fetcher    *fakeFetcher
		wantReason string
	}{
		{
			name:       "space missing",
			directory:  &fakeDirectory{},
			fetcher:    &fakeFetcher{},
			wantReason: "not in directory",
		},
		{
			name: "channel gone",
			directory: &fakeDirectory{spaces: map[ref.SpaceID]*chat.Space{testSpace: {
				ID:          testSpace,
				Memberships: healthySpace(1).Memberships,
			}}},
			fetcher:    &fakeFetcher{},
			wantReason: "gone from space",
		},
		{
			name:       "message deleted",
			directory:  &fakeDirectory{spaces: map[ref.SpaceID]*chat.Space{testSpace: healthySpace(1)}},
			fetcher:    &fakeFetcher{err: notFound},
			wantReason: "deleted",
		},
		{
			name: "no surviving memberships",
			directory: &fakeDirectory{spaces: map[ref.SpaceID]*chat.Space{testSpace: func() *chat.Space {
				space := healthySpace()
				return space
			}()}},
			fetcher:    &fakeFetcher{},
			wantReason: "no candidate memberships survive",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			restorer := testRestorer(test.directory, test.fetcher, nil)
			result := restorer.RestoreEntry(context.Background(), testDefinition(t, 1))
			if result.State != Abandoned {
				t.Fatalf("state = %q, want abandoned", result.State)
			}
			if !strings.Contains(result.Reason, test.wantReason) {
				t.Errorf("reason = %q, want substring %q", result.Reason, test.wantReason)
			}
		})
	}
}

func TestRestoreEntryTransportFailureCarriesError(t *testing.T) {
	transportErr := errors.New("gateway unavailable")
	directory := &fakeDirectory{spaces: map[ref.SpaceID]*chat.Space{testSpace: healthySpace(1)}}
	restorer := testRestorer(directory, &fakeFetcher{err: transportErr}, nil)

	result := restorer.RestoreEntry(context.Background(), testDefinition(t, 1))
	if result.State != Abandoned {
		t.Fatalf("state = %q, want abandoned", result.State)
	}
	if !errors.Is(result.Err, transportErr) {
		t.Errorf("result error = %v, want the transport error", result.Err)
	}
}

func TestRestoreEntryDropsVanishedMemberships(t *testing.T) {
	// Menu offers 1, 2, 3 but only 2 still exists in the space.
	directory := &fakeDirectory{spaces: map[ref.SpaceID]*chat.Space{testSpace: healthySpace(2)}}

	var attachedWith []chat.Membership
	restorer := testRestorer(directory, &fakeFetcher{}, func(ctx context.Context, definition menu.Definition, memberships []chat.Membership) error {
		attachedWith = memberships
		return nil
	})

	result := restorer.RestoreEntry(context.Background(), testDefinition(t, 1, 2, 3))
	if result.State != Attached {
		t.Fatalf("state = %q, want attached", result.State)
	}
	if len(attachedWith) != 1 || attachedWith[0].Name != "role-2" {
		t.Errorf("surviving memberships = %+v, want only role-2", attachedWith)
	}
}

func TestRestoreAllEntriesAreIndependent(t *testing.T) {
	// Two menus: the first one's space is gone, the second restores.
	missingSpace := ref.MustParseSpaceID("100000000000000002")
	broken := testDefinition(t, 1)
	broken.SpaceID = missingSpace

	healthy := testDefinition(t, 1)

	directory := &fakeDirectory{spaces: map[ref.SpaceID]*chat.Space{testSpace: healthySpace(1)}}
	restorer := testRestorer(directory, &fakeFetcher{}, nil)

	attached := restorer.RestoreAll(context.Background(), []menu.Definition{broken, healthy})
	if attached != 1 {
		t.Errorf("attached = %d, want 1", attached)
	}
}

func TestRestoreAllAttachFailureAbandons(t *testing.T) {
	directory := &fakeDirectory{spaces: map[ref.SpaceID]*chat.Space{testSpace: healthySpace(1)}}
	restorer := testRestorer(directory, &fakeFetcher{}, func(ctx context.Context, definition menu.Definition, memberships []chat.Membership) error {
		return errors.New("control registry full")
	})

	attached := restorer.RestoreAll(context.Background(), []menu.Definition{testDefinition(t, 1)})
	if attached != 0 {
		t.Errorf("attached = %d, want 0", attached)
	}
}
