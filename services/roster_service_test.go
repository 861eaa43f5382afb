package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/SportsAmigo/SportsAmigo-sub000/notify"
)

type rosterFixture struct {
	teams       *fakeTeamRepo
	memberships *fakeMembershipRepo
	requests    *fakeJoinRequestRepo
	publisher   *capturingPublisher
	service     RosterService
}

func newRosterFixture() *rosterFixture {
	teams := newFakeTeamRepo()
	memberships := newFakeMembershipRepo(teams)
	requests := newFakeJoinRequestRepo(teams)
	publisher := &capturingPublisher{}
	return &rosterFixture{
		teams:       teams,
		memberships: memberships,
		requests:    requests,
		publisher:   publisher,
		service:     NewRosterService(memberships, requests, teams, publisher),
	}
}

func (f *rosterFixture) seedTeam(t *testing.T, name string, managerID int, capacity *int) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, Sport: "football", ManagerID: managerID, MemberCapacity: capacity}
	if err := f.teams.Create(context.Background(), team); err != nil {
		t.Fatalf("seed team: %v", err)
	}
	return team
}

func TestAddMemberIdempotent(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()
	team := f.seedTeam(t, "Hawks", 10, nil)

	first, err := f.service.AddMember(ctx, team.ID, 42)
	if err != nil {
		t.Fatalf("first AddMember: %v", err)
	}
	if first.Status != models.MembershipActive {
		t.Fatalf("expected active membership, got %s", first.Status)
	}

	second, err := f.service.AddMember(ctx, team.ID, 42)
	if err != nil {
		t.Fatalf("second AddMember: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same membership row, got %d and %d", first.ID, second.ID)
	}

	count, _ := f.memberships.CountActiveByTeam(ctx, team.ID)
	if count != 1 {
		t.Fatalf("expected exactly one active membership, got %d", count)
	}
}

func TestAddMemberReactivatesInactive(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()
	team := f.seedTeam(t, "Hawks", 10, nil)

	m, err := f.service.AddMember(ctx, team.ID, 42)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := f.memberships.UpdateStatus(ctx, nil, m.ID, models.MembershipInactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	again, err := f.service.AddMember(ctx, team.ID, 42)
	if err != nil {
		t.Fatalf("AddMember after deactivation: %v", err)
	}
	if again.ID != m.ID {
		t.Fatalf("expected reactivated row %d, got %d", m.ID, again.ID)
	}
	if again.Status != models.MembershipActive {
		t.Fatalf("expected active status, got %s", again.Status)
	}
}

func TestAddMemberTeamFull(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()
	capacity := 1
	team := f.seedTeam(t, "Hawks", 10, &capacity)

	if _, err := f.service.AddMember(ctx, team.ID, 42); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	_, err := f.service.AddMember(ctx, team.ID, 43)
	if !errors.Is(err, ErrTeamFull) {
		t.Fatalf("expected ErrTeamFull, got %v", err)
	}

	// Re-adding the existing member hits the idempotent path, not capacity.
	if _, err := f.service.AddMember(ctx, team.ID, 42); err != nil {
		t.Fatalf("re-add existing member: %v", err)
	}
}

func TestAddMemberTeamNotFound(t *testing.T) {
	f := newRosterFixture()
	_, err := f.service.AddMember(context.Background(), 999, 42)
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
}

func TestAddMemberByManagerForbidden(t *testing.T) {
	f := newRosterFixture()
	team := f.seedTeam(t, "Hawks", 10, nil)

	_, err := f.service.AddMemberByManager(context.Background(), team.ID, 42, 11)
	if !errors.Is(err, ErrManagerActionRequired) {
		t.Fatalf("expected ErrManagerActionRequired, got %v", err)
	}
}

func TestRemoveMemberPurgesJoinRequests(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()
	team := f.seedTeam(t, "Hawks", 10, nil)

	if err := f.requests.Create(ctx, &models.JoinRequest{TeamID: team.ID, PlayerID: 42, Status: models.JoinRequestApproved}); err != nil {
		t.Fatalf("seed join request: %v", err)
	}
	if _, err := f.service.AddMember(ctx, team.ID, 42); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := f.service.RemoveMember(ctx, team.ID, 42, 10); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	if _, err := f.memberships.FindByTeamAndPlayer(ctx, team.ID, 42); err == nil {
		t.Fatal("expected membership to be deleted")
	}
	if _, err := f.requests.FindByTeamAndPlayer(ctx, team.ID, 42); err == nil {
		t.Fatal("expected join requests to be purged")
	}

	// The evicted player can immediately ask to join again.
	if err := f.requests.Create(ctx, &models.JoinRequest{TeamID: team.ID, PlayerID: 42, Status: models.JoinRequestPending}); err != nil {
		t.Fatalf("re-request after removal: %v", err)
	}
}

func TestRemoveMemberAuthorization(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()
	team := f.seedTeam(t, "Hawks", 10, nil)
	if _, err := f.service.AddMember(ctx, team.ID, 42); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	// Some unrelated user can neither evict nor impersonate.
	err := f.service.RemoveMember(ctx, team.ID, 42, 77)
	if !errors.Is(err, ErrRemoveMemberForbidden) {
		t.Fatalf("expected ErrRemoveMemberForbidden, got %v", err)
	}

	// Self-leave is allowed.
	if err := f.service.RemoveMember(ctx, team.ID, 42, 42); err != nil {
		t.Fatalf("self-leave: %v", err)
	}
	if len(f.publisher.events) != 0 {
		t.Fatalf("self-leave must not notify, got %d events", len(f.publisher.events))
	}
}

func TestRemoveMemberByManagerNotifiesPlayer(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()
	team := f.seedTeam(t, "Hawks", 10, nil)
	if _, err := f.service.AddMember(ctx, team.ID, 42); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := f.service.RemoveMember(ctx, team.ID, 42, 10); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.publisher.events))
	}
	got := f.publisher.events[0]
	if got.userID != 42 || got.event.Type != notify.EventMemberRemoved {
		t.Fatalf("unexpected notification: user %d type %s", got.userID, got.event.Type)
	}
}

func TestRemoveMemberNotFound(t *testing.T) {
	f := newRosterFixture()
	team := f.seedTeam(t, "Hawks", 10, nil)

	err := f.service.RemoveMember(context.Background(), team.ID, 42, 10)
	if !errors.Is(err, ErrMembershipNotFound) {
		t.Fatalf("expected ErrMembershipNotFound, got %v", err)
	}
}

func TestIsMemberBatchExplicitFalse(t *testing.T) {
	f := newRosterFixture()
	ctx := context.Background()
	hawks := f.seedTeam(t, "Hawks", 10, nil)
	owls := f.seedTeam(t, "Owls", 11, nil)
	if _, err := f.service.AddMember(ctx, hawks.ID, 42); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	result, err := f.service.IsMember(ctx, 42, []int{hawks.ID, owls.ID, 999})
	if err != nil {
		t.Fatalf("IsMember: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result))
	}
	if !result[hawks.ID] {
		t.Errorf("expected member of team %d", hawks.ID)
	}
	if result[owls.ID] {
		t.Errorf("expected non-member of team %d", owls.ID)
	}
	if got, ok := result[999]; !ok || got {
		t.Errorf("expected explicit false for unknown team, got %v (present=%v)", got, ok)
	}
}

func TestListMembersTeamNotFound(t *testing.T) {
	f := newRosterFixture()
	_, err := f.service.ListMembers(context.Background(), 999)
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
}
