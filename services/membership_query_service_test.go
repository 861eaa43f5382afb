package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
)

type queryFixture struct {
	teams       *fakeTeamRepo
	memberships *fakeMembershipRepo
	users       *fakeUserRepo
	roster      RosterService
	service     MembershipQueryService
}

func newQueryFixture() *queryFixture {
	teams := newFakeTeamRepo()
	memberships := newFakeMembershipRepo(teams)
	requests := newFakeJoinRequestRepo(teams)
	users := newFakeUserRepo()
	roster := NewRosterService(memberships, requests, teams, &capturingPublisher{})
	return &queryFixture{
		teams:       teams,
		memberships: memberships,
		users:       users,
		roster:      roster,
		service:     NewMembershipQueryService(memberships, teams, users, roster),
	}
}

func TestTeamsForPlayer(t *testing.T) {
	f := newQueryFixture()
	ctx := context.Background()

	hawks := &models.Team{Name: "Hawks", Sport: "football", ManagerID: 10}
	owls := &models.Team{Name: "Owls", Sport: "hockey", ManagerID: 11}
	for _, team := range []*models.Team{hawks, owls} {
		if err := f.teams.Create(ctx, team); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}

	if _, err := f.roster.AddMember(ctx, hawks.ID, 42); err != nil {
		t.Fatalf("AddMember hawks: %v", err)
	}
	if _, err := f.roster.AddMember(ctx, owls.ID, 42); err != nil {
		t.Fatalf("AddMember owls: %v", err)
	}
	// An inactive membership must not surface.
	m, _ := f.memberships.FindByTeamAndPlayer(ctx, owls.ID, 42)
	if err := f.memberships.UpdateStatus(ctx, nil, m.ID, models.MembershipInactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	teams, err := f.service.TeamsForPlayer(ctx, 42)
	if err != nil {
		t.Fatalf("TeamsForPlayer: %v", err)
	}
	if len(teams) != 1 {
		t.Fatalf("expected 1 team, got %d", len(teams))
	}
	if teams[0].ID != hawks.ID {
		t.Fatalf("expected team %d, got %d", hawks.ID, teams[0].ID)
	}
}

func TestTeamManager(t *testing.T) {
	f := newQueryFixture()
	ctx := context.Background()

	manager := &models.User{FirstName: "Mara", Email: "mara@example.com", PasswordHash: "secret", Role: models.RoleManager}
	if err := f.users.Create(ctx, manager); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	team := &models.Team{Name: "Hawks", Sport: "football", ManagerID: manager.ID}
	if err := f.teams.Create(ctx, team); err != nil {
		t.Fatalf("seed team: %v", err)
	}

	got, err := f.service.TeamManager(ctx, team.ID)
	if err != nil {
		t.Fatalf("TeamManager: %v", err)
	}
	if got.ID != manager.ID {
		t.Fatalf("expected manager %d, got %d", manager.ID, got.ID)
	}
	if got.PasswordHash != "" {
		t.Fatal("password hash must not be exposed")
	}
}

func TestTeamManagerTeamNotFound(t *testing.T) {
	f := newQueryFixture()
	_, err := f.service.TeamManager(context.Background(), 999)
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
}
