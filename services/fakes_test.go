package services

import (
	"context"
	"sort"
	"time"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/SportsAmigo/SportsAmigo-sub000/notify"
	"github.com/SportsAmigo/SportsAmigo-sub000/repositories"
)

// In-memory repository fakes backing the service tests. They enforce the
// same uniqueness rules as the partial indexes in the schema so the services
// see realistic conflict errors.

type fakeTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (f *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	for _, t := range f.teams {
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = f.nextID
	f.nextID++
	team.CreatedAt = time.Now()
	cp := *team
	f.teams[team.ID] = &cp
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) ListByManager(_ context.Context, managerID int) ([]*models.Team, error) {
	var out []*models.Team
	for _, t := range f.teams {
		if t.ManagerID == managerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	if _, ok := f.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	cp := *team
	f.teams[team.ID] = &cp
	return nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

type fakeMembershipRepo struct {
	memberships map[int]*models.Membership
	nextID      int
	teams       *fakeTeamRepo
}

func newFakeMembershipRepo(teams *fakeTeamRepo) *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[int]*models.Membership), nextID: 1, teams: teams}
}

func (f *fakeMembershipRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Membership) error {
	for _, existing := range f.memberships {
		if existing.TeamID == m.TeamID && existing.PlayerID == m.PlayerID {
			return repositories.ErrMembershipConflict
		}
	}
	m.ID = f.nextID
	f.nextID++
	m.JoinedAt = time.Now()
	cp := *m
	f.memberships[m.ID] = &cp
	return nil
}

func (f *fakeMembershipRepo) FindByTeamAndPlayer(_ context.Context, teamID, playerID int) (*models.Membership, error) {
	for _, m := range f.memberships {
		if m.TeamID == teamID && m.PlayerID == playerID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repositories.ErrMembershipNotFound
}

func (f *fakeMembershipRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.MembershipStatus) error {
	m, ok := f.memberships[id]
	if !ok {
		return repositories.ErrMembershipNotFound
	}
	m.Status = status
	return nil
}

func (f *fakeMembershipRepo) ListActiveByTeam(_ context.Context, teamID int) ([]*models.Membership, error) {
	var out []*models.Membership
	for _, m := range f.memberships {
		if m.TeamID == teamID && m.Status == models.MembershipActive {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMembershipRepo) ListActiveByPlayer(ctx context.Context, playerID int) ([]*models.Membership, error) {
	var out []*models.Membership
	for _, m := range f.memberships {
		if m.PlayerID == playerID && m.Status == models.MembershipActive {
			cp := *m
			if team, err := f.teams.GetByID(ctx, m.TeamID); err == nil {
				cp.Team = team
			}
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMembershipRepo) FilterActiveTeams(_ context.Context, playerID int, teamIDs []int) (map[int]bool, error) {
	active := make(map[int]bool)
	for _, m := range f.memberships {
		if m.PlayerID != playerID || m.Status != models.MembershipActive {
			continue
		}
		for _, id := range teamIDs {
			if m.TeamID == id {
				active[id] = true
			}
		}
	}
	return active, nil
}

func (f *fakeMembershipRepo) CountActiveByTeam(_ context.Context, teamID int) (int, error) {
	count := 0
	for _, m := range f.memberships {
		if m.TeamID == teamID && m.Status == models.MembershipActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeMembershipRepo) DeleteByTeamAndPlayer(_ context.Context, _ repositories.SQLExecutor, teamID, playerID int) error {
	for id, m := range f.memberships {
		if m.TeamID == teamID && m.PlayerID == playerID {
			delete(f.memberships, id)
			return nil
		}
	}
	return repositories.ErrMembershipNotFound
}

type fakeJoinRequestRepo struct {
	requests map[int]*models.JoinRequest
	nextID   int
	teams    *fakeTeamRepo
	now      time.Time
}

func newFakeJoinRequestRepo(teams *fakeTeamRepo) *fakeJoinRequestRepo {
	return &fakeJoinRequestRepo{
		requests: make(map[int]*models.JoinRequest),
		nextID:   1,
		teams:    teams,
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeJoinRequestRepo) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeJoinRequestRepo) Create(_ context.Context, jr *models.JoinRequest) error {
	for _, existing := range f.requests {
		if existing.TeamID == jr.TeamID && existing.PlayerID == jr.PlayerID && existing.Status == models.JoinRequestPending {
			return repositories.ErrJoinRequestConflict
		}
	}
	jr.ID = f.nextID
	f.nextID++
	jr.RequestedAt = f.tick()
	cp := *jr
	f.requests[jr.ID] = &cp
	return nil
}

func (f *fakeJoinRequestRepo) FindByTeamAndPlayer(_ context.Context, teamID, playerID int) (*models.JoinRequest, error) {
	var latest *models.JoinRequest
	for _, jr := range f.requests {
		if jr.TeamID != teamID || jr.PlayerID != playerID {
			continue
		}
		if latest == nil || jr.RequestedAt.After(latest.RequestedAt) {
			latest = jr
		}
	}
	if latest == nil {
		return nil, repositories.ErrJoinRequestNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeJoinRequestRepo) FindPending(_ context.Context, teamID, playerID int) (*models.JoinRequest, error) {
	for _, jr := range f.requests {
		if jr.TeamID == teamID && jr.PlayerID == playerID && jr.Status == models.JoinRequestPending {
			cp := *jr
			return &cp, nil
		}
	}
	return nil, repositories.ErrJoinRequestNotFound
}

func (f *fakeJoinRequestRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.JoinRequestStatus) error {
	jr, ok := f.requests[id]
	if !ok {
		return repositories.ErrJoinRequestNotFound
	}
	jr.Status = status
	return nil
}

func (f *fakeJoinRequestRepo) ResetToPending(_ context.Context, id int) error {
	jr, ok := f.requests[id]
	if !ok {
		return repositories.ErrJoinRequestNotFound
	}
	jr.Status = models.JoinRequestPending
	jr.RequestedAt = f.tick()
	return nil
}

func (f *fakeJoinRequestRepo) ListPendingByManager(ctx context.Context, managerID int) ([]*models.JoinRequest, error) {
	var out []*models.JoinRequest
	for _, jr := range f.requests {
		if jr.Status != models.JoinRequestPending {
			continue
		}
		team, err := f.teams.GetByID(ctx, jr.TeamID)
		if err != nil || team.ManagerID != managerID {
			continue
		}
		cp := *jr
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeJoinRequestRepo) DeleteByTeamAndPlayer(_ context.Context, _ repositories.SQLExecutor, teamID, playerID int) error {
	for id, jr := range f.requests {
		if jr.TeamID == teamID && jr.PlayerID == playerID {
			delete(f.requests, id)
		}
	}
	return nil
}

type fakeEventRepo struct {
	events map[int]*models.Event
	nextID int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[int]*models.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	event.ID = f.nextID
	f.nextID++
	event.CreatedAt = time.Now()
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) List(_ context.Context, filter repositories.ListEventsFilter) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range f.events {
		if filter.Sport != nil && e.Sport != *filter.Sport {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.OrganizerID != nil && e.OrganizerID != *filter.OrganizerID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) Update(_ context.Context, event *models.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeEventRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.EventStatus) error {
	e, ok := f.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) ListForAutoStatusUpdate(_ context.Context, now time.Time) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range f.events {
		switch e.Status {
		case models.EventUpcoming:
			if !e.StartsAt.After(now) {
				cp := *e
				out = append(out, &cp)
			}
		case models.EventInProgress:
			if e.EndsAt != nil && !e.EndsAt.After(now) {
				cp := *e
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRegistrationRepo struct {
	registrations map[int]*models.Registration
	nextID        int
	teams         *fakeTeamRepo
	now           time.Time
}

func newFakeRegistrationRepo(teams *fakeTeamRepo) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		registrations: make(map[int]*models.Registration),
		nextID:        1,
		teams:         teams,
		now:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRegistrationRepo) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeRegistrationRepo) Create(_ context.Context, reg *models.Registration) error {
	for _, existing := range f.registrations {
		if existing.EventID == reg.EventID && existing.TeamID == reg.TeamID && existing.Status != models.RegistrationCancelled {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = f.nextID
	f.nextID++
	reg.CreatedAt = f.tick()
	cp := *reg
	f.registrations[reg.ID] = &cp
	return nil
}

func (f *fakeRegistrationRepo) FindActive(_ context.Context, eventID, teamID int) (*models.Registration, error) {
	for _, r := range f.registrations {
		if r.EventID == eventID && r.TeamID == teamID && r.Status != models.RegistrationCancelled {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) FindByEventAndTeam(_ context.Context, eventID, teamID int) (*models.Registration, error) {
	var latest *models.Registration
	for _, r := range f.registrations {
		if r.EventID != eventID || r.TeamID != teamID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repositories.ErrRegistrationNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeRegistrationRepo) UpdateStatus(_ context.Context, id int, status models.RegistrationStatus) error {
	r, ok := f.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeRegistrationRepo) ResetToPending(_ context.Context, id int) error {
	r, ok := f.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	r.Status = models.RegistrationPending
	r.CreatedAt = f.tick()
	return nil
}

func (f *fakeRegistrationRepo) CountActiveByEvent(_ context.Context, eventID int) (int, error) {
	count := 0
	for _, r := range f.registrations {
		if r.EventID == eventID && r.Status != models.RegistrationCancelled {
			count++
		}
	}
	return count, nil
}

func (f *fakeRegistrationRepo) ListByEvent(_ context.Context, eventID int) ([]*models.Registration, error) {
	var out []*models.Registration
	for _, r := range f.registrations {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) ListByTeam(_ context.Context, teamID int) ([]*models.Registration, error) {
	var out []*models.Registration
	for _, r := range f.registrations {
		if r.TeamID == teamID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) ListByManager(ctx context.Context, managerID int) ([]*models.Registration, error) {
	var out []*models.Registration
	for _, r := range f.registrations {
		team, err := f.teams.GetByID(ctx, r.TeamID)
		if err != nil || team.ManagerID != managerID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) DeleteByEventAndTeam(_ context.Context, eventID, teamID int) error {
	for id, r := range f.registrations {
		if r.EventID == eventID && r.TeamID == teamID {
			delete(f.registrations, id)
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, ids []int) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	userID int
	event  notify.Event
}

func (p *capturingPublisher) Publish(userID int, event notify.Event) {
	p.events = append(p.events, publishedEvent{userID: userID, event: event})
}
