package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestProfile(t *testing.T, db *DB, email, role string) *Profile {
	t.Helper()
	profile := &Profile{Email: email, Role: role}
	require.NoError(t, CreateProfile(context.Background(), db.DB(), profile))
	return profile
}

func TestCreateTicketDefaults(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	creator := createTestProfile(t, db, "agent@example.com", "agent")

	ticket := &Ticket{
		Title:       "Printer on fire",
		Description: "The office printer is on fire",
		Status:      "resolved", // must be ignored, tickets always start open
		CreatedBy:   creator.ID,
	}
	require.NoError(t, CreateTicket(ctx, db.DB(), ticket))

	got, err := GetTicketByID(ctx, db.DB(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, TicketStatusOpen, got.Status)
	assert.Equal(t, TicketPriorityMedium, got.Priority)
}

func TestUpdateTicketReportsMissingRows(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	status := TicketStatusResolved
	rows, err := UpdateTicket(ctx, db.DB(), "no-such-id", TicketPatch{Status: &status})
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestSearchTicketsByTitle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	creator := createTestProfile(t, db, "agent@example.com", "agent")

	for _, title := range []string{"Login broken", "Login slow", "Billing question"} {
		require.NoError(t, CreateTicket(ctx, db.DB(), &Ticket{
			Title:       title,
			Description: "details",
			CreatedBy:   creator.ID,
		}))
	}

	results, err := SearchTicketsByTitle(ctx, db.DB(), "Login", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = SearchTicketsByTitle(ctx, db.DB(), "Login", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = SearchTicketsByTitle(ctx, db.DB(), "nonexistent", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTeamMembership(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	agent := createTestProfile(t, db, "agent@example.com", "agent")

	team := &Team{Name: "Support"}
	require.NoError(t, CreateTeam(ctx, db.DB(), team))

	member, err := GetTeamMember(ctx, db.DB(), team.ID, agent.ID)
	require.NoError(t, err)
	assert.Nil(t, member)

	require.NoError(t, AddTeamMember(ctx, db.DB(), team.ID, agent.ID))

	member, err = GetTeamMember(ctx, db.DB(), team.ID, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, agent.ID, member.UserID)

	teamIDs, err := ListTeamIDsForUser(ctx, db.DB(), agent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{team.ID}, teamIDs)

	rows, err := RemoveTeamMember(ctx, db.DB(), team.ID, agent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = RemoveTeamMember(ctx, db.DB(), team.ID, agent.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestGetProfileByIDMissing(t *testing.T) {
	db := openTestDB(t)

	profile, err := GetProfileByID(context.Background(), db.DB(), "missing")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestTicketHistoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	agent := createTestProfile(t, db, "agent@example.com", "agent")

	ticket := &Ticket{Title: "T", Description: "D", CreatedBy: agent.ID}
	require.NoError(t, CreateTicket(ctx, db.DB(), ticket))

	entry := &TicketHistory{
		TicketID:   ticket.ID,
		UserID:     agent.ID,
		Type:       HistoryTypeComment,
		Content:    "looking into it",
		IsInternal: true,
	}
	require.NoError(t, CreateTicketHistory(ctx, db.DB(), entry))

	history, err := GetTicketHistory(ctx, db.DB(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, HistoryTypeComment, history[0].Type)
	assert.Equal(t, "looking into it", history[0].Content)
	assert.True(t, history[0].IsInternal)
}
