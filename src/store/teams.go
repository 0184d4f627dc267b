package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// GetTeamByID retrieves a team by its ID, or nil if it does not exist
func GetTeamByID(ctx context.Context, db sqlscan.Querier, teamID string) (*Team, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM teams WHERE id = ?`
	var t Team
	err := sqlscan.Get(ctx, db, &t, query, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListTeams returns all teams ordered by name
func ListTeams(ctx context.Context, db sqlscan.Querier) ([]Team, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM teams ORDER BY name`
	var teams []Team
	err := sqlscan.Select(ctx, db, &teams, query)
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// CreateTeam creates a new team in the database
func CreateTeam(ctx context.Context, db Execer, team *Team) error {
	if team.ID == "" {
		team.ID = uuid.New().String()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now()
	}
	if team.UpdatedAt.IsZero() {
		team.UpdatedAt = time.Now()
	}

	query := `INSERT INTO teams (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, team.ID, team.Name, team.Description, team.CreatedAt, team.UpdatedAt)
	return err
}

// UpdateTeam applies a partial update and reports the number of rows changed
func UpdateTeam(ctx context.Context, db Execer, teamID string, patch TeamPatch) (int64, error) {
	sets := []string{}
	args := []interface{}{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), teamID)

	query := `UPDATE teams SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetTeamMember retrieves a membership row, or nil if it does not exist
func GetTeamMember(ctx context.Context, db sqlscan.Querier, teamID, userID string) (*TeamMember, error) {
	query := `SELECT team_id, user_id, created_at FROM team_members WHERE team_id = ? AND user_id = ?`
	var m TeamMember
	err := sqlscan.Get(ctx, db, &m, query, teamID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// AddTeamMember inserts a membership row
func AddTeamMember(ctx context.Context, db Execer, teamID, userID string) error {
	query := `INSERT INTO team_members (team_id, user_id, created_at) VALUES (?, ?, ?)`
	_, err := db.ExecContext(ctx, query, teamID, userID, time.Now())
	return err
}

// RemoveTeamMember deletes a membership row and reports the number of rows changed
func RemoveTeamMember(ctx context.Context, db Execer, teamID, userID string) (int64, error) {
	query := `DELETE FROM team_members WHERE team_id = ? AND user_id = ?`
	res, err := db.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTeamIDsForUser returns the IDs of the teams the user belongs to
func ListTeamIDsForUser(ctx context.Context, db sqlscan.Querier, userID string) ([]string, error) {
	query := `SELECT team_id FROM team_members WHERE user_id = ? ORDER BY team_id`
	var teamIDs []string
	err := sqlscan.Select(ctx, db, &teamIDs, query, userID)
	if err != nil {
		return nil, err
	}
	return teamIDs, nil
}
