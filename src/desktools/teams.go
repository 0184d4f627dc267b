package desktools

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/stackdesk/deskagent/src/agent"
	"github.com/stackdesk/deskagent/src/authz"
	"github.com/stackdesk/deskagent/src/store"
)

const (
	CreateTeamName       = "createTeam"
	UpdateTeamName       = "updateTeam"
	AddTeamMemberName    = "addTeamMember"
	RemoveTeamMemberName = "removeTeamMember"
)

// CreateTeamInput represents the input for creating a team
type CreateTeamInput struct {
	Name        string `json:"name" required:"true" description:"Name of the new team"`
	Description string `json:"description,omitempty" description:"Description of the team"`
}

// UpdateTeamInput represents the input for updating a team
type UpdateTeamInput struct {
	TeamID      string `json:"teamId" required:"true" description:"ID of the team to update"`
	Name        string `json:"name,omitempty" description:"New name for the team"`
	Description string `json:"description,omitempty" description:"New description for the team"`
}

// TeamMembershipInput represents the input for adding or removing a member
type TeamMembershipInput struct {
	TeamID string `json:"teamId" required:"true" description:"ID of the team"`
	UserID string `json:"userId" required:"true" description:"ID of the agent to add or remove from the team"`
}

func makeCreateTeamHandler(db *sql.DB, logger *slog.Logger) func(context.Context, CreateTeamInput) (TeamResult, error) {
	return func(ctx context.Context, input CreateTeamInput) (TeamResult, error) {
		team := &store.Team{Name: input.Name}
		if input.Description != "" {
			team.Description = &input.Description
		}

		if err := store.CreateTeam(ctx, db, team); err != nil {
			logger.Error("failed to create team", "name", input.Name, "error", err)
			return failTeam("Failed to create team", err), nil
		}

		return TeamResult{
			Success: true,
			Message: "Team created successfully",
			TeamID:  team.ID,
		}, nil
	}
}

func makeUpdateTeamHandler(db *sql.DB, logger *slog.Logger) func(context.Context, UpdateTeamInput) (TeamResult, error) {
	return func(ctx context.Context, input UpdateTeamInput) (TeamResult, error) {
		patch := store.TeamPatch{}
		if input.Name != "" {
			patch.Name = &input.Name
		}
		if input.Description != "" {
			patch.Description = &input.Description
		}

		rows, err := store.UpdateTeam(ctx, db, input.TeamID, patch)
		if err != nil {
			logger.Error("failed to update team", "team_id", input.TeamID, "error", err)
			return failTeam("Failed to update team", err), nil
		}
		if rows == 0 {
			return failTeam("Team not found", nil), nil
		}

		return TeamResult{
			Success: true,
			Message: "Team updated successfully",
			TeamID:  input.TeamID,
		}, nil
	}
}

func makeAddTeamMemberHandler(db *sql.DB, logger *slog.Logger) func(context.Context, TeamMembershipInput) (BaseResult, error) {
	return func(ctx context.Context, input TeamMembershipInput) (BaseResult, error) {
		existing, err := store.GetTeamMember(ctx, db, input.TeamID, input.UserID)
		if err != nil {
			logger.Error("failed to check membership", "team_id", input.TeamID, "user_id", input.UserID, "error", err)
			return failBase("Failed to add team member", err), nil
		}
		if existing != nil {
			return failBase("User is already a member of this team", nil), nil
		}

		if err := store.AddTeamMember(ctx, db, input.TeamID, input.UserID); err != nil {
			logger.Error("failed to add team member", "team_id", input.TeamID, "user_id", input.UserID, "error", err)
			return failBase("Failed to add team member", err), nil
		}

		return BaseResult{
			Success: true,
			Message: "Team member added successfully",
		}, nil
	}
}

func makeRemoveTeamMemberHandler(db *sql.DB, logger *slog.Logger) func(context.Context, TeamMembershipInput) (BaseResult, error) {
	return func(ctx context.Context, input TeamMembershipInput) (BaseResult, error) {
		if _, err := store.RemoveTeamMember(ctx, db, input.TeamID, input.UserID); err != nil {
			logger.Error("failed to remove team member", "team_id", input.TeamID, "user_id", input.UserID, "error", err)
			return failBase("Failed to remove team member", err), nil
		}

		return BaseResult{
			Success: true,
			Message: "Team member removed successfully",
		}, nil
	}
}

// CreateTeamTool returns the createTeam tool (admin only).
func CreateTeamTool(db *sql.DB, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(CreateTeamName, "Create a new team (admin only)",
		authz.AdminOnly(), makeCreateTeamHandler(db, logger))
}

// UpdateTeamTool returns the updateTeam tool (admin only).
func UpdateTeamTool(db *sql.DB, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(UpdateTeamName, "Update an existing team (admin only)",
		authz.AdminOnly(), makeUpdateTeamHandler(db, logger))
}

// AddTeamMemberTool returns the addTeamMember tool. The gate additionally
// verifies the target user holds the agent role.
func AddTeamMemberTool(db *sql.DB, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(AddTeamMemberName, "Add an agent to a team (admin only)",
		authz.AdminAddingAgent(), makeAddTeamMemberHandler(db, logger))
}

// RemoveTeamMemberTool returns the removeTeamMember tool (admin only).
func RemoveTeamMemberTool(db *sql.DB, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(RemoveTeamMemberName, "Remove an agent from a team (admin only)",
		authz.AdminOnly(), makeRemoveTeamMemberHandler(db, logger))
}
