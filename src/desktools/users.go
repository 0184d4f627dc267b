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
	CreateUserName = "createUser"
	UpdateUserName = "updateUser"
)

// CreateUserInput represents the input for creating a user
type CreateUserInput struct {
	Email    string `json:"email" required:"true" description:"Email address for the new user"`
	FullName string `json:"full_name,omitempty" description:"Full name of the user"`
	Role     string `json:"role" required:"true" enum:"agent,admin,customer" description:"Role for the new user"`
}

// UpdateUserInput represents the input for updating a user
type UpdateUserInput struct {
	UserID   string `json:"userId" required:"true" description:"ID of the user to update"`
	Email    string `json:"email,omitempty" description:"New email address"`
	FullName string `json:"full_name,omitempty" description:"New full name"`
	Role     string `json:"role,omitempty" enum:"agent,admin,customer" description:"New role"`
}

func makeCreateUserHandler(db *sql.DB, logger *slog.Logger) func(context.Context, CreateUserInput) (UserResult, error) {
	return func(ctx context.Context, input CreateUserInput) (UserResult, error) {
		profile := &store.Profile{
			Email: input.Email,
			Role:  input.Role,
		}
		if input.FullName != "" {
			profile.FullName = &input.FullName
		}

		if err := store.CreateProfile(ctx, db, profile); err != nil {
			logger.Error("failed to create user", "email", input.Email, "error", err)
			return failUser("Failed to create user profile", err), nil
		}

		return UserResult{
			Success: true,
			Message: "User created successfully",
			UserID:  profile.ID,
		}, nil
	}
}

func makeUpdateUserHandler(db *sql.DB, logger *slog.Logger) func(context.Context, UpdateUserInput) (UserResult, error) {
	return func(ctx context.Context, input UpdateUserInput) (UserResult, error) {
		patch := store.ProfilePatch{}
		if input.Email != "" {
			patch.Email = &input.Email
		}
		if input.FullName != "" {
			patch.FullName = &input.FullName
		}
		if input.Role != "" {
			patch.Role = &input.Role
		}

		rows, err := store.UpdateProfile(ctx, db, input.UserID, patch)
		if err != nil {
			logger.Error("failed to update user", "user_id", input.UserID, "error", err)
			return failUser("Failed to update user", err), nil
		}
		if rows == 0 {
			return failUser("User not found", nil), nil
		}

		return UserResult{
			Success: true,
			Message: "User updated successfully",
			UserID:  input.UserID,
		}, nil
	}
}

// CreateUserTool returns the createUser tool (admin only).
func CreateUserTool(db *sql.DB, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(CreateUserName, "Create a new user (admin only)",
		authz.AdminOnly(), makeCreateUserHandler(db, logger))
}

// UpdateUserTool returns the updateUser tool (admin only).
func UpdateUserTool(db *sql.DB, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(UpdateUserName, "Update an existing user (admin only)",
		authz.AdminOnly(), makeUpdateUserHandler(db, logger))
}
