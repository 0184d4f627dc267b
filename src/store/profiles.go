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

// GetProfileByID retrieves a profile by its ID, or nil if it does not exist
func GetProfileByID(ctx context.Context, db sqlscan.Querier, userID string) (*Profile, error) {
	query := `SELECT id, email, full_name, role, created_at, updated_at FROM profiles WHERE id = ?`
	var p Profile
	err := sqlscan.Get(ctx, db, &p, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreateProfile creates a new profile in the database
func CreateProfile(ctx context.Context, db Execer, profile *Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.Role == "" {
		profile.Role = "customer"
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now()
	}

	query := `INSERT INTO profiles (id, email, full_name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, profile.ID, profile.Email, profile.FullName, profile.Role, profile.CreatedAt, profile.UpdatedAt)
	return err
}

// UpdateProfile applies a partial update and reports the number of rows changed
func UpdateProfile(ctx context.Context, db Execer, userID string, patch ProfilePatch) (int64, error) {
	sets := []string{}
	args := []interface{}{}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *patch.FullName)
	}
	if patch.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *patch.Role)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), userID)

	query := `UPDATE profiles SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
