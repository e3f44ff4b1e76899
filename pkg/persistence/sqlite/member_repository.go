package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

// MembershipRepository handles workspace membership rows.
type MembershipRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *MembershipRepository) AddMember(ctx context.Context, member *models.WorkspaceMember) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO workspace_members (workspace_id, user_id, role) VALUES (?, ?, ?) ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = excluded.role",
		member.WorkspaceID, member.UserID, member.Role)
	if err != nil {
		return fmt.Errorf("failed to insert workspace member: %w", err)
	}

	return nil
}

func (r *MembershipRepository) GetMember(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember

	err := r.db.QueryRowContext(ctx,
		"SELECT workspace_id, user_id, role FROM workspace_members WHERE workspace_id = ? AND user_id = ?",
		workspaceID, userID).Scan(&member.WorkspaceID, &member.UserID, &member.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrMemberNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query member %s of workspace %s: %w", userID, workspaceID, err)
	}

	return &member, nil
}

// ProfileRepository handles user profiles.
type ProfileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO profiles (id, full_name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET full_name = excluded.full_name",
		profile.ID, profile.FullName)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile

	err := r.db.QueryRowContext(ctx,
		"SELECT id, full_name FROM profiles WHERE id = ?",
		id).Scan(&profile.ID, &profile.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrProfileNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query profile %s: %w", id, err)
	}

	return &profile, nil
}
