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

// StructureRepository handles spaces, folders and lists.
type StructureRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *StructureRepository) CreateSpace(ctx context.Context, space *models.Space) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO spaces (id, workspace_id, name, description, color, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		space.ID, space.WorkspaceID, space.Name, space.Description, space.Color,
		formatTime(space.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert space: %w", err)
	}

	return nil
}

func (r *StructureRepository) GetSpace(ctx context.Context, id string) (*models.Space, error) {
	var (
		space     models.Space
		createdAt string
	)

	err := r.db.QueryRowContext(ctx,
		"SELECT id, workspace_id, name, description, color, created_at FROM spaces WHERE id = ?",
		id).Scan(&space.ID, &space.WorkspaceID, &space.Name, &space.Description,
		&space.Color, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrSpaceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query space %s: %w", id, err)
	}

	space.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &space, nil
}

func (r *StructureRepository) CreateFolder(ctx context.Context, folder *models.Folder) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO folders (id, space_id, name, description) VALUES (?, ?, ?, ?)",
		folder.ID, folder.SpaceID, folder.Name, folder.Description)
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}

	return nil
}

func (r *StructureRepository) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	var folder models.Folder

	err := r.db.QueryRowContext(ctx,
		"SELECT id, space_id, name, description FROM folders WHERE id = ?",
		id).Scan(&folder.ID, &folder.SpaceID, &folder.Name, &folder.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrFolderNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query folder %s: %w", id, err)
	}

	return &folder, nil
}

func (r *StructureRepository) ListFoldersBySpace(ctx context.Context, spaceID string) ([]*models.Folder, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, space_id, name, description FROM folders WHERE space_id = ?", spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query folders of space %s: %w", spaceID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	folders := make([]*models.Folder, 0)

	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(&folder.ID, &folder.SpaceID, &folder.Name, &folder.Description); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}

		folders = append(folders, &folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}

	return folders, nil
}

const listColumns = `
	id
  , workspace_id
  , space_id
  , folder_id
  , name
  , description
  , default_view
  , status_template_id
  , status_source
`

func (r *StructureRepository) CreateList(ctx context.Context, list *models.List) error {
	query := `
		INSERT INTO lists (
			id, workspace_id, space_id, folder_id, name, description,
			default_view, status_template_id, status_source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		list.ID, list.WorkspaceID, list.SpaceID, nullString(list.FolderID),
		list.Name, list.Description, list.DefaultView,
		nullString(list.StatusTemplateID), list.StatusSource)
	if err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}

	return nil
}

func (r *StructureRepository) GetList(ctx context.Context, id string) (*models.List, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+listColumns+" FROM lists WHERE id = ?", id)

	list, err := r.scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrListNotFound
	}

	return list, err
}

// ListListsBySpace returns lists directly in the space and lists inside its
// folders.
func (r *StructureRepository) ListListsBySpace(ctx context.Context, spaceID string) ([]*models.List, error) {
	query := `
		SELECT ` + listColumns + `
		FROM lists
		WHERE space_id = ?
		   OR folder_id IN (SELECT id FROM folders WHERE space_id = ?)
	`

	rows, err := r.db.QueryContext(ctx, query, spaceID, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists of space %s: %w", spaceID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	lists := make([]*models.List, 0)

	for rows.Next() {
		list, err := r.scanList(rows)
		if err != nil {
			return nil, err
		}

		lists = append(lists, list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}

	return lists, nil
}

func (r *StructureRepository) scanList(row rowScanner) (*models.List, error) {
	var (
		list             models.List
		folderID         sql.NullString
		statusTemplateID sql.NullString
	)

	err := row.Scan(
		&list.ID, &list.WorkspaceID, &list.SpaceID, &folderID, &list.Name,
		&list.Description, &list.DefaultView, &statusTemplateID, &list.StatusSource,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan list: %w", err)
	}

	list.FolderID = fromNullString(folderID)
	list.StatusTemplateID = fromNullString(statusTemplateID)

	return &list, nil
}
