package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/db/dberror"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
)

// CreateWorkspace inserts a new workspace into the database.
// If the workspace already exists, an ErrAlreadyExists is returned.
func (em *entityManager) CreateWorkspace(ctx context.Context, workspaceID billcommon.WorkspaceId) error {
	query := `
		INSERT INTO workspaces (workspace_id)
		VALUES ($1)
		ON CONFLICT (workspace_id) DO NOTHING
		RETURNING workspace_id;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID))
	var insertedWorkspaceID string
	err := row.Scan(&insertedWorkspaceID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("workspace_id", string(workspaceID)).Msg("workspace already exists")
			return dberror.ErrAlreadyExists.Msg("workspace already exists")
		}
		log.Ctx(ctx).Error().Str("workspace_id", string(workspaceID)).Msg("failed to insert workspace")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// GetWorkspace retrieves a workspace from the database.
func (em *entityManager) GetWorkspace(ctx context.Context, workspaceID billcommon.WorkspaceId) (*models.Workspace, error) {
	query := `
		SELECT workspace_id, created_at, updated_at
		FROM workspaces
		WHERE workspace_id = $1;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID))

	var ws models.Workspace
	err := row.Scan(&ws.WorkspaceID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("workspace_id", string(workspaceID)).Msg("workspace not found")
			return nil, dberror.ErrNotFound.Msg("workspace not found")
		}
		log.Ctx(ctx).Error().Str("workspace_id", string(workspaceID)).Msg("failed to retrieve workspace")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return &ws, nil
}

// DeleteWorkspace deletes a workspace and, through cascading foreign keys,
// all entities, versions, references, and outbox rows under it.
func (em *entityManager) DeleteWorkspace(ctx context.Context, workspaceID billcommon.WorkspaceId) error {
	query := `
		DELETE FROM workspaces
		WHERE workspace_id = $1;
	`
	_, err := em.conn().ExecContext(ctx, query, string(workspaceID))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("workspace_id", string(workspaceID)).Msg("failed to delete workspace")
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}
