package postgresql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/db/dberror"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
	"github.com/offerd/offerd/internal/common/apperrors"
	"github.com/offerd/offerd/internal/common/uuid"
)

// UpsertReference records the external ID for an entity or version. A row
// that already exists is left untouched so a retried sync observes the ID
// minted by the first attempt rather than overwriting it.
func (rm *referenceManager) UpsertReference(ctx context.Context, ref *models.ProviderReference) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		INSERT INTO provider_references (workspace_id, entity_type, entity_id, provider, external_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, entity_type, entity_id, provider) DO NOTHING;
	`

	_, err := rm.conn().ExecContext(ctx, query, string(workspaceID), ref.EntityType, ref.EntityID, string(ref.Provider), ref.ExternalID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23503" && pgErr.ConstraintName == "provider_references_workspace_id_fkey" {
				log.Ctx(ctx).Error().Str("workspace_id", string(workspaceID)).Msg("workspace not found")
				return dberror.ErrInvalidInput.Msg("workspace not found")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", ref.EntityID.String()).Str("entity_type", ref.EntityType).Msg("failed to upsert provider reference")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// GetReference retrieves the external ID recorded for an entity or version.
func (rm *referenceManager) GetReference(ctx context.Context, entityType string, entityID uuid.UUID, provider billcommon.ProviderKind) (*models.ProviderReference, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT entity_type, entity_id, provider, external_id, created_at
		FROM provider_references
		WHERE workspace_id = $1 AND entity_type = $2 AND entity_id = $3 AND provider = $4;
	`

	row := rm.conn().QueryRowContext(ctx, query, string(workspaceID), entityType, entityID, string(provider))
	ref := &models.ProviderReference{}
	err := row.Scan(&ref.EntityType, &ref.EntityID, &ref.Provider, &ref.ExternalID, &ref.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("entity_id", entityID.String()).Str("entity_type", entityType).Msg("provider reference not found")
			return nil, dberror.ErrNotFound.Msg("provider reference not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to retrieve provider reference")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return ref, nil
}

// DeleteReference removes a reference row. If the row does not exist, it
// does nothing.
func (rm *referenceManager) DeleteReference(ctx context.Context, entityType string, entityID uuid.UUID, provider billcommon.ProviderKind) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		DELETE FROM provider_references
		WHERE workspace_id = $1 AND entity_type = $2 AND entity_id = $3 AND provider = $4;
	`
	_, err := rm.conn().ExecContext(ctx, query, string(workspaceID), entityType, entityID, string(provider))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to delete provider reference")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// ListReferencesByEntity retrieves all reference rows recorded against the
// given local ID, across reference types and providers.
func (rm *referenceManager) ListReferencesByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.ProviderReference, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT entity_type, entity_id, provider, external_id, created_at
		FROM provider_references
		WHERE workspace_id = $1 AND entity_id = $2
		ORDER BY entity_type, provider;
	`

	rows, err := rm.conn().QueryContext(ctx, query, string(workspaceID), entityID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to query provider references")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var refs []*models.ProviderReference
	for rows.Next() {
		ref := &models.ProviderReference{}
		err := rows.Scan(&ref.EntityType, &ref.EntityID, &ref.Provider, &ref.ExternalID, &ref.CreatedAt)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan provider reference row")
			return nil, dberror.ErrDatabase.Err(err)
		}
		refs = append(refs, ref)
	}

	if err = rows.Err(); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error iterating over provider reference rows")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return refs, nil
}
