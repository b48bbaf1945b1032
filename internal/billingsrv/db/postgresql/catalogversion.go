package postgresql

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/db/dberror"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
	"github.com/offerd/offerd/internal/common/apperrors"
	"github.com/offerd/offerd/internal/common/uuid"
)

// CreateVersion creates a new draft version for an entity. The version
// number is assigned inside the insert as max(existing)+1 so that concurrent
// creations cannot read a stale maximum. The partial unique index on draft
// status rejects a second draft for the same entity.
func (em *entityManager) CreateVersion(ctx context.Context, version *models.CatalogVersion) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	versionID := version.VersionID
	if versionID == uuid.Nil {
		versionID = uuid.New()
	}

	query := `
		INSERT INTO catalog_versions (version_id, entity_id, workspace_id, version_num, status, config, effective_from)
		SELECT $1, $2, $3, COALESCE(MAX(version_num), 0) + 1, $4, $5, $6
		FROM catalog_versions
		WHERE workspace_id = $3 AND entity_id = $2
		RETURNING version_id, version_num, created_at, updated_at;
	`

	row := em.conn().QueryRowContext(ctx, query, versionID, version.EntityID, string(workspaceID), string(billcommon.VersionStatusDraft), version.Config, version.EffectiveFrom)
	err := row.Scan(&version.VersionID, &version.VersionNum, &version.CreatedAt, &version.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23505" && pgErr.ConstraintName == "catalog_versions_one_draft_key" {
				log.Ctx(ctx).Info().Str("entity_id", version.EntityID.String()).Msg("draft version already exists")
				return dberror.ErrAlreadyExists.Msg("draft version already exists")
			}
			if pgErr.Code == "23505" && pgErr.ConstraintName == "catalog_versions_workspace_id_entity_id_version_num_key" {
				log.Ctx(ctx).Info().Str("entity_id", version.EntityID.String()).Msg("concurrent version creation")
				return dberror.ErrAlreadyExists.Msg("concurrent version creation")
			}
			if pgErr.Code == "23503" && pgErr.ConstraintName == "catalog_versions_entity_id_workspace_id_fkey" {
				log.Ctx(ctx).Info().Str("entity_id", version.EntityID.String()).Msg("catalog entity not found")
				return dberror.ErrInvalidEntity.Msg("catalog entity not found")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", version.EntityID.String()).Msg("failed to insert catalog version")
		return dberror.ErrDatabase.Err(err)
	}

	version.Status = billcommon.VersionStatusDraft
	return nil
}

// GetVersion retrieves a catalog version by its ID.
func (em *entityManager) GetVersion(ctx context.Context, versionID uuid.UUID) (*models.CatalogVersion, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT version_id, entity_id, version_num, status, config, effective_from, published_at, created_at, updated_at
		FROM catalog_versions
		WHERE workspace_id = $1 AND version_id = $2;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), versionID)
	version := &models.CatalogVersion{}
	err := row.Scan(&version.VersionID, &version.EntityID, &version.VersionNum, &version.Status, &version.Config, &version.EffectiveFrom, &version.PublishedAt, &version.CreatedAt, &version.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("version_id", versionID.String()).Msg("catalog version not found")
			return nil, dberror.ErrNotFound.Msg("catalog version not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("version_id", versionID.String()).Msg("failed to retrieve catalog version")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return version, nil
}

// GetDraftVersion retrieves the single draft version of an entity, if any.
func (em *entityManager) GetDraftVersion(ctx context.Context, entityID uuid.UUID) (*models.CatalogVersion, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT version_id, entity_id, version_num, status, config, effective_from, published_at, created_at, updated_at
		FROM catalog_versions
		WHERE workspace_id = $1 AND entity_id = $2 AND status = 'draft';
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), entityID)
	version := &models.CatalogVersion{}
	err := row.Scan(&version.VersionID, &version.EntityID, &version.VersionNum, &version.Status, &version.Config, &version.EffectiveFrom, &version.PublishedAt, &version.CreatedAt, &version.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("entity_id", entityID.String()).Msg("draft version not found")
			return nil, dberror.ErrNotFound.Msg("draft version not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to retrieve draft version")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return version, nil
}

// UpdateDraftConfig replaces the config payload and effective date of a
// version. Only drafts are updatable; published and archived versions are
// immutable, so the draft status is part of the predicate.
func (em *entityManager) UpdateDraftConfig(ctx context.Context, versionID uuid.UUID, config []byte, effectiveFrom *time.Time) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		UPDATE catalog_versions
		SET config = $3, effective_from = $4
		WHERE workspace_id = $1 AND version_id = $2 AND status = 'draft'
		RETURNING version_id;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), versionID, config, effectiveFrom)
	var returnedVersionID uuid.UUID
	err := row.Scan(&returnedVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("version_id", versionID.String()).Msg("draft version not found or not editable")
			return dberror.ErrNotFound.Msg("draft version not found or not editable")
		}
		log.Ctx(ctx).Error().Err(err).Str("version_id", versionID.String()).Msg("failed to update draft config")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// MarkPublished transitions a draft version to published, stamping the
// publish time and the effective date. Only a draft can be published.
func (em *entityManager) MarkPublished(ctx context.Context, versionID uuid.UUID, publishedAt time.Time, effectiveFrom *time.Time) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		UPDATE catalog_versions
		SET status = 'published', published_at = $3, effective_from = $4
		WHERE workspace_id = $1 AND version_id = $2 AND status = 'draft'
		RETURNING version_id;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), versionID, publishedAt, effectiveFrom)
	var returnedVersionID uuid.UUID
	err := row.Scan(&returnedVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("version_id", versionID.String()).Msg("version is not a draft or not found")
			return dberror.ErrNotFound.Msg("version is not a draft or not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("version_id", versionID.String()).Msg("failed to mark version published")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// MarkArchived transitions a published version to archived. The publish and
// effective timestamps are retained so the version can be restored if a
// failed sync needs to be compensated.
func (em *entityManager) MarkArchived(ctx context.Context, versionID uuid.UUID) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		UPDATE catalog_versions
		SET status = 'archived'
		WHERE workspace_id = $1 AND version_id = $2 AND status = 'published'
		RETURNING version_id;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), versionID)
	var returnedVersionID uuid.UUID
	err := row.Scan(&returnedVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("version_id", versionID.String()).Msg("version is not published or not found")
			return dberror.ErrNotFound.Msg("version is not published or not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("version_id", versionID.String()).Msg("failed to mark version archived")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// RevertToDraft transitions a published version back to draft, clearing the
// publish timestamp. The effective date is retained so that a failed publish
// of a scheduled version hands the draft back with its date intact; the next
// publish re-stamps it anyway. Used by the sync compensation path.
func (em *entityManager) RevertToDraft(ctx context.Context, versionID uuid.UUID) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		UPDATE catalog_versions
		SET status = 'draft', published_at = NULL
		WHERE workspace_id = $1 AND version_id = $2 AND status = 'published'
		RETURNING version_id;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), versionID)
	var returnedVersionID uuid.UUID
	err := row.Scan(&returnedVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("version_id", versionID.String()).Msg("version is not published or not found")
			return dberror.ErrNotFound.Msg("version is not published or not found")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23505" && pgErr.ConstraintName == "catalog_versions_one_draft_key" {
				log.Ctx(ctx).Error().Str("version_id", versionID.String()).Msg("entity already has a draft")
				return dberror.ErrAlreadyExists.Msg("entity already has a draft")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("version_id", versionID.String()).Msg("failed to revert version to draft")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// RestorePublished transitions an archived version back to published. Its
// retained timestamps make this a pure status flip. Used by the sync
// compensation path to reinstate the version a failed publish displaced.
func (em *entityManager) RestorePublished(ctx context.Context, versionID uuid.UUID) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		UPDATE catalog_versions
		SET status = 'published'
		WHERE workspace_id = $1 AND version_id = $2 AND status = 'archived'
		RETURNING version_id;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), versionID)
	var returnedVersionID uuid.UUID
	err := row.Scan(&returnedVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("version_id", versionID.String()).Msg("version is not archived or not found")
			return dberror.ErrNotFound.Msg("version is not archived or not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("version_id", versionID.String()).Msg("failed to restore version")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// ListVersions retrieves all versions of an entity ordered by version number
// descending, newest first.
func (em *entityManager) ListVersions(ctx context.Context, entityID uuid.UUID) ([]*models.CatalogVersion, apperrors.Error) {
	return em.listVersions(ctx, entityID, false)
}

// ListPublishedVersions retrieves the published versions of an entity
// ordered by version number descending. The effective-version resolver
// operates on this set.
func (em *entityManager) ListPublishedVersions(ctx context.Context, entityID uuid.UUID) ([]*models.CatalogVersion, apperrors.Error) {
	return em.listVersions(ctx, entityID, true)
}

func (em *entityManager) listVersions(ctx context.Context, entityID uuid.UUID, publishedOnly bool) ([]*models.CatalogVersion, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT version_id, entity_id, version_num, status, config, effective_from, published_at, created_at, updated_at
		FROM catalog_versions
		WHERE workspace_id = $1 AND entity_id = $2
	`
	if publishedOnly {
		query += ` AND status = 'published'`
	}
	query += `
		ORDER BY version_num DESC;
	`

	rows, err := em.conn().QueryContext(ctx, query, string(workspaceID), entityID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to query catalog versions")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var versions []*models.CatalogVersion
	for rows.Next() {
		version := &models.CatalogVersion{}
		err := rows.Scan(&version.VersionID, &version.EntityID, &version.VersionNum, &version.Status, &version.Config, &version.EffectiveFrom, &version.PublishedAt, &version.CreatedAt, &version.UpdatedAt)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan version row")
			return nil, dberror.ErrDatabase.Err(err)
		}
		versions = append(versions, version)
	}

	if err = rows.Err(); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error iterating over version rows")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return versions, nil
}
