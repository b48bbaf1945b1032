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

// CreateEntity creates a new catalog entity in the database.
// It generates a new UUID for the entity ID if one is not set.
// Returns an error if an entity with the same type and name already exists,
// the name format is invalid, or there is a database error.
func (em *entityManager) CreateEntity(ctx context.Context, entity *models.CatalogEntity) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	entityID := entity.EntityID
	if entityID == uuid.Nil {
		entityID = uuid.New()
	}

	query := `
		INSERT INTO catalog_entities (entity_id, workspace_id, entity_type, name, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (workspace_id, entity_type, name) DO NOTHING
		RETURNING entity_id, created_at, updated_at;
	`

	row := em.conn().QueryRowContext(ctx, query, entityID, string(workspaceID), string(entity.EntityType), entity.Name, entity.Description, string(billcommon.EntityStatusDraft))
	err := row.Scan(&entity.EntityID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("name", entity.Name).Str("entity_type", string(entity.EntityType)).Msg("catalog entity already exists")
			return dberror.ErrAlreadyExists.Msg("catalog entity already exists")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23514" && pgErr.ConstraintName == "catalog_entities_name_check" {
				log.Ctx(ctx).Error().Str("name", entity.Name).Msg("invalid entity name format")
				return dberror.ErrInvalidInput.Msg("invalid entity name format")
			}
			if pgErr.Code == "23514" && pgErr.ConstraintName == "catalog_entities_entity_type_check" {
				log.Ctx(ctx).Error().Str("entity_type", string(entity.EntityType)).Msg("invalid entity type")
				return dberror.ErrInvalidInput.Msg("invalid entity type")
			}
			if pgErr.Code == "23503" && pgErr.ConstraintName == "catalog_entities_workspace_id_fkey" {
				log.Ctx(ctx).Error().Str("workspace_id", string(workspaceID)).Msg("workspace not found")
				return dberror.ErrInvalidInput.Msg("workspace not found")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("name", entity.Name).Msg("failed to insert catalog entity")
		return dberror.ErrDatabase.Err(err)
	}

	entity.Status = billcommon.EntityStatusDraft
	return nil
}

// GetEntity retrieves a catalog entity by its ID.
func (em *entityManager) GetEntity(ctx context.Context, entityID uuid.UUID) (*models.CatalogEntity, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT entity_id, entity_type, name, description, status, current_version_id, created_at, updated_at
		FROM catalog_entities
		WHERE workspace_id = $1 AND entity_id = $2;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), entityID)
	entity := &models.CatalogEntity{}
	var description sql.NullString
	err := row.Scan(&entity.EntityID, &entity.EntityType, &entity.Name, &description, &entity.Status, &entity.CurrentVersionID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("entity_id", entityID.String()).Msg("catalog entity not found")
			return nil, dberror.ErrNotFound.Msg("catalog entity not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to retrieve catalog entity")
		return nil, dberror.ErrDatabase.Err(err)
	}
	entity.Description = description.String

	return entity, nil
}

// GetEntityByName retrieves a catalog entity by its type and name.
func (em *entityManager) GetEntityByName(ctx context.Context, entityType billcommon.EntityType, name string) (*models.CatalogEntity, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT entity_id, entity_type, name, description, status, current_version_id, created_at, updated_at
		FROM catalog_entities
		WHERE workspace_id = $1 AND entity_type = $2 AND name = $3;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), string(entityType), name)
	entity := &models.CatalogEntity{}
	var description sql.NullString
	err := row.Scan(&entity.EntityID, &entity.EntityType, &entity.Name, &description, &entity.Status, &entity.CurrentVersionID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("name", name).Msg("catalog entity not found")
			return nil, dberror.ErrNotFound.Msg("catalog entity not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("name", name).Msg("failed to retrieve catalog entity")
		return nil, dberror.ErrDatabase.Err(err)
	}
	entity.Description = description.String

	return entity, nil
}

// UpdateEntity updates the name and description of an existing entity.
// The EntityID and EntityType fields cannot be updated.
// Returns an error if the entity is not found, the new name already exists
// for the entity type, or the name format is invalid.
func (em *entityManager) UpdateEntity(ctx context.Context, entity *models.CatalogEntity) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		UPDATE catalog_entities
		SET name = $3, description = $4
		WHERE workspace_id = $1 AND entity_id = $2
		RETURNING entity_id;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), entity.EntityID, entity.Name, entity.Description)
	var returnedEntityID uuid.UUID
	err := row.Scan(&returnedEntityID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("entity_id", entity.EntityID.String()).Msg("catalog entity not found")
			return dberror.ErrNotFound.Msg("catalog entity not found")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23505" && pgErr.ConstraintName == "catalog_entities_workspace_id_entity_type_name_key" {
				log.Ctx(ctx).Error().Str("name", entity.Name).Msg("entity name already exists for the given type")
				return dberror.ErrAlreadyExists.Msg("entity name already exists for the given type")
			}
			if pgErr.Code == "23514" && pgErr.ConstraintName == "catalog_entities_name_check" {
				log.Ctx(ctx).Error().Str("name", entity.Name).Msg("invalid entity name format")
				return dberror.ErrInvalidInput.Msg("invalid entity name format")
			}
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to update catalog entity")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// SetEntityState updates the lifecycle status and current version pointer of
// an entity in a single statement. A nil currentVersionID clears the pointer.
func (em *entityManager) SetEntityState(ctx context.Context, entityID uuid.UUID, status billcommon.EntityStatus, currentVersionID *uuid.UUID) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		UPDATE catalog_entities
		SET status = $3, current_version_id = $4
		WHERE workspace_id = $1 AND entity_id = $2
		RETURNING entity_id;
	`

	row := em.conn().QueryRowContext(ctx, query, string(workspaceID), entityID, string(status), currentVersionID)
	var returnedEntityID uuid.UUID
	err := row.Scan(&returnedEntityID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("entity_id", entityID.String()).Msg("catalog entity not found")
			return dberror.ErrNotFound.Msg("catalog entity not found")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23514" && pgErr.ConstraintName == "catalog_entities_status_check" {
				log.Ctx(ctx).Error().Str("status", string(status)).Msg("invalid entity status")
				return dberror.ErrInvalidInput.Msg("invalid entity status")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to update entity state")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// ListEntities retrieves all entities of the given type in the workspace.
// Returns an array of EntitySummary ordered by name.
func (em *entityManager) ListEntities(ctx context.Context, entityType billcommon.EntityType) ([]models.EntitySummary, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT entity_id, entity_type, name, status
		FROM catalog_entities
		WHERE workspace_id = $1 AND entity_type = $2
		ORDER BY name;
	`

	rows, err := em.conn().QueryContext(ctx, query, string(workspaceID), string(entityType))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("entity_type", string(entityType)).Msg("failed to query catalog entities")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var entities []models.EntitySummary
	for rows.Next() {
		var entity models.EntitySummary
		err := rows.Scan(&entity.EntityID, &entity.EntityType, &entity.Name, &entity.Status)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan entity row")
			return nil, dberror.ErrDatabase.Err(err)
		}
		entities = append(entities, entity)
	}

	if err = rows.Err(); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error iterating over entity rows")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return entities, nil
}

// DeleteEntity deletes a catalog entity and, through cascading foreign keys,
// all of its versions. Provider reference rows carry no foreign key to the
// catalog tables, so the rows recorded against the entity and its versions
// are removed explicitly, while the version rows are still visible. If the
// entity does not exist, it does nothing.
func (em *entityManager) DeleteEntity(ctx context.Context, entityID uuid.UUID) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	refQuery := `
		DELETE FROM provider_references
		WHERE workspace_id = $1
		AND (entity_id = $2 OR entity_id IN (
			SELECT version_id FROM catalog_versions
			WHERE workspace_id = $1 AND entity_id = $2
		));
	`
	if _, err := em.conn().ExecContext(ctx, refQuery, string(workspaceID), entityID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to delete provider references")
		return dberror.ErrDatabase.Err(err)
	}

	query := `
		DELETE FROM catalog_entities
		WHERE workspace_id = $1 AND entity_id = $2;
	`
	result, err := em.conn().ExecContext(ctx, query, string(workspaceID), entityID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to delete catalog entity")
		return dberror.ErrDatabase.Err(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve result information")
		return dberror.ErrDatabase.Err(err)
	}

	if rowsAffected == 0 {
		log.Ctx(ctx).Info().Str("entity_id", entityID.String()).Str("workspace_id", string(workspaceID)).Msg("catalog entity not found")
	}

	return nil
}
