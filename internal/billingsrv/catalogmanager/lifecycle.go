// Package catalogmanager implements the versioned offer and promotion
// catalog: draft editing, publishes with provider sync, archival, and
// effective-version resolution.
package catalogmanager

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/db"
	"github.com/offerd/offerd/internal/billingsrv/db/dberror"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
	"github.com/offerd/offerd/internal/common/apperrors"
	"github.com/offerd/offerd/internal/common/uuid"
)

// CatalogManager coordinates the entity and version lifecycle against the
// store and the billing provider. The store connection travels in the
// request context; the gateway and provider kind are fixed at construction.
type CatalogManager struct {
	gateway  BillingGateway
	provider billcommon.ProviderKind
}

// New creates a CatalogManager backed by the given gateway.
func New(gateway BillingGateway) *CatalogManager {
	return &CatalogManager{
		gateway:  gateway,
		provider: billcommon.ProviderStripe,
	}
}

// EntityRequest is the caller-supplied shape for creating or updating a
// catalog entity.
type EntityRequest struct {
	EntityType  billcommon.EntityType `json:"entityType" validate:"required"`
	Name        string                `json:"name" validate:"required,max=128"`
	Description string                `json:"description,omitempty" validate:"max=1024"`
}

// DraftRequest is the caller-supplied shape for creating or editing a draft
// version.
type DraftRequest struct {
	Config        []byte     `json:"config" validate:"required"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
}

// CreateEntity creates a catalog entity in draft status. The entity starts
// with no versions; the first draft is created separately.
func (cm *CatalogManager) CreateEntity(ctx context.Context, req *EntityRequest) (*models.CatalogEntity, apperrors.Error) {
	if err := V().Struct(req); err != nil {
		return nil, ErrInvalidRequest.Err(err)
	}
	if !req.EntityType.IsValid() {
		return nil, ErrInvalidEntityType.Msg("unknown entity type: " + string(req.EntityType))
	}

	entity := &models.CatalogEntity{
		EntityType:  req.EntityType,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := db.DB(ctx).CreateEntity(ctx, entity); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			return nil, ErrAlreadyExists.Msg("an entity of this type and name already exists")
		}
		return nil, err
	}
	return entity, nil
}

// UpdateEntity updates the name and description of an entity.
func (cm *CatalogManager) UpdateEntity(ctx context.Context, entityID uuid.UUID, req *EntityRequest) (*models.CatalogEntity, apperrors.Error) {
	if err := V().Struct(req); err != nil {
		return nil, ErrInvalidRequest.Err(err)
	}
	entity, err := cm.getEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.Status == billcommon.EntityStatusArchived {
		return nil, ErrEntityArchived
	}

	entity.Name = req.Name
	entity.Description = req.Description
	if err := db.DB(ctx).UpdateEntity(ctx, entity); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			return nil, ErrAlreadyExists.Msg("an entity of this type and name already exists")
		}
		return nil, err
	}
	return entity, nil
}

// GetEntity retrieves a catalog entity by ID.
func (cm *CatalogManager) GetEntity(ctx context.Context, entityID uuid.UUID) (*models.CatalogEntity, apperrors.Error) {
	return cm.getEntity(ctx, entityID)
}

// ListEntities lists entities of the given type.
func (cm *CatalogManager) ListEntities(ctx context.Context, entityType billcommon.EntityType) ([]models.EntitySummary, apperrors.Error) {
	if !entityType.IsValid() {
		return nil, ErrInvalidEntityType.Msg("unknown entity type: " + string(entityType))
	}
	return db.DB(ctx).ListEntities(ctx, entityType)
}

func (cm *CatalogManager) getEntity(ctx context.Context, entityID uuid.UUID) (*models.CatalogEntity, apperrors.Error) {
	entity, err := db.DB(ctx).GetEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	return entity, nil
}

// CreateDraft creates a new draft version for an entity. Fails with
// ErrDraftExists when the entity already has one; each entity carries at
// most one draft at a time.
func (cm *CatalogManager) CreateDraft(ctx context.Context, entityID uuid.UUID, req *DraftRequest) (*models.CatalogVersion, apperrors.Error) {
	entity, err := cm.getEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.Status == billcommon.EntityStatusArchived {
		return nil, ErrEntityArchived
	}
	if err := ValidateConfig(entity.EntityType, req.Config); err != nil {
		return nil, err
	}

	version := &models.CatalogVersion{
		EntityID:      entityID,
		Config:        pgtype.JSONB{Bytes: req.Config, Status: pgtype.Present},
		EffectiveFrom: req.EffectiveFrom,
	}
	if err := db.DB(ctx).CreateVersion(ctx, version); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			return nil, ErrDraftExists
		}
		return nil, err
	}
	return version, nil
}

// UpsertDraft creates the draft if none exists, otherwise replaces its
// config and effective date wholesale. Last write wins; there are no merge
// semantics.
func (cm *CatalogManager) UpsertDraft(ctx context.Context, entityID uuid.UUID, req *DraftRequest) (*models.CatalogVersion, apperrors.Error) {
	entity, err := cm.getEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.Status == billcommon.EntityStatusArchived {
		return nil, ErrEntityArchived
	}
	if err := ValidateConfig(entity.EntityType, req.Config); err != nil {
		return nil, err
	}

	draft, err := db.DB(ctx).GetDraftVersion(ctx, entityID)
	if err != nil {
		if !errors.Is(err, dberror.ErrNotFound) {
			return nil, err
		}
		version := &models.CatalogVersion{
			EntityID:      entityID,
			Config:        pgtype.JSONB{Bytes: req.Config, Status: pgtype.Present},
			EffectiveFrom: req.EffectiveFrom,
		}
		if err := db.DB(ctx).CreateVersion(ctx, version); err != nil {
			// A concurrent upsert created the draft between the read and
			// the insert. Surface the conflict instead of retrying.
			if errors.Is(err, dberror.ErrAlreadyExists) {
				return nil, ErrDraftExists
			}
			return nil, err
		}
		return version, nil
	}

	if err := db.DB(ctx).UpdateDraftConfig(ctx, draft.VersionID, req.Config, req.EffectiveFrom); err != nil {
		return nil, err
	}
	return db.DB(ctx).GetVersion(ctx, draft.VersionID)
}

// GetVersion retrieves a version by ID.
func (cm *CatalogManager) GetVersion(ctx context.Context, versionID uuid.UUID) (*models.CatalogVersion, apperrors.Error) {
	version, err := db.DB(ctx).GetVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return version, nil
}

// ListVersions lists all versions of an entity, newest first.
func (cm *CatalogManager) ListVersions(ctx context.Context, entityID uuid.UUID) ([]*models.CatalogVersion, apperrors.Error) {
	if _, err := cm.getEntity(ctx, entityID); err != nil {
		return nil, err
	}
	return db.DB(ctx).ListVersions(ctx, entityID)
}

// Rollback creates a new draft whose config is copied from an earlier
// version. Version history is append-only; rolling back to v2 when the
// latest is v4 produces a v5 draft carrying v2's config, leaving v1..v4
// untouched.
func (cm *CatalogManager) Rollback(ctx context.Context, entityID uuid.UUID, sourceVersionID uuid.UUID) (*models.CatalogVersion, apperrors.Error) {
	entity, err := cm.getEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.Status == billcommon.EntityStatusArchived {
		return nil, ErrEntityArchived
	}

	source, err := cm.GetVersion(ctx, sourceVersionID)
	if err != nil {
		return nil, err
	}
	if source.EntityID != entityID {
		return nil, ErrVersionNotFound.Msg("version does not belong to this entity")
	}

	version := &models.CatalogVersion{
		EntityID: entityID,
		Config:   pgtype.JSONB{Bytes: source.ConfigBytes(), Status: pgtype.Present},
	}
	if err := db.DB(ctx).CreateVersion(ctx, version); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			return nil, ErrDraftExists
		}
		return nil, err
	}
	return version, nil
}

// ArchiveEntity archives the entity itself, independent of version state,
// then attempts to deactivate the remote parent resource. Versions keep
// their statuses; archival is an entity-level flag, not a version sweep.
// The remote call is best effort; its failure is logged and never blocks
// the local archive. Archiving an archived entity is a no-op.
func (cm *CatalogManager) ArchiveEntity(ctx context.Context, entityID uuid.UUID) (*models.CatalogEntity, apperrors.Error) {
	entity, err := cm.getEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.Status == billcommon.EntityStatusArchived {
		return entity, nil
	}

	if err := db.DB(ctx).SetEntityState(ctx, entityID, billcommon.EntityStatusArchived, entity.CurrentVersionID); err != nil {
		return nil, err
	}
	entity.Status = billcommon.EntityStatusArchived

	parentRef, err := db.DB(ctx).GetReference(ctx, models.ParentRefType(entity.EntityType), entityID, cm.provider)
	if err != nil {
		if !errors.Is(err, dberror.ErrNotFound) {
			log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to look up parent reference during archive")
		}
		return entity, nil
	}

	if err := cm.gateway.DeactivateParent(ctx, entity.EntityType, parentRef.ExternalID); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("entity_id", entityID.String()).
			Str("external_id", parentRef.ExternalID).
			Msg("remote deactivation failed; entity archived locally")
	}

	return entity, nil
}
