package catalogmanager

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/db"
	"github.com/offerd/offerd/internal/billingsrv/db/dberror"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
	"github.com/offerd/offerd/internal/common/apperrors"
	"github.com/offerd/offerd/internal/common/uuid"
)

// Publish transitions a draft version to published and mirrors it to the
// billing provider. The local commit strictly precedes the remote call; a
// remote failure triggers a compensating rollback that restores the
// pre-publish state and surfaces ErrProviderSync. There is no shared
// transaction with the provider, so a durable outbox row brackets the
// remote attempt: pending before the call, completed or compensated after.
//
// A version with a future effective date is published as scheduled: it
// becomes part of the published set but the entity's current version
// pointer is left untouched until the date arrives (resolution is lazy, on
// read). An unset or past effective date publishes immediately, archiving
// the previously current version.
//
// A zero versionID publishes the entity's current draft; ErrDraftNotFound
// is returned when the entity has none.
func (cm *CatalogManager) Publish(ctx context.Context, entityID uuid.UUID, versionID uuid.UUID) (*models.CatalogVersion, apperrors.Error) {
	entity, err := cm.getEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.Status == billcommon.EntityStatusArchived {
		return nil, ErrEntityArchived
	}

	var version *models.CatalogVersion
	if versionID == uuid.Nil {
		version, err = db.DB(ctx).GetDraftVersion(ctx, entityID)
		if err != nil {
			if errors.Is(err, dberror.ErrNotFound) {
				return nil, ErrDraftNotFound
			}
			return nil, err
		}
		versionID = version.VersionID
	} else {
		version, err = cm.GetVersion(ctx, versionID)
		if err != nil {
			return nil, err
		}
		if version.EntityID != entityID {
			return nil, ErrVersionNotFound.Msg("version does not belong to this entity")
		}
	}
	if version.Status != billcommon.VersionStatusDraft {
		return nil, ErrVersionNotDraft
	}

	// Validation precedes every mutation; a rejected config never needs
	// rollback.
	var offerCfg *OfferConfig
	var promoCfg *PromotionConfig
	switch entity.EntityType {
	case billcommon.EntityTypeOffer:
		offerCfg, err = ParseOfferConfig(version.ConfigBytes())
	case billcommon.EntityTypePromotion:
		promoCfg, err = ParsePromotionConfig(version.ConfigBytes())
	default:
		return nil, ErrInvalidEntityType.Msg("unknown entity type: " + string(entity.EntityType))
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	immediate := version.EffectiveFrom == nil || !version.EffectiveFrom.After(now)
	priorStatus := entity.Status
	priorCurrentID := entity.CurrentVersionID

	// Local commit.
	if err := db.DB(ctx).MarkPublished(ctx, versionID, now, version.EffectiveFrom); err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrVersionNotDraft
		}
		return nil, err
	}
	if immediate {
		if priorCurrentID != nil && *priorCurrentID != versionID {
			if err := db.DB(ctx).MarkArchived(ctx, *priorCurrentID); err != nil {
				return nil, err
			}
		}
		if err := db.DB(ctx).SetEntityState(ctx, entityID, billcommon.EntityStatusActive, &versionID); err != nil {
			return nil, err
		}
	} else if entity.Status != billcommon.EntityStatusActive {
		if err := db.DB(ctx).SetEntityState(ctx, entityID, billcommon.EntityStatusActive, priorCurrentID); err != nil {
			return nil, err
		}
	}

	// Durable marker before the remote call. A crash after this point
	// leaves a pending row pointing at the half-finished sync.
	outbox := &models.SyncOutbox{
		EntityID:  entityID,
		VersionID: versionID,
		Provider:  cm.provider,
	}
	if err := db.DB(ctx).CreateOutboxEntry(ctx, outbox); err != nil {
		return nil, err
	}

	existingParentID := ""
	parentRefType := models.ParentRefType(entity.EntityType)
	if ref, refErr := db.DB(ctx).GetReference(ctx, parentRefType, entityID, cm.provider); refErr == nil {
		existingParentID = ref.ExternalID
	} else if !errors.Is(refErr, dberror.ErrNotFound) {
		return nil, refErr
	}

	var result *SyncResult
	var syncErr apperrors.Error
	if offerCfg != nil {
		result, syncErr = cm.gateway.SyncOffer(ctx, entity.Name, offerCfg, existingParentID)
	} else {
		result, syncErr = cm.gateway.SyncPromotion(ctx, entity.Name, promoCfg, existingParentID)
	}
	if syncErr != nil {
		return nil, cm.compensatePublish(ctx, entityID, versionID, outbox.OutboxID, immediate, priorStatus, priorCurrentID, syncErr)
	}

	if err := db.DB(ctx).UpsertReference(ctx, &models.ProviderReference{
		EntityType: parentRefType,
		EntityID:   entityID,
		Provider:   cm.provider,
		ExternalID: result.ParentExternalID,
	}); err != nil {
		return nil, err
	}
	if err := db.DB(ctx).UpsertReference(ctx, &models.ProviderReference{
		EntityType: models.VersionRefType(entity.EntityType),
		EntityID:   versionID,
		Provider:   cm.provider,
		ExternalID: result.VersionExternalID,
	}); err != nil {
		return nil, err
	}
	if err := db.DB(ctx).UpdateOutboxStatus(ctx, outbox.OutboxID, models.OutboxCompleted, ""); err != nil {
		return nil, err
	}

	return cm.GetVersion(ctx, versionID)
}

// compensatePublish rewinds the local publish after a failed remote sync:
// the new version goes back to draft and the displaced version, if any, is
// reinstated as published and current. When the rewind itself fails, the
// outbox row is marked failed so an operator can reconcile, and a distinct
// error is surfaced.
func (cm *CatalogManager) compensatePublish(ctx context.Context, entityID uuid.UUID, versionID uuid.UUID, outboxID uuid.UUID, immediate bool, priorStatus billcommon.EntityStatus, priorCurrentID *uuid.UUID, syncErr apperrors.Error) apperrors.Error {
	log.Ctx(ctx).Warn().Err(syncErr).
		Str("entity_id", entityID.String()).
		Str("version_id", versionID.String()).
		Msg("provider sync failed, compensating local publish")

	compensate := func() apperrors.Error {
		if err := db.DB(ctx).RevertToDraft(ctx, versionID); err != nil {
			return err
		}
		if immediate && priorCurrentID != nil && *priorCurrentID != versionID {
			if err := db.DB(ctx).RestorePublished(ctx, *priorCurrentID); err != nil {
				return err
			}
		}
		if err := db.DB(ctx).SetEntityState(ctx, entityID, priorStatus, priorCurrentID); err != nil {
			return err
		}
		return nil
	}

	if compErr := compensate(); compErr != nil {
		log.Ctx(ctx).Error().Err(compErr).
			Str("entity_id", entityID.String()).
			Str("version_id", versionID.String()).
			Msg("compensation failed, sync outbox entry needs reconciliation")
		if err := db.DB(ctx).UpdateOutboxStatus(ctx, outboxID, models.OutboxFailed, syncErr.Error()); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to mark outbox entry failed")
		}
		return ErrSyncCompensationFailed.Err(syncErr)
	}

	if err := db.DB(ctx).UpdateOutboxStatus(ctx, outboxID, models.OutboxCompensated, syncErr.Error()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to mark outbox entry compensated")
	}
	return ErrProviderSync.Err(syncErr)
}
