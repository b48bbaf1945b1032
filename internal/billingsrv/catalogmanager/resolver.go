package catalogmanager

import (
	"context"
	"time"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/db"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
	"github.com/offerd/offerd/internal/common/apperrors"
	"github.com/offerd/offerd/internal/common/uuid"
)

// EffectiveVersion selects the single version that governs pricing at asOf
// from a set of published versions. Candidates are versions whose effective
// date is unset or has passed. Among candidates the latest effective date
// wins; an explicit effective date beats an unset one; ties fall to the
// latest publish time. Returns nil when no version governs.
//
// The comparison is deliberately pure Go rather than an ORDER BY so that
// every caller resolves identically, including tests that never touch the
// store.
func EffectiveVersion(versions []*models.CatalogVersion, asOf time.Time) *models.CatalogVersion {
	var winner *models.CatalogVersion
	for _, v := range versions {
		if v.Status != billcommon.VersionStatusPublished {
			continue
		}
		if v.EffectiveFrom != nil && v.EffectiveFrom.After(asOf) {
			continue
		}
		if winner == nil || governsOver(v, winner) {
			winner = v
		}
	}
	return winner
}

// governsOver reports whether a takes precedence over b. Both must already
// be candidates at the asOf instant.
func governsOver(a, b *models.CatalogVersion) bool {
	switch {
	case a.EffectiveFrom != nil && b.EffectiveFrom == nil:
		return true
	case a.EffectiveFrom == nil && b.EffectiveFrom != nil:
		return false
	case a.EffectiveFrom != nil && b.EffectiveFrom != nil:
		if !a.EffectiveFrom.Equal(*b.EffectiveFrom) {
			return a.EffectiveFrom.After(*b.EffectiveFrom)
		}
	}
	return laterPublished(a, b)
}

func laterPublished(a, b *models.CatalogVersion) bool {
	if a.PublishedAt == nil {
		return false
	}
	if b.PublishedAt == nil {
		return true
	}
	return a.PublishedAt.After(*b.PublishedAt)
}

// ScheduledVersions returns the published versions whose effective date is
// still in the future, soonest first. Used for operator visibility, not for
// pricing decisions.
func ScheduledVersions(versions []*models.CatalogVersion, now time.Time) []*models.CatalogVersion {
	var out []*models.CatalogVersion
	for _, v := range versions {
		if v.Status != billcommon.VersionStatusPublished || v.EffectiveFrom == nil || !v.EffectiveFrom.After(now) {
			continue
		}
		// Insertion sort; scheduled sets are small.
		pos := len(out)
		for i, s := range out {
			if v.EffectiveFrom.Before(*s.EffectiveFrom) {
				pos = i
				break
			}
		}
		out = append(out, nil)
		copy(out[pos+1:], out[pos:])
		out[pos] = v
	}
	return out
}

// GetEffectiveVersion resolves the version governing an entity at asOf.
// Returns ErrVersionNotFound when no published version governs.
func (cm *CatalogManager) GetEffectiveVersion(ctx context.Context, entityID uuid.UUID, asOf time.Time) (*models.CatalogVersion, apperrors.Error) {
	if _, err := cm.getEntity(ctx, entityID); err != nil {
		return nil, err
	}
	versions, err := db.DB(ctx).ListPublishedVersions(ctx, entityID)
	if err != nil {
		return nil, err
	}
	winner := EffectiveVersion(versions, asOf)
	if winner == nil {
		return nil, ErrVersionNotFound.Msg("no version is effective at the given time")
	}
	return winner, nil
}

// GetScheduledVersions lists the future-dated published versions of an
// entity, soonest first.
func (cm *CatalogManager) GetScheduledVersions(ctx context.Context, entityID uuid.UUID) ([]*models.CatalogVersion, apperrors.Error) {
	if _, err := cm.getEntity(ctx, entityID); err != nil {
		return nil, err
	}
	versions, err := db.DB(ctx).ListPublishedVersions(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return ScheduledVersions(versions, time.Now()), nil
}
