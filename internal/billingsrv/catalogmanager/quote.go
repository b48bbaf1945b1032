package catalogmanager

import (
	"context"
	"time"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/pricing"
	"github.com/offerd/offerd/internal/common/apperrors"
	"github.com/offerd/offerd/internal/common/uuid"
)

// Quote is a priced offer at a point in time, suitable for checkout
// consumers. It names the version that produced the price so callers can
// correlate with the provider reference ledger.
type Quote struct {
	EntityID   uuid.UUID            `json:"entityId"`
	VersionID  uuid.UUID            `json:"versionId"`
	VersionNum int                  `json:"versionNum"`
	Currency   string               `json:"currency"`
	Quantity   int64                `json:"quantity"`
	Price      *pricing.PriceResult `json:"price"`
}

// QuoteOffer resolves the version of an offer effective at asOf and prices
// the given quantity under it. A zero asOf means now.
func (cm *CatalogManager) QuoteOffer(ctx context.Context, entityID uuid.UUID, quantity int64, asOf time.Time) (*Quote, apperrors.Error) {
	entity, err := cm.getEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.EntityType != billcommon.EntityTypeOffer {
		return nil, ErrInvalidEntityType.Msg("quotes are only available for offers")
	}

	if asOf.IsZero() {
		asOf = time.Now()
	}
	version, err := cm.GetEffectiveVersion(ctx, entityID, asOf)
	if err != nil {
		return nil, err
	}

	cfg, err := ParseOfferConfig(version.ConfigBytes())
	if err != nil {
		return nil, err
	}

	result, err := pricing.Price(cfg.Model, cfg.Amount, cfg.Tiers, quantity)
	if err != nil {
		return nil, err
	}

	return &Quote{
		EntityID:   entityID,
		VersionID:  version.VersionID,
		VersionNum: version.VersionNum,
		Currency:   cfg.Currency,
		Quantity:   quantity,
		Price:      result,
	}, nil
}
