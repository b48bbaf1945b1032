package catalogmanager

import (
	"context"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/common/apperrors"
)

// SyncResult carries the external IDs minted or reused by a provider sync.
// The parent ID correlates the catalog entity with the remote parent
// resource; the version ID correlates one published version with the remote
// sub-resource minted for it.
type SyncResult struct {
	ParentExternalID  string
	VersionExternalID string
}

// BillingGateway mirrors catalog state to the external billing provider.
// existingParentID, when non-empty, is the external ID recorded by a prior
// sync; implementations must reuse it instead of creating a duplicate
// parent resource. Version-level resources are minted fresh on every call
// because their pricing facts are immutable on the remote side.
type BillingGateway interface {
	// SyncOffer mirrors an offer version as a remote product and price.
	SyncOffer(ctx context.Context, name string, cfg *OfferConfig, existingParentID string) (*SyncResult, apperrors.Error)

	// SyncPromotion mirrors a promotion version as a remote coupon and
	// promotion code. A code collision is resolved by reusing the
	// existing remote code.
	SyncPromotion(ctx context.Context, name string, cfg *PromotionConfig, existingParentID string) (*SyncResult, apperrors.Error)

	// DeactivateParent disables the remote parent resource. Best effort:
	// callers log failures and do not propagate them.
	DeactivateParent(ctx context.Context, entityType billcommon.EntityType, parentExternalID string) apperrors.Error
}
