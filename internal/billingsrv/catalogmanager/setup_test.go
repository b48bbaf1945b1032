package catalogmanager

import (
	"context"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/config"
	"github.com/offerd/offerd/internal/billingsrv/db"
	"github.com/offerd/offerd/internal/common/apperrors"
)

func newDb() context.Context {
	config.TestInit()
	db.Init()
	ctx := log.Logger.WithContext(context.Background())
	ctx, err := db.ConnCtx(ctx)
	if err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("unable to get db connection")
	}
	ctx = billcommon.WithTestContext(ctx, "catalogmanager_test")
	return ctx
}

// newWorkspace creates a test workspace and returns a context scoped to it.
func newWorkspace(t *testing.T, ctx context.Context, workspaceID billcommon.WorkspaceId) context.Context {
	t.Helper()
	err := db.DB(ctx).CreateWorkspace(ctx, workspaceID)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.DB(ctx).DeleteWorkspace(ctx, workspaceID)
	})
	return billcommon.WithWorkspaceID(ctx, workspaceID)
}

// fakeGateway is an in-memory BillingGateway. The default behavior mints
// deterministic external IDs; individual tests override the function fields
// to inject failures or capture arguments.
type fakeGateway struct {
	offerCalls   int
	promoCalls   int
	deactivated  []string
	syncOffer    func(name string, cfg *OfferConfig, existingParentID string) (*SyncResult, apperrors.Error)
	syncPromo    func(name string, cfg *PromotionConfig, existingParentID string) (*SyncResult, apperrors.Error)
	deactivateFn func(entityType billcommon.EntityType, parentExternalID string) apperrors.Error
}

func newFakeGateway() *fakeGateway {
	g := &fakeGateway{}
	g.syncOffer = func(name string, cfg *OfferConfig, existingParentID string) (*SyncResult, apperrors.Error) {
		parent := existingParentID
		if parent == "" {
			parent = "prod_" + name
		}
		return &SyncResult{ParentExternalID: parent, VersionExternalID: "price_" + name}, nil
	}
	g.syncPromo = func(name string, cfg *PromotionConfig, existingParentID string) (*SyncResult, apperrors.Error) {
		parent := existingParentID
		if parent == "" {
			parent = "coupon_" + name
		}
		return &SyncResult{ParentExternalID: parent, VersionExternalID: "promo_" + name}, nil
	}
	g.deactivateFn = func(entityType billcommon.EntityType, parentExternalID string) apperrors.Error {
		return nil
	}
	return g
}

func (g *fakeGateway) SyncOffer(ctx context.Context, name string, cfg *OfferConfig, existingParentID string) (*SyncResult, apperrors.Error) {
	g.offerCalls++
	return g.syncOffer(name, cfg, existingParentID)
}

func (g *fakeGateway) SyncPromotion(ctx context.Context, name string, cfg *PromotionConfig, existingParentID string) (*SyncResult, apperrors.Error) {
	g.promoCalls++
	return g.syncPromo(name, cfg, existingParentID)
}

func (g *fakeGateway) DeactivateParent(ctx context.Context, entityType billcommon.EntityType, parentExternalID string) apperrors.Error {
	g.deactivated = append(g.deactivated, parentExternalID)
	return g.deactivateFn(entityType, parentExternalID)
}

const perUnitOfferConfig = `
{
	"kind": "Offer",
	"currency": "USD",
	"interval": "month",
	"model": "per_unit",
	"amount": 500
}`

const percentPromotionConfig = `
{
	"kind": "Promotion",
	"discountType": "percent",
	"percentOff": 20,
	"code": "SAVE20"
}`
