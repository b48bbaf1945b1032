package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/config"
	"github.com/offerd/offerd/internal/billingsrv/db/dberror"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
	"github.com/offerd/offerd/internal/common/uuid"
)

func newDb(c ...context.Context) context.Context {
	config.TestInit()
	Init()
	var ctx context.Context
	var err error
	if len(c) > 0 {
		ctx, err = ConnCtx(c[0])
		if err != nil {
			log.Ctx(ctx).Fatal().Err(err).Msg("unable to get db connection")
		}
	} else {
		ctx, err = ConnCtx(context.Background())
		if err != nil {
			log.Ctx(ctx).Fatal().Err(err).Msg("unable to get db connection")
		}
	}
	ctx = billcommon.WithTestContext(ctx, "db_test")
	return ctx
}

// newWorkspace creates a test workspace and returns a context scoped to it.
func newWorkspace(t *testing.T, ctx context.Context, workspaceID billcommon.WorkspaceId) context.Context {
	t.Helper()
	err := DB(ctx).CreateWorkspace(ctx, workspaceID)
	require.NoError(t, err)
	t.Cleanup(func() {
		DB(ctx).DeleteWorkspace(ctx, workspaceID)
	})
	return billcommon.WithWorkspaceID(ctx, workspaceID)
}

func jsonbConfig(s string) pgtype.JSONB {
	return pgtype.JSONB{Bytes: []byte(s), Status: pgtype.Present}
}

func TestCreateWorkspace(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	workspaceID := billcommon.WorkspaceId("WABCDE")

	err := DB(ctx).CreateWorkspace(ctx, workspaceID)
	assert.NoError(t, err)
	defer DB(ctx).DeleteWorkspace(ctx, workspaceID)

	// Creating the same workspace again should return ErrAlreadyExists
	err = DB(ctx).CreateWorkspace(ctx, workspaceID)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	ws, err := DB(ctx).GetWorkspace(ctx, workspaceID)
	assert.NoError(t, err)
	assert.NotNil(t, ws)
	assert.Equal(t, workspaceID, ws.WorkspaceID)

	_, err = DB(ctx).GetWorkspace(ctx, billcommon.WorkspaceId("WNOPE"))
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestCreateEntity(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WENT01")

	entity := &models.CatalogEntity{
		EntityType:  billcommon.EntityTypeOffer,
		Name:        "pro-plan",
		Description: "Pro plan offer",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entity.EntityID)
	assert.Equal(t, billcommon.EntityStatusDraft, entity.Status)

	// Same type and name again should conflict
	dup := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "pro-plan",
	}
	err = DB(ctx).CreateEntity(ctx, dup)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	// Same name under a different type is allowed
	promo := &models.CatalogEntity{
		EntityType: billcommon.EntityTypePromotion,
		Name:       "pro-plan",
	}
	err = DB(ctx).CreateEntity(ctx, promo)
	assert.NoError(t, err)

	// Invalid name format
	bad := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "pro plan!",
	}
	err = DB(ctx).CreateEntity(ctx, bad)
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)

	// Missing workspace in context
	noWs := billcommon.WithWorkspaceID(ctx, "")
	err = DB(noWs).CreateEntity(noWs, &models.CatalogEntity{EntityType: billcommon.EntityTypeOffer, Name: "x"})
	assert.ErrorIs(t, err, dberror.ErrMissingWorkspaceID)
}

func TestGetEntity(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WENT02")

	entity := &models.CatalogEntity{
		EntityType:  billcommon.EntityTypeOffer,
		Name:        "starter-plan",
		Description: "Starter plan",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	got, err := DB(ctx).GetEntity(ctx, entity.EntityID)
	assert.NoError(t, err)
	assert.Equal(t, entity.EntityID, got.EntityID)
	assert.Equal(t, "starter-plan", got.Name)
	assert.Equal(t, "Starter plan", got.Description)
	assert.Nil(t, got.CurrentVersionID)

	byName, err := DB(ctx).GetEntityByName(ctx, billcommon.EntityTypeOffer, "starter-plan")
	assert.NoError(t, err)
	assert.Equal(t, entity.EntityID, byName.EntityID)

	_, err = DB(ctx).GetEntity(ctx, uuid.New())
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	err = DB(ctx).DeleteEntity(ctx, entity.EntityID)
	assert.NoError(t, err)
	_, err = DB(ctx).GetEntity(ctx, entity.EntityID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	// Deleting an absent entity is a no-op
	err = DB(ctx).DeleteEntity(ctx, entity.EntityID)
	assert.NoError(t, err)
}

func TestUpdateEntity(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WENT03")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "old-name",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	entity.Name = "new-name"
	entity.Description = "renamed"
	err = DB(ctx).UpdateEntity(ctx, entity)
	assert.NoError(t, err)

	got, err := DB(ctx).GetEntity(ctx, entity.EntityID)
	assert.NoError(t, err)
	assert.Equal(t, "new-name", got.Name)
	assert.Equal(t, "renamed", got.Description)

	// Renaming onto an existing name should conflict
	other := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "taken",
	}
	err = DB(ctx).CreateEntity(ctx, other)
	require.NoError(t, err)

	entity.Name = "taken"
	err = DB(ctx).UpdateEntity(ctx, entity)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)
}

func TestSetEntityState(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WENT04")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "stateful",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	version := &models.CatalogVersion{
		EntityID: entity.EntityID,
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, version)
	require.NoError(t, err)

	err = DB(ctx).SetEntityState(ctx, entity.EntityID, billcommon.EntityStatusActive, &version.VersionID)
	assert.NoError(t, err)

	got, err := DB(ctx).GetEntity(ctx, entity.EntityID)
	assert.NoError(t, err)
	assert.Equal(t, billcommon.EntityStatusActive, got.Status)
	require.NotNil(t, got.CurrentVersionID)
	assert.Equal(t, version.VersionID, *got.CurrentVersionID)

	// Clearing the pointer
	err = DB(ctx).SetEntityState(ctx, entity.EntityID, billcommon.EntityStatusArchived, nil)
	assert.NoError(t, err)

	got, err = DB(ctx).GetEntity(ctx, entity.EntityID)
	assert.NoError(t, err)
	assert.Equal(t, billcommon.EntityStatusArchived, got.Status)
	assert.Nil(t, got.CurrentVersionID)

	err = DB(ctx).SetEntityState(ctx, uuid.New(), billcommon.EntityStatusActive, nil)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestListEntities(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WENT05")

	for _, name := range []string{"offer-b", "offer-a"} {
		err := DB(ctx).CreateEntity(ctx, &models.CatalogEntity{
			EntityType: billcommon.EntityTypeOffer,
			Name:       name,
		})
		require.NoError(t, err)
	}
	err := DB(ctx).CreateEntity(ctx, &models.CatalogEntity{
		EntityType: billcommon.EntityTypePromotion,
		Name:       "promo-a",
	})
	require.NoError(t, err)

	offers, err := DB(ctx).ListEntities(ctx, billcommon.EntityTypeOffer)
	assert.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "offer-a", offers[0].Name)
	assert.Equal(t, "offer-b", offers[1].Name)

	promos, err := DB(ctx).ListEntities(ctx, billcommon.EntityTypePromotion)
	assert.NoError(t, err)
	assert.Len(t, promos, 1)
}

func TestCreateVersion(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WVER01")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "versioned",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	version := &models.CatalogVersion{
		EntityID: entity.EntityID,
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, version)
	assert.NoError(t, err)
	assert.Equal(t, 1, version.VersionNum)
	assert.Equal(t, billcommon.VersionStatusDraft, version.Status)

	// A second draft for the same entity must be rejected
	second := &models.CatalogVersion{
		EntityID: entity.EntityID,
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, second)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	// A version for an unknown entity must be rejected
	orphan := &models.CatalogVersion{
		EntityID: uuid.New(),
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, orphan)
	assert.ErrorIs(t, err, dberror.ErrInvalidEntity)
}

func TestVersionNumbering(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WVER02")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "numbered",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	// Publish three versions in sequence; numbers must be 1, 2, 3
	for i := 1; i <= 3; i++ {
		version := &models.CatalogVersion{
			EntityID: entity.EntityID,
			Config:   jsonbConfig(`{"kind":"Offer"}`),
		}
		err = DB(ctx).CreateVersion(ctx, version)
		require.NoError(t, err)
		assert.Equal(t, i, version.VersionNum)

		err = DB(ctx).MarkPublished(ctx, version.VersionID, time.Now(), nil)
		require.NoError(t, err)
	}

	versions, err := DB(ctx).ListVersions(ctx, entity.EntityID)
	assert.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 3, versions[0].VersionNum)
	assert.Equal(t, 1, versions[2].VersionNum)
}

func TestVersionLifecycle(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WVER03")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "lifecycle",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	version := &models.CatalogVersion{
		EntityID: entity.EntityID,
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, version)
	require.NoError(t, err)

	draft, err := DB(ctx).GetDraftVersion(ctx, entity.EntityID)
	assert.NoError(t, err)
	assert.Equal(t, version.VersionID, draft.VersionID)

	// Draft config is editable
	effectiveFrom := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	err = DB(ctx).UpdateDraftConfig(ctx, version.VersionID, []byte(`{"kind":"Offer","updated":true}`), &effectiveFrom)
	assert.NoError(t, err)

	got, err := DB(ctx).GetVersion(ctx, version.VersionID)
	assert.NoError(t, err)
	require.NotNil(t, got.EffectiveFrom)
	assert.True(t, got.EffectiveFrom.Equal(effectiveFrom))

	// Publish
	publishedAt := time.Now()
	err = DB(ctx).MarkPublished(ctx, version.VersionID, publishedAt, nil)
	assert.NoError(t, err)

	got, err = DB(ctx).GetVersion(ctx, version.VersionID)
	assert.NoError(t, err)
	assert.Equal(t, billcommon.VersionStatusPublished, got.Status)
	assert.NotNil(t, got.PublishedAt)
	assert.Nil(t, got.EffectiveFrom)

	// Published versions are not editable
	err = DB(ctx).UpdateDraftConfig(ctx, version.VersionID, []byte(`{}`), nil)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	// Publishing twice is rejected
	err = DB(ctx).MarkPublished(ctx, version.VersionID, time.Now(), nil)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	// Archive, then restore
	err = DB(ctx).MarkArchived(ctx, version.VersionID)
	assert.NoError(t, err)

	got, err = DB(ctx).GetVersion(ctx, version.VersionID)
	assert.NoError(t, err)
	assert.Equal(t, billcommon.VersionStatusArchived, got.Status)
	assert.NotNil(t, got.PublishedAt)

	err = DB(ctx).RestorePublished(ctx, version.VersionID)
	assert.NoError(t, err)

	got, err = DB(ctx).GetVersion(ctx, version.VersionID)
	assert.NoError(t, err)
	assert.Equal(t, billcommon.VersionStatusPublished, got.Status)
}

func TestRevertToDraft(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WVER04")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "revertible",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	version := &models.CatalogVersion{
		EntityID: entity.EntityID,
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, version)
	require.NoError(t, err)

	effectiveFrom := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	err = DB(ctx).MarkPublished(ctx, version.VersionID, time.Now(), &effectiveFrom)
	require.NoError(t, err)

	err = DB(ctx).RevertToDraft(ctx, version.VersionID)
	assert.NoError(t, err)

	// The publish stamp is cleared but the scheduled date survives the
	// revert; the draft must come back exactly as it was before publish.
	got, err := DB(ctx).GetVersion(ctx, version.VersionID)
	assert.NoError(t, err)
	assert.Equal(t, billcommon.VersionStatusDraft, got.Status)
	assert.Nil(t, got.PublishedAt)
	require.NotNil(t, got.EffectiveFrom)
	assert.True(t, got.EffectiveFrom.Equal(effectiveFrom))

	// Reverting a draft is rejected
	err = DB(ctx).RevertToDraft(ctx, version.VersionID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestListPublishedVersions(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WVER05")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "published-list",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	// Two published, one draft
	for i := 0; i < 2; i++ {
		version := &models.CatalogVersion{
			EntityID: entity.EntityID,
			Config:   jsonbConfig(`{"kind":"Offer"}`),
		}
		err = DB(ctx).CreateVersion(ctx, version)
		require.NoError(t, err)
		err = DB(ctx).MarkPublished(ctx, version.VersionID, time.Now(), nil)
		require.NoError(t, err)
	}
	draft := &models.CatalogVersion{
		EntityID: entity.EntityID,
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, draft)
	require.NoError(t, err)

	published, err := DB(ctx).ListPublishedVersions(ctx, entity.EntityID)
	assert.NoError(t, err)
	assert.Len(t, published, 2)

	all, err := DB(ctx).ListVersions(ctx, entity.EntityID)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWorkspaceIsolation(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctxA := newWorkspace(t, ctx, "WISO0A")
	ctxB := newWorkspace(t, ctx, "WISO0B")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "isolated",
	}
	err := DB(ctxA).CreateEntity(ctxA, entity)
	require.NoError(t, err)

	// The entity is invisible from the other workspace
	_, err = DB(ctxB).GetEntity(ctxB, entity.EntityID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	// Same name can coexist across workspaces
	other := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "isolated",
	}
	err = DB(ctxB).CreateEntity(ctxB, other)
	assert.NoError(t, err)
}

func TestProviderReferences(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WREF01")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "referenced",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	ref := &models.ProviderReference{
		EntityType: models.RefTypeOffer,
		EntityID:   entity.EntityID,
		Provider:   billcommon.ProviderStripe,
		ExternalID: "prod_123",
	}
	err = DB(ctx).UpsertReference(ctx, ref)
	assert.NoError(t, err)

	// Re-upserting with a different external ID must not overwrite
	dup := &models.ProviderReference{
		EntityType: models.RefTypeOffer,
		EntityID:   entity.EntityID,
		Provider:   billcommon.ProviderStripe,
		ExternalID: "prod_456",
	}
	err = DB(ctx).UpsertReference(ctx, dup)
	assert.NoError(t, err)

	got, err := DB(ctx).GetReference(ctx, models.RefTypeOffer, entity.EntityID, billcommon.ProviderStripe)
	assert.NoError(t, err)
	assert.Equal(t, "prod_123", got.ExternalID)

	// A version-level reference for the same local ID is a distinct row
	verRef := &models.ProviderReference{
		EntityType: models.RefTypeOfferVersion,
		EntityID:   entity.EntityID,
		Provider:   billcommon.ProviderStripe,
		ExternalID: "price_789",
	}
	err = DB(ctx).UpsertReference(ctx, verRef)
	assert.NoError(t, err)

	refs, err := DB(ctx).ListReferencesByEntity(ctx, entity.EntityID)
	assert.NoError(t, err)
	assert.Len(t, refs, 2)

	err = DB(ctx).DeleteReference(ctx, models.RefTypeOffer, entity.EntityID, billcommon.ProviderStripe)
	assert.NoError(t, err)

	_, err = DB(ctx).GetReference(ctx, models.RefTypeOffer, entity.EntityID, billcommon.ProviderStripe)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestDeleteEntityRemovesReferences(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WREF02")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "dereferenced",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	version := &models.CatalogVersion{
		EntityID: entity.EntityID,
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, version)
	require.NoError(t, err)

	err = DB(ctx).UpsertReference(ctx, &models.ProviderReference{
		EntityType: models.RefTypeOffer,
		EntityID:   entity.EntityID,
		Provider:   billcommon.ProviderStripe,
		ExternalID: "prod_gone",
	})
	require.NoError(t, err)
	err = DB(ctx).UpsertReference(ctx, &models.ProviderReference{
		EntityType: models.RefTypeOfferVersion,
		EntityID:   version.VersionID,
		Provider:   billcommon.ProviderStripe,
		ExternalID: "price_gone",
	})
	require.NoError(t, err)

	err = DB(ctx).DeleteEntity(ctx, entity.EntityID)
	require.NoError(t, err)

	// Reference rows for the entity and its versions go with it.
	_, err = DB(ctx).GetReference(ctx, models.RefTypeOffer, entity.EntityID, billcommon.ProviderStripe)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
	_, err = DB(ctx).GetReference(ctx, models.RefTypeOfferVersion, version.VersionID, billcommon.ProviderStripe)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestSyncOutbox(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx = newWorkspace(t, ctx, "WOUT01")

	entity := &models.CatalogEntity{
		EntityType: billcommon.EntityTypeOffer,
		Name:       "synced",
	}
	err := DB(ctx).CreateEntity(ctx, entity)
	require.NoError(t, err)

	version := &models.CatalogVersion{
		EntityID: entity.EntityID,
		Config:   jsonbConfig(`{"kind":"Offer"}`),
	}
	err = DB(ctx).CreateVersion(ctx, version)
	require.NoError(t, err)

	entry := &models.SyncOutbox{
		EntityID:  entity.EntityID,
		VersionID: version.VersionID,
		Provider:  billcommon.ProviderStripe,
	}
	err = DB(ctx).CreateOutboxEntry(ctx, entry)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.OutboxID)
	assert.Equal(t, models.OutboxPending, entry.Status)

	pending, err := DB(ctx).ListOutboxEntries(ctx, models.OutboxPending)
	assert.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entry.OutboxID, pending[0].OutboxID)

	err = DB(ctx).UpdateOutboxStatus(ctx, entry.OutboxID, models.OutboxCompensated, "price create rejected")
	assert.NoError(t, err)

	got, err := DB(ctx).GetOutboxEntry(ctx, entry.OutboxID)
	assert.NoError(t, err)
	assert.Equal(t, models.OutboxCompensated, got.Status)
	assert.Equal(t, "price create rejected", got.LastError)

	pending, err = DB(ctx).ListOutboxEntries(ctx, models.OutboxPending)
	assert.NoError(t, err)
	assert.Len(t, pending, 0)

	err = DB(ctx).UpdateOutboxStatus(ctx, uuid.New(), models.OutboxCompleted, "")
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}
