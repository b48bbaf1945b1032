// Package db provides database interfaces and implementations for the
// billing catalog service. It defines three main interfaces:
// - EntityManager: Handles workspaces, catalog entities, and their versions
// - ReferenceManager: Manages provider references and the sync outbox
// - ConnectionManager: Manages database connections and scopes
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/db/dbmanager"
	"github.com/offerd/offerd/internal/billingsrv/db/models"
	"github.com/offerd/offerd/internal/billingsrv/db/postgresql"
	"github.com/offerd/offerd/internal/common/apperrors"
	"github.com/offerd/offerd/internal/common/uuid"
)

// EntityManager handles workspace, entity, and version operations.
// All operations are scoped to the workspace carried by the connection and
// may return apperrors.Error for various failure cases.
type EntityManager interface {
	// Workspace
	CreateWorkspace(ctx context.Context, workspaceID billcommon.WorkspaceId) error
	GetWorkspace(ctx context.Context, workspaceID billcommon.WorkspaceId) (*models.Workspace, error)
	DeleteWorkspace(ctx context.Context, workspaceID billcommon.WorkspaceId) error

	// Catalog Entity
	CreateEntity(ctx context.Context, entity *models.CatalogEntity) apperrors.Error
	GetEntity(ctx context.Context, entityID uuid.UUID) (*models.CatalogEntity, apperrors.Error)
	GetEntityByName(ctx context.Context, entityType billcommon.EntityType, name string) (*models.CatalogEntity, apperrors.Error)
	UpdateEntity(ctx context.Context, entity *models.CatalogEntity) apperrors.Error
	SetEntityState(ctx context.Context, entityID uuid.UUID, status billcommon.EntityStatus, currentVersionID *uuid.UUID) apperrors.Error
	ListEntities(ctx context.Context, entityType billcommon.EntityType) ([]models.EntitySummary, apperrors.Error)
	DeleteEntity(ctx context.Context, entityID uuid.UUID) apperrors.Error

	// Catalog Version
	CreateVersion(ctx context.Context, version *models.CatalogVersion) apperrors.Error
	GetVersion(ctx context.Context, versionID uuid.UUID) (*models.CatalogVersion, apperrors.Error)
	GetDraftVersion(ctx context.Context, entityID uuid.UUID) (*models.CatalogVersion, apperrors.Error)
	UpdateDraftConfig(ctx context.Context, versionID uuid.UUID, config []byte, effectiveFrom *time.Time) apperrors.Error
	MarkPublished(ctx context.Context, versionID uuid.UUID, publishedAt time.Time, effectiveFrom *time.Time) apperrors.Error
	MarkArchived(ctx context.Context, versionID uuid.UUID) apperrors.Error
	RevertToDraft(ctx context.Context, versionID uuid.UUID) apperrors.Error
	RestorePublished(ctx context.Context, versionID uuid.UUID) apperrors.Error
	ListVersions(ctx context.Context, entityID uuid.UUID) ([]*models.CatalogVersion, apperrors.Error)
	ListPublishedVersions(ctx context.Context, entityID uuid.UUID) ([]*models.CatalogVersion, apperrors.Error)
}

// ReferenceManager handles the provider reference ledger and the sync
// outbox. Reference rows are the idempotency record for remote objects;
// outbox rows are the durable markers for in-flight syncs.
type ReferenceManager interface {
	// Provider Reference
	UpsertReference(ctx context.Context, ref *models.ProviderReference) apperrors.Error
	GetReference(ctx context.Context, entityType string, entityID uuid.UUID, provider billcommon.ProviderKind) (*models.ProviderReference, apperrors.Error)
	DeleteReference(ctx context.Context, entityType string, entityID uuid.UUID, provider billcommon.ProviderKind) apperrors.Error
	ListReferencesByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.ProviderReference, apperrors.Error)

	// Sync Outbox
	CreateOutboxEntry(ctx context.Context, entry *models.SyncOutbox) apperrors.Error
	GetOutboxEntry(ctx context.Context, outboxID uuid.UUID) (*models.SyncOutbox, apperrors.Error)
	UpdateOutboxStatus(ctx context.Context, outboxID uuid.UUID, status models.OutboxStatus, lastError string) apperrors.Error
	ListOutboxEntries(ctx context.Context, status models.OutboxStatus) ([]*models.SyncOutbox, apperrors.Error)
}

// ConnectionManager handles database connection and scope management.
// Scopes filter data by workspace at the session level.
type ConnectionManager interface {
	// Scope Management
	AddScopes(ctx context.Context, scopes map[string]string) error
	DropScopes(ctx context.Context, scopes []string) error
	AddScope(ctx context.Context, scope, value string) error
	DropScope(ctx context.Context, scope string) error
	DropAllScopes(ctx context.Context) error

	// Close the connection to the database.
	Close(ctx context.Context)
}

// Database interface combines all three managers into a single interface.
// This allows for a unified database access layer while maintaining
// separation of concerns.
type Database interface {
	EntityManager
	ReferenceManager
	ConnectionManager
}

// Scope constants define the available scopes for database operations
const (
	// Scope_WorkspaceId is used to filter data by workspace
	Scope_WorkspaceId string = "offerd.curr_workspace_id"
)

var configuredScopes = []string{
	Scope_WorkspaceId,
}

var pool dbmanager.ScopedDb

// ErrNoConnection is returned when no database connection is present in the
// context.
var ErrNoConnection = errors.New("no database connection in context")

// Init initializes the database connection pool.
func Init() {
	ctx := log.Logger.WithContext(context.Background())
	pg := dbmanager.NewScopedDb(ctx, "postgresql", configuredScopes)
	if pg == nil {
		panic("unable to create db pool")
	}
	pool = pg
}

// Conn returns a new database connection from the pool.
// Returns an error if the connection cannot be established.
func Conn(ctx context.Context) (dbmanager.ScopedConn, error) {
	if pool != nil {
		conn, err := pool.Conn(ctx)
		if err == nil {
			return conn, nil
		}
		log.Ctx(ctx).Error().Err(err).Msg("unable to get db connection")
		return nil, err
	}
	return nil, fmt.Errorf("database pool not initialized")
}

type ctxDbKeyType string

const ctxDbKey ctxDbKeyType = "OfferdCatalogDb"

// ConnCtx adds a database connection to the context.
// Returns an error if the connection cannot be established.
func ConnCtx(ctx context.Context) (context.Context, error) {
	conn, err := Conn(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, ctxDbKey, conn), nil
}

type billingCatalogDb struct {
	EntityManager
	ReferenceManager
	ConnectionManager
}

// DB returns a new database instance from the context.
// It expects a valid database connection in the context.
// Returns nil if no connection is found in the context.
func DB(ctx context.Context) Database {
	if conn, ok := ctx.Value(ctxDbKey).(dbmanager.ScopedConn); ok {
		em, rm, cm := postgresql.NewBillingCatalogDb(conn)
		return &billingCatalogDb{
			EntityManager:     em,
			ReferenceManager:  rm,
			ConnectionManager: cm,
		}
	}
	log.Ctx(ctx).Error().Msg("unable to get db connection from context")
	return nil
}
