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

// CreateOutboxEntry records a pending sync marker. The row must be durable
// before the remote call is attempted, so callers write it in its own
// statement rather than inside a longer transaction.
func (rm *referenceManager) CreateOutboxEntry(ctx context.Context, entry *models.SyncOutbox) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	outboxID := entry.OutboxID
	if outboxID == uuid.Nil {
		outboxID = uuid.New()
	}

	query := `
		INSERT INTO sync_outbox (outbox_id, workspace_id, entity_id, version_id, provider, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING outbox_id, created_at, updated_at;
	`

	row := rm.conn().QueryRowContext(ctx, query, outboxID, string(workspaceID), entry.EntityID, entry.VersionID, string(entry.Provider), string(models.OutboxPending))
	err := row.Scan(&entry.OutboxID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23503" && pgErr.ConstraintName == "sync_outbox_workspace_id_fkey" {
				log.Ctx(ctx).Error().Str("workspace_id", string(workspaceID)).Msg("workspace not found")
				return dberror.ErrInvalidInput.Msg("workspace not found")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entry.EntityID.String()).Msg("failed to insert outbox entry")
		return dberror.ErrDatabase.Err(err)
	}

	entry.Status = models.OutboxPending
	return nil
}

// GetOutboxEntry retrieves an outbox entry by its ID.
func (rm *referenceManager) GetOutboxEntry(ctx context.Context, outboxID uuid.UUID) (*models.SyncOutbox, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT outbox_id, entity_id, version_id, provider, status, COALESCE(last_error, ''), created_at, updated_at
		FROM sync_outbox
		WHERE workspace_id = $1 AND outbox_id = $2;
	`

	row := rm.conn().QueryRowContext(ctx, query, string(workspaceID), outboxID)
	entry := &models.SyncOutbox{}
	err := row.Scan(&entry.OutboxID, &entry.EntityID, &entry.VersionID, &entry.Provider, &entry.Status, &entry.LastError, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("outbox_id", outboxID.String()).Msg("outbox entry not found")
			return nil, dberror.ErrNotFound.Msg("outbox entry not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("outbox_id", outboxID.String()).Msg("failed to retrieve outbox entry")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return entry, nil
}

// UpdateOutboxStatus resolves an outbox entry to its terminal status. An
// empty lastError clears any previously recorded error.
func (rm *referenceManager) UpdateOutboxStatus(ctx context.Context, outboxID uuid.UUID, status models.OutboxStatus, lastError string) apperrors.Error {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return dberror.ErrMissingWorkspaceID
	}

	query := `
		UPDATE sync_outbox
		SET status = $3, last_error = NULLIF($4, '')
		WHERE workspace_id = $1 AND outbox_id = $2
		RETURNING outbox_id;
	`

	row := rm.conn().QueryRowContext(ctx, query, string(workspaceID), outboxID, string(status), lastError)
	var returnedOutboxID uuid.UUID
	err := row.Scan(&returnedOutboxID)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("outbox_id", outboxID.String()).Msg("outbox entry not found")
			return dberror.ErrNotFound.Msg("outbox entry not found")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23514" && pgErr.ConstraintName == "sync_outbox_status_check" {
				log.Ctx(ctx).Error().Str("status", string(status)).Msg("invalid outbox status")
				return dberror.ErrInvalidInput.Msg("invalid outbox status")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("outbox_id", outboxID.String()).Msg("failed to update outbox status")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// ListOutboxEntries retrieves all outbox entries in the given status,
// oldest first. Listing pending rows after a restart surfaces syncs that
// were cut off mid-flight.
func (rm *referenceManager) ListOutboxEntries(ctx context.Context, status models.OutboxStatus) ([]*models.SyncOutbox, apperrors.Error) {
	workspaceID := billcommon.GetWorkspaceID(ctx)
	if workspaceID == "" {
		return nil, dberror.ErrMissingWorkspaceID
	}

	query := `
		SELECT outbox_id, entity_id, version_id, provider, status, COALESCE(last_error, ''), created_at, updated_at
		FROM sync_outbox
		WHERE workspace_id = $1 AND status = $2
		ORDER BY created_at;
	`

	rows, err := rm.conn().QueryContext(ctx, query, string(workspaceID), string(status))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("status", string(status)).Msg("failed to query outbox entries")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var entries []*models.SyncOutbox
	for rows.Next() {
		entry := &models.SyncOutbox{}
		err := rows.Scan(&entry.OutboxID, &entry.EntityID, &entry.VersionID, &entry.Provider, &entry.Status, &entry.LastError, &entry.CreatedAt, &entry.UpdatedAt)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan outbox row")
			return nil, dberror.ErrDatabase.Err(err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error iterating over outbox rows")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return entries, nil
}
