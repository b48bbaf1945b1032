package models

import (
	"time"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/common/uuid"
)

/*
 Table "public.sync_outbox"
    Column    |           Type           | Collation | Nullable |      Default
--------------+--------------------------+-----------+----------+--------------------
 outbox_id    | uuid                     |           | not null | uuid_generate_v4()
 workspace_id | character varying(10)    |           | not null |
 entity_id    | uuid                     |           | not null |
 version_id   | uuid                     |           | not null |
 provider     | character varying(32)    |           | not null |
 status       | character varying(16)    |           | not null | 'pending'
 last_error   | text                     |           |          |
 created_at   | timestamp with time zone |           |          | now()
 updated_at   | timestamp with time zone |           |          | now()
Indexes:
    "sync_outbox_pkey" PRIMARY KEY, btree (outbox_id, workspace_id)
    "sync_outbox_status_idx" btree (workspace_id, status)
Check constraints:
    "sync_outbox_status_check" CHECK (status IN ('pending', 'completed', 'compensated', 'failed'))
Foreign-key constraints:
    "sync_outbox_workspace_id_fkey" FOREIGN KEY (workspace_id) REFERENCES workspaces(workspace_id) ON DELETE CASCADE
*/

// Outbox statuses. A row is written as pending before the remote sync
// attempt and resolved afterwards. "failed" means the remote call failed AND
// the compensating rollback also failed to complete, leaving the entity in a
// state that needs operator reconciliation.
type OutboxStatus string

const (
	OutboxPending     OutboxStatus = "pending"
	OutboxCompleted   OutboxStatus = "completed"
	OutboxCompensated OutboxStatus = "compensated"
	OutboxFailed      OutboxStatus = "failed"
)

// SyncOutbox is the durable marker for an in-flight provider sync. A crash
// between the local publish commit and the remote call, or between a remote
// failure and its compensation, leaves a pending row behind instead of a
// silent inconsistency.
type SyncOutbox struct {
	OutboxID  uuid.UUID               `db:"outbox_id"`
	EntityID  uuid.UUID               `db:"entity_id"`
	VersionID uuid.UUID               `db:"version_id"`
	Provider  billcommon.ProviderKind `db:"provider"`
	Status    OutboxStatus            `db:"status"`
	LastError string                  `db:"last_error"`
	CreatedAt time.Time               `db:"created_at"`
	UpdatedAt time.Time               `db:"updated_at"`
}
