// Package models defines the persistence models for the billing catalog
// service. Each model carries the table definition it maps to.
package models

import (
	"time"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
)

/*
 Table "public.workspaces"
    Column    |           Type           | Collation | Nullable | Default
--------------+--------------------------+-----------+----------+---------
 workspace_id | character varying(10)    |           | not null |
 created_at   | timestamp with time zone |           |          | now()
 updated_at   | timestamp with time zone |           |          | now()
Indexes:
    "workspaces_pkey" PRIMARY KEY, btree (workspace_id)
*/

// Workspace model definition
type Workspace struct {
	WorkspaceID billcommon.WorkspaceId `db:"workspace_id"`
	CreatedAt   time.Time              `db:"created_at"`
	UpdatedAt   time.Time              `db:"updated_at"`
}
