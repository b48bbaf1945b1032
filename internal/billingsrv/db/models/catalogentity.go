package models

import (
	"time"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/common/uuid"
)

/*
 Table "public.catalog_entities"
       Column       |           Type           | Collation | Nullable |      Default
--------------------+--------------------------+-----------+----------+--------------------
 entity_id          | uuid                     |           | not null | uuid_generate_v4()
 workspace_id       | character varying(10)    |           | not null |
 entity_type        | character varying(16)    |           | not null |
 name               | character varying(128)   |           | not null |
 description        | character varying(1024)  |           |          |
 status             | character varying(16)    |           | not null | 'draft'
 current_version_id | uuid                     |           |          |
 created_at         | timestamp with time zone |           |          | now()
 updated_at         | timestamp with time zone |           |          | now()
Indexes:
    "catalog_entities_pkey" PRIMARY KEY, btree (entity_id, workspace_id)
    "catalog_entities_workspace_id_entity_type_name_key" UNIQUE CONSTRAINT, btree (workspace_id, entity_type, name)
Check constraints:
    "catalog_entities_name_check" CHECK (name::text ~ '^[A-Za-z0-9_-]+$'::text)
    "catalog_entities_entity_type_check" CHECK (entity_type IN ('offer', 'promotion'))
    "catalog_entities_status_check" CHECK (status IN ('draft', 'active', 'archived'))
Foreign-key constraints:
    "catalog_entities_workspace_id_fkey" FOREIGN KEY (workspace_id) REFERENCES workspaces(workspace_id) ON DELETE CASCADE
Referenced by:
    TABLE "catalog_versions" CONSTRAINT "catalog_versions_entity_id_workspace_id_fkey" FOREIGN KEY (entity_id, workspace_id) REFERENCES catalog_entities(entity_id, workspace_id) ON DELETE CASCADE
Triggers:
    update_catalog_entities_updated_at BEFORE UPDATE ON catalog_entities FOR EACH ROW EXECUTE FUNCTION set_updated_at()
*/

// CatalogEntity is a priced or discounted thing with a version history: an
// offer or a promotion, depending on EntityType. CurrentVersionID points at
// the immediately effective version and is only ever set by an immediate
// publish; scheduled publishes leave it untouched.
type CatalogEntity struct {
	EntityID         uuid.UUID               `db:"entity_id"`
	EntityType       billcommon.EntityType   `db:"entity_type"`
	Name             string                  `db:"name"`
	Description      string                  `db:"description"`
	Status           billcommon.EntityStatus `db:"status"`
	CurrentVersionID *uuid.UUID              `db:"current_version_id"`
	CreatedAt        time.Time               `db:"created_at"`
	UpdatedAt        time.Time               `db:"updated_at"`
}

// EntitySummary is a trimmed listing row for operator visibility.
type EntitySummary struct {
	EntityID   uuid.UUID               `db:"entity_id"`
	EntityType billcommon.EntityType   `db:"entity_type"`
	Name       string                  `db:"name"`
	Status     billcommon.EntityStatus `db:"status"`
}
