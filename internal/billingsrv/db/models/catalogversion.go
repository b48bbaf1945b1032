package models

import (
	"time"

	"github.com/jackc/pgtype"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/common/uuid"
)

/*
 Table "public.catalog_versions"
     Column     |           Type           | Collation | Nullable |      Default
----------------+--------------------------+-----------+----------+--------------------
 version_id     | uuid                     |           | not null | uuid_generate_v4()
 entity_id      | uuid                     |           | not null |
 workspace_id   | character varying(10)    |           | not null |
 version_num    | integer                  |           | not null |
 status         | character varying(16)    |           | not null | 'draft'
 config         | jsonb                    |           | not null |
 effective_from | timestamp with time zone |           |          |
 published_at   | timestamp with time zone |           |          |
 created_at     | timestamp with time zone |           |          | now()
 updated_at     | timestamp with time zone |           |          | now()
Indexes:
    "catalog_versions_pkey" PRIMARY KEY, btree (version_id, workspace_id)
    "catalog_versions_workspace_id_entity_id_version_num_key" UNIQUE CONSTRAINT, btree (workspace_id, entity_id, version_num)
    "catalog_versions_one_draft_key" UNIQUE, btree (workspace_id, entity_id) WHERE status = 'draft'
Check constraints:
    "catalog_versions_version_num_check" CHECK (version_num > 0)
    "catalog_versions_status_check" CHECK (status IN ('draft', 'published', 'archived'))
Foreign-key constraints:
    "catalog_versions_entity_id_workspace_id_fkey" FOREIGN KEY (entity_id, workspace_id) REFERENCES catalog_entities(entity_id, workspace_id) ON DELETE CASCADE
Triggers:
    update_catalog_versions_updated_at BEFORE UPDATE ON catalog_versions FOR EACH ROW EXECUTE FUNCTION set_updated_at()
*/

// CatalogVersion is one version of a catalog entity. Version numbers are
// assigned at creation as max(existing)+1 for the parent and never reused.
// The partial unique index enforces that at most one draft exists per entity
// at the constraint level, so concurrent draft creation cannot race.
type CatalogVersion struct {
	VersionID     uuid.UUID                `db:"version_id"`
	EntityID      uuid.UUID                `db:"entity_id"`
	VersionNum    int                      `db:"version_num"`
	Status        billcommon.VersionStatus `db:"status"`
	Config        pgtype.JSONB             `db:"config"`
	EffectiveFrom *time.Time               `db:"effective_from"`
	PublishedAt   *time.Time               `db:"published_at"`
	CreatedAt     time.Time                `db:"created_at"`
	UpdatedAt     time.Time                `db:"updated_at"`
}

// ConfigBytes returns the raw JSON config payload, or nil when unset.
func (v *CatalogVersion) ConfigBytes() []byte {
	if v.Config.Status != pgtype.Present {
		return nil
	}
	return v.Config.Bytes
}
