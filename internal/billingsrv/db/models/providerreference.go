package models

import (
	"time"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/common/uuid"
)

/*
 Table "public.provider_references"
    Column    |           Type           | Collation | Nullable | Default
--------------+--------------------------+-----------+----------+---------
 workspace_id | character varying(10)    |           | not null |
 entity_type  | character varying(32)    |           | not null |
 entity_id    | uuid                     |           | not null |
 provider     | character varying(32)    |           | not null |
 external_id  | character varying(255)   |           | not null |
 created_at   | timestamp with time zone |           |          | now()
Indexes:
    "provider_references_pkey" PRIMARY KEY, btree (workspace_id, entity_type, entity_id, provider)
Foreign-key constraints:
    "provider_references_workspace_id_fkey" FOREIGN KEY (workspace_id) REFERENCES workspaces(workspace_id) ON DELETE CASCADE
*/

// Reference entity types. Parent-level rows use the entity type itself;
// version-level rows use the _version variants because each published
// version mints a fresh remote price or coupon.
const (
	RefTypeOffer            = "offer"
	RefTypePromotion        = "promotion"
	RefTypeOfferVersion     = "offer_version"
	RefTypePromotionVersion = "promotion_version"
)

// ParentRefType returns the parent-level reference type for an entity type.
func ParentRefType(t billcommon.EntityType) string {
	return string(t)
}

// VersionRefType returns the version-level reference type for an entity type.
func VersionRefType(t billcommon.EntityType) string {
	return string(t) + "_version"
}

// ProviderReference is the idempotency ledger row correlating a local entity
// or version with its remote counterpart. Rows are written once and never
// updated in place; a new version always gets a new row.
type ProviderReference struct {
	EntityType string                  `db:"entity_type"`
	EntityID   uuid.UUID               `db:"entity_id"`
	Provider   billcommon.ProviderKind `db:"provider"`
	ExternalID string                  `db:"external_id"`
	CreatedAt  time.Time               `db:"created_at"`
}
