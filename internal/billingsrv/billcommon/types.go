// Package billcommon provides shared types and context management for the
// billing catalog service. The workspace ID is the multi-tenancy isolation
// boundary and is always threaded explicitly through context, never held in
// package-level state.
package billcommon

// WorkspaceId identifies a tenant workspace. Every store and manager
// operation is scoped to exactly one workspace.
type WorkspaceId string

// EntityType distinguishes the two kinds of catalog entities. They share a
// version lifecycle and differ only in their config payload.
type EntityType string

const (
	EntityTypeOffer     EntityType = "offer"
	EntityTypePromotion EntityType = "promotion"
)

// IsValid reports whether t is a known entity type.
func (t EntityType) IsValid() bool {
	return t == EntityTypeOffer || t == EntityTypePromotion
}

// ProviderKind identifies an external billing provider. A catalog entity is
// synchronized to exactly one provider.
type ProviderKind string

const (
	ProviderStripe ProviderKind = "stripe"
)

// EntityStatus is the lifecycle state of a catalog entity. It reflects
// whether the entity has ever had a published version.
type EntityStatus string

const (
	EntityStatusDraft    EntityStatus = "draft"
	EntityStatusActive   EntityStatus = "active"
	EntityStatusArchived EntityStatus = "archived"
)

// VersionStatus is the lifecycle state of a single version. Draft is
// editable and unused, published is live (immediately or on a future date),
// archived is superseded and terminal.
type VersionStatus string

const (
	VersionStatusDraft     VersionStatus = "draft"
	VersionStatusPublished VersionStatus = "published"
	VersionStatusArchived  VersionStatus = "archived"
)

// Kind strings used by the typed config payloads.
const (
	OfferKind     = "Offer"
	PromotionKind = "Promotion"
)

// ServerVersion is the version string reported by the /version endpoint.
const ServerVersion = "0.3.0"

// ApiVersion is the wire format version of the catalog API.
const ApiVersion = "0.1.0-alpha.1"
