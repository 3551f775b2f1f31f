package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus records whether a person has reviewed a registry fact.
type VerificationStatus string

// Verification states.
const (
	Unverified    VerificationStatus = "unverified"
	UserVerified  VerificationStatus = "user_verified"
	UserCorrected VerificationStatus = "user_corrected"
)

// RelationshipType enumerates the directed edges between entities.
type RelationshipType string

// Relationship types.
const (
	RelationshipInheritance RelationshipType = "inheritance"
	RelationshipTrustee     RelationshipType = "trustee"
	RelationshipAlias       RelationshipType = "alias"
	RelationshipOther       RelationshipType = "other"
)

// SourceReference identifies the tool run that produced a fact.
type SourceReference struct {
	Tool       string    `json:"tool"`
	JobID      string    `json:"job_id"`
	Document   string    `json:"document,omitempty"`
	Locator    string    `json:"locator,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NameVariant is one spelling of an entity's name as seen by a tool.
type NameVariant struct {
	Name       string          `json:"name"`
	Normalized string          `json:"normalized"`
	Confidence float64         `json:"confidence"`
	Source     SourceReference `json:"source"`
}

// AddressRecord is one address observed for an entity.
type AddressRecord struct {
	Address ParsedAddress   `json:"address"`
	Source  SourceReference `json:"source"`
}

// PropertyInterest references a property (legal description, lease or
// property number) the entity was seen holding an interest in.
type PropertyInterest struct {
	PropertyRef string          `json:"property_ref"`
	Interest    *float64        `json:"interest,omitempty"`
	Source      SourceReference `json:"source"`
}

// Entity is the canonical registry record for one real-world party. All of
// its variants are believed to denote the same party. Entities are appended
// to, never deleted.
type Entity struct {
	CreatedAt          time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updatedAt"`
	CanonicalName      string             `db:"canonical_name" json:"canonicalName"`
	EntityType         EntityType         `db:"entity_type" json:"entityType"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verificationStatus"`
	NameVariants       []NameVariant      `db:"name_variants" json:"nameVariants"`
	Addresses          []AddressRecord    `db:"addresses" json:"addresses"`
	Properties         []PropertyInterest `db:"properties" json:"properties"`
	Sources            []SourceReference  `db:"sources" json:"sources"`
	SearchKeys         []string           `db:"search_keys" json:"-"`
	ID                 uuid.UUID          `db:"id" json:"id"`
	Version            int                `db:"version" json:"version"`
}

// PropertyRefs returns the distinct property references held by the entity.
func (e *Entity) PropertyRefs() []string {
	seen := make(map[string]bool, len(e.Properties))
	refs := make([]string, 0, len(e.Properties))
	for _, p := range e.Properties {
		if p.PropertyRef == "" || seen[p.PropertyRef] {
			continue
		}
		seen[p.PropertyRef] = true
		refs = append(refs, p.PropertyRef)
	}
	return refs
}

// Clone returns a deep copy so that staged writes never alias stored state.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	c := *e
	c.NameVariants = append([]NameVariant(nil), e.NameVariants...)
	c.Addresses = append([]AddressRecord(nil), e.Addresses...)
	c.Properties = append([]PropertyInterest(nil), e.Properties...)
	c.Sources = append([]SourceReference(nil), e.Sources...)
	c.SearchKeys = append([]string(nil), e.SearchKeys...)
	return &c
}

// Relationship is a directed edge between two entities. Relationships are
// proposals until a user verifies them.
type Relationship struct {
	CreatedAt           time.Time          `db:"created_at" json:"createdAt"`
	InterestTransferred *float64           `db:"interest_transferred" json:"interestTransferred,omitempty"`
	EffectiveDate       *string            `db:"effective_date" json:"effectiveDate,omitempty"`
	RelationshipType    RelationshipType   `db:"relationship_type" json:"relationshipType"`
	VerificationStatus  VerificationStatus `db:"verification_status" json:"verificationStatus"`
	Notes               string             `db:"notes" json:"notes,omitempty"`
	Evidence            []SourceReference  `db:"evidence" json:"evidence"`
	ID                  uuid.UUID          `db:"id" json:"id"`
	FromEntityID        uuid.UUID          `db:"from_entity_id" json:"fromEntityId"`
	ToEntityID          uuid.UUID          `db:"to_entity_id" json:"toEntityId"`
}

// OwnershipRecord is one append-only ledger line linking an entity to an
// interest in a property as reported by a specific tool run.
type OwnershipRecord struct {
	RecordedAt  time.Time       `db:"recorded_at" json:"recordedAt"`
	Interest    *float64        `db:"interest" json:"interest,omitempty"`
	NetAcres    *float64        `db:"net_acres" json:"netAcres,omitempty"`
	PropertyRef string          `db:"property_ref" json:"propertyRef"`
	Source      SourceReference `db:"source" json:"source"`
	ID          uuid.UUID       `db:"id" json:"id"`
	EntityID    uuid.UUID       `db:"entity_id" json:"entityId"`
}
