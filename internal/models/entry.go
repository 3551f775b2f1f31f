package models

// EntityType classifies the party an extracted record denotes.
type EntityType string

// Entity types shared by all extraction tools.
const (
	EntityIndividual   EntityType = "Individual"
	EntityTrust        EntityType = "Trust"
	EntityLLC          EntityType = "LLC"
	EntityCorporation  EntityType = "Corporation"
	EntityPartnership  EntityType = "Partnership"
	EntityGovernment   EntityType = "Government"
	EntityEstate       EntityType = "Estate"
	EntityUnknownHeirs EntityType = "Unknown Heirs"
)

// Entity types only the title tool emits.
const (
	EntityFoundation EntityType = "Foundation"
	EntityUniversity EntityType = "University"
	EntityChurch     EntityType = "Church"
	EntityMineralCo  EntityType = "Mineral Company"
	EntityUnknown    EntityType = "Unknown"
)

// IsOrganization reports whether names of this type are kept whole rather
// than decomposed into first/middle/last.
func (t EntityType) IsOrganization() bool {
	switch t {
	case EntityIndividual, EntityUnknown, "":
		return false
	default:
		return true
	}
}

// ParsedAddress is a decomposed US mailing address. Zip, when set, matches
// \d{5}(-\d{4})? and State is a 2-letter code from the fixed state set.
type ParsedAddress struct {
	Street  string `json:"street,omitempty"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// IsEmpty reports whether no address component was recovered.
func (a ParsedAddress) IsEmpty() bool {
	return a.Street == "" && a.Street2 == "" && a.City == "" && a.State == "" && a.Zip == ""
}

// ParsedName is a personal name split into parts. When IsPerson is false
// every part is empty.
type ParsedName struct {
	First    string `json:"first_name,omitempty"`
	Middle   string `json:"middle_name,omitempty"`
	Last     string `json:"last_name,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	IsPerson bool   `json:"is_person"`
}

// SignalKind names the textual cue a parser saw that implies a relationship
// between two parties.
type SignalKind string

// Relationship signals surfaced during parsing.
const (
	SignalTrustee        SignalKind = "trustee"
	SignalIndividuallyAs SignalKind = "individually_and_as"
	SignalHeirOf         SignalKind = "heir_of"
	SignalAlias          SignalKind = "alias"
	SignalRemainderman   SignalKind = "remainderman"
)

// RelationshipSignal ties the record's own party to another named party.
type RelationshipSignal struct {
	Kind        SignalKind `json:"kind"`
	RelatedName string     `json:"related_name"`
	Evidence    string     `json:"evidence,omitempty"`
}

// PartyEntry is one numbered party from an Exhibit-A list.
type PartyEntry struct {
	EntryNumber     string               `json:"entry_number"`
	PrimaryName     string               `json:"primary_name"`
	EntityType      EntityType           `json:"entity_type"`
	MailingAddress  string               `json:"mailing_address,omitempty"`
	MailingAddress2 string               `json:"mailing_address_2,omitempty"`
	City            string               `json:"city,omitempty"`
	State           string               `json:"state,omitempty"`
	ZipCode         string               `json:"zip_code,omitempty"`
	FirstName       string               `json:"first_name,omitempty"`
	MiddleName      string               `json:"middle_name,omitempty"`
	LastName        string               `json:"last_name,omitempty"`
	Suffix          string               `json:"suffix,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	AddressUnknown  bool                 `json:"address_unknown"`
	UnknownCohort   bool                 `json:"unknown_cohort"`
	Flagged         bool                 `json:"flagged"`
	FlagReason      string               `json:"flag_reason,omitempty"`
	ErrorMessage    string               `json:"error_message,omitempty"`
	RawText         string               `json:"raw_text,omitempty"`
	Signals         []RelationshipSignal `json:"relationship_signals,omitempty"`
}

// Address returns the entry's address fields as a ParsedAddress.
func (e PartyEntry) Address() ParsedAddress {
	return ParsedAddress{
		Street:  e.MailingAddress,
		Street2: e.MailingAddress2,
		City:    e.City,
		State:   e.State,
		Zip:     e.ZipCode,
	}
}

// OwnerEntry is one owner row produced by the title tool.
type OwnerEntry struct {
	RowNumber        int                  `json:"row_number"`
	Sheet            string               `json:"sheet,omitempty"`
	FullName         string               `json:"full_name"`
	EntityType       EntityType           `json:"entity_type"`
	FirstName        string               `json:"first_name,omitempty"`
	MiddleName       string               `json:"middle_name,omitempty"`
	LastName         string               `json:"last_name,omitempty"`
	Suffix           string               `json:"suffix,omitempty"`
	Address          string               `json:"address,omitempty"`
	Address2         string               `json:"address_2,omitempty"`
	City             string               `json:"city,omitempty"`
	State            string               `json:"state,omitempty"`
	Zip              string               `json:"zip,omitempty"`
	Notes            string               `json:"notes,omitempty"`
	Interest         *float64             `json:"interest,omitempty"`
	NetAcres         *float64             `json:"net_acres,omitempty"`
	Leasehold        string               `json:"leasehold,omitempty"`
	LegalDescription string               `json:"legal_description,omitempty"`
	County           string               `json:"county,omitempty"`
	TractAcres       *float64             `json:"tract_acres,omitempty"`
	DuplicateFlag    bool                 `json:"duplicate_flag"`
	FlagReason       string               `json:"flag_reason,omitempty"`
	Signals          []RelationshipSignal `json:"relationship_signals,omitempty"`
}

// AddressParts returns the owner's address fields as a ParsedAddress.
func (o OwnerEntry) AddressParts() ParsedAddress {
	return ParsedAddress{
		Street:  o.Address,
		Street2: o.Address2,
		City:    o.City,
		State:   o.State,
		Zip:     o.Zip,
	}
}
