package entity

import "github.com/google/uuid"

// PartnerAssignment is either unassigned or assigned to exactly one partner.
// The zero value is unassigned.
type PartnerAssignment struct {
	partnerID uuid.UUID
	assigned  bool
}

// Unassigned returns an assignment with no partner.
func Unassigned() PartnerAssignment {
	return PartnerAssignment{}
}

// AssignedTo returns an assignment holding partnerID.
func AssignedTo(partnerID uuid.UUID) PartnerAssignment {
	return PartnerAssignment{partnerID: partnerID, assigned: true}
}

// PartnerID returns the assigned partner and whether one is set.
func (p PartnerAssignment) PartnerID() (uuid.UUID, bool) {
	return p.partnerID, p.assigned
}

// IsAssigned reports whether a partner holds the collection.
func (p PartnerAssignment) IsAssigned() bool {
	return p.assigned
}

// Is reports whether partnerID is the assigned partner.
func (p PartnerAssignment) Is(partnerID uuid.UUID) bool {
	return p.assigned && p.partnerID == partnerID
}

// Ptr returns the partner id as a nullable value for storage.
func (p PartnerAssignment) Ptr() *uuid.UUID {
	if !p.assigned {
		return nil
	}
	id := p.partnerID

	return &id
}

// AssignmentFromPtr builds an assignment from a nullable stored value.
func AssignmentFromPtr(id *uuid.UUID) PartnerAssignment {
	if id == nil {
		return Unassigned()
	}

	return AssignedTo(*id)
}
