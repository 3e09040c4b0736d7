package domain

import "github.com/google/uuid"

// Actor identifies who performs an operation. Authorization happens in the
// transport layer; the core only re-checks partner scope defensively.
type Actor struct {
	ID uuid.UUID
	// PartnerScoped restricts the actor to resources owned by its own
	// partner id. Admin and finance actors carry PartnerScoped=false.
	PartnerScoped bool
}

// CanAccess reports whether the actor may touch resources owned by partnerID.
func (a Actor) CanAccess(partnerID uuid.UUID) bool {
	return !a.PartnerScoped || a.ID == partnerID
}
