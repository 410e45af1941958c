package types

import (
	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
)

// Actor identifies the authenticated user performing an operation. Role is
// re-verified server-side from the session; never taken from request bodies.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role enums.Role
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}
