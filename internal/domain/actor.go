// internal/domain/actor.go
package domain

import "fmt"

// ActorRole identifies who initiated a state change.
type ActorRole string

const (
	RoleUser   ActorRole = "user"
	RoleAdmin  ActorRole = "admin"
	RoleSystem ActorRole = "system"
)

// Actor is the request-scoped principal attributed in audit records.
// ImpersonatorID is set when an admin acts on behalf of a user.
type Actor struct {
	ID             int64     `json:"id"`
	Role           ActorRole `json:"role"`
	ImpersonatorID *int64    `json:"impersonator_id,omitempty"`
}

// SystemActor is used by scheduled jobs.
var SystemActor = Actor{Role: RoleSystem}

// UserActor returns an actor for a user acting on their own account.
func UserActor(userID int64) Actor {
	return Actor{ID: userID, Role: RoleUser}
}

// AdminActor returns an actor for an administrator.
func AdminActor(adminID int64) Actor {
	return Actor{ID: adminID, Role: RoleAdmin}
}

func (a Actor) String() string {
	if a.ImpersonatorID != nil {
		return fmt.Sprintf("%s:%d(as admin:%d)", a.Role, a.ID, *a.ImpersonatorID)
	}
	if a.Role == RoleSystem {
		return string(RoleSystem)
	}
	return fmt.Sprintf("%s:%d", a.Role, a.ID)
}
