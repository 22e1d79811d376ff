package directory

import (
	"context"
	"errors"
)

// User account and organization states that block platform access
const (
	UserStatusDeleted         = "DELETED"
	UserStatusDisabled        = "DISABLED"
	OrganizationStatusBlocked = "BLOCKED"
)

// Role names with special meaning to access checks
const (
	RoleOwner       = "owner"
	RoleTypeDefault = "default"
)

// Error classes access failures resolve to
var (
	ErrUnauthorized = errors.New("Unauthorized")
	ErrForbidden    = errors.New("Forbidden")
)

// Lookup misses reported by Directory implementations
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDeviceNotFound = errors.New("device not found")
)

// Permission grants a named set of actions to a role
type Permission struct {
	Name    string   `bson:"name"`
	Actions []string `bson:"actions"`
}

// Role is the permission set attached to a user
type Role struct {
	Name        string       `bson:"name"`
	Type        string       `bson:"type"`
	Permissions []Permission `bson:"permissions"`
}

// Allows reports whether any of the wanted actions appears in the role's permissions
func (r Role) Allows(wanted ...string) bool {
	for _, permission := range r.Permissions {
		for _, action := range permission.Actions {
			for _, want := range wanted {
				if action == want {
					return true
				}
			}
		}
	}
	return false
}

// User is the directory view of one account
type User struct {
	ID                 string
	Status             string
	OrganizationStatus string
	Role               Role
}

/*
Directory represents the identity store behind access checks: user accounts,
registered devices, and login sessions. Lookup misses are reported with
ErrUserNotFound and ErrDeviceNotFound so callers can tell them apart from
infrastructure failures
*/
type Directory interface {
	UserByID(ctx context.Context, userID string) (User, error)
	DeviceIDByClientID(ctx context.Context, clientID string) (string, error)
	HasSessionElsewhere(ctx context.Context, userID string, deviceID string) (bool, error)
	ClearRememberMe(ctx context.Context, userID string) error
}
