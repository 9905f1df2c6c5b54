package access

import (
	"fmt"
	"time"

	"github.com/teamdeck/teamdeck/internal/platform/httpx"
)

// Role is the coarse authorization level derived from a profile.
type Role string

const (
	RoleExecutive Role = "exec"
	RoleManager   Role = "manager"
	RoleEmployee  Role = "employee"
)

var (
	// ErrForbidden indicates the actor lacks the role required for an operation.
	ErrForbidden = fmt.Errorf("access: %w", httpx.ErrForbidden)
	// ErrNotFound indicates the referenced profile does not exist.
	ErrNotFound = fmt.Errorf("access: %w", httpx.ErrNotFound)
)

// Profile is the slice of an employee record the resolver needs.
type Profile struct {
	ExternalID string
	Name       string
	Email      *string
	Team       []string
	Tags       []string
}

// Delegation is an administrator-created manager edge between two profiles.
type Delegation struct {
	ManagerID  string
	EmployeeID string
}

// RoleAssignment is the per-user authorization record. The capability flags
// are functions of the role; they are stored alongside it for convenience.
type RoleAssignment struct {
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	ExternalID        string    `json:"external_id,omitempty"`
	Role              Role      `json:"role"`
	CanViewAll        bool      `json:"can_view_all"`
	CanManageAll      bool      `json:"can_manage_all"`
	CanAssignManagers bool      `json:"can_assign_managers"`
	ManagedIDs        []string  `json:"managed_ids"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// IsExecutive reports whether the assignment carries executive rights.
func (a RoleAssignment) IsExecutive() bool {
	return a.Role == RoleExecutive
}

// Manages reports whether the given external id is in the managed set.
func (a RoleAssignment) Manages(externalID string) bool {
	for _, id := range a.ManagedIDs {
		if id == externalID {
			return true
		}
	}
	return false
}
