// Package delegation manages explicit manager to employee assignments.
package delegation

import (
	"fmt"
	"time"

	"github.com/teamdeck/teamdeck/internal/platform/httpx"
)

var (
	// ErrNotFound indicates the delegation does not exist.
	ErrNotFound = fmt.Errorf("delegation: %w", httpx.ErrNotFound)
	// ErrDuplicate indicates the manager/employee pair is already assigned.
	ErrDuplicate = fmt.Errorf("delegation: %w", httpx.ErrDuplicate)
	// ErrSelfAssignment indicates a profile was delegated to itself.
	ErrSelfAssignment = fmt.Errorf("%w: a profile cannot manage itself", httpx.ErrValidation)
)

// Delegation links a manager profile to an employee profile by external id.
// Either side may refer to a profile that no longer exists; stale rows are
// ignored when scopes are computed and cleaned up lazily.
type Delegation struct {
	ID         int64     `json:"id" db:"id"`
	ManagerID  string    `json:"manager_id" db:"manager_id"`
	EmployeeID string    `json:"employee_id" db:"employee_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
