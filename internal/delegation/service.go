package delegation

import (
	"context"
	"fmt"

	"github.com/teamdeck/teamdeck/internal/access"
)

// RepositoryPort defines data access methods for the delegation service.
type RepositoryPort interface {
	List(ctx context.Context) ([]Delegation, error)
	ListByManager(ctx context.Context, managerID string) ([]Delegation, error)
	Create(ctx context.Context, managerID, employeeID string) (Delegation, error)
	Delete(ctx context.Context, managerID, employeeID string) error
}

// AccessPort is the slice of the access service the delegation flow needs.
type AccessPort interface {
	Invalidate(ctx context.Context) error
}

// Service handles delegation business logic.
type Service struct {
	repo   RepositoryPort
	access AccessPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, access AccessPort) *Service {
	return &Service{repo: repo, access: access}
}

// List returns delegations, optionally filtered by manager.
func (s *Service) List(ctx context.Context, managerID string) ([]Delegation, error) {
	if managerID != "" {
		return s.repo.ListByManager(ctx, managerID)
	}
	return s.repo.List(ctx)
}

// Assign creates a delegation and invalidates cached role assignments so
// managed scopes are rebuilt. Both ids are accepted as given; assigning an id
// with no matching profile is tolerated and simply never widens any scope.
func (s *Service) Assign(ctx context.Context, actor access.RoleAssignment, managerID, employeeID string) (Delegation, error) {
	if !actor.CanAssignManagers {
		return Delegation{}, fmt.Errorf("%w: assigning managers requires executive access", access.ErrForbidden)
	}
	if managerID == employeeID {
		return Delegation{}, ErrSelfAssignment
	}

	d, err := s.repo.Create(ctx, managerID, employeeID)
	if err != nil {
		return Delegation{}, err
	}
	if err := s.access.Invalidate(ctx); err != nil {
		return Delegation{}, fmt.Errorf("delegation: invalidate assignments: %w", err)
	}
	return d, nil
}

// Revoke removes a delegation and invalidates cached role assignments.
func (s *Service) Revoke(ctx context.Context, actor access.RoleAssignment, managerID, employeeID string) error {
	if !actor.CanAssignManagers {
		return fmt.Errorf("%w: revoking managers requires executive access", access.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, managerID, employeeID); err != nil {
		return err
	}
	if err := s.access.Invalidate(ctx); err != nil {
		return fmt.Errorf("delegation: invalidate assignments: %w", err)
	}
	return nil
}
