package scorecard

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamdeck/teamdeck/internal/access"
	"github.com/teamdeck/teamdeck/internal/directory"
)

// RepositoryPort defines data access methods for the scorecard service.
type RepositoryPort interface {
	GetByEmployee(ctx context.Context, employeeID string) (*Scorecard, error)
	Replace(ctx context.Context, in SaveInput, createdBy string) (*Scorecard, error)
	DeleteByEmployee(ctx context.Context, employeeID string) error
}

// DirectoryPort resolves the profile a scorecard belongs to, used for view
// checks against the viewer's scope.
type DirectoryPort interface {
	GetByExternalID(ctx context.Context, externalID string) (*directory.Profile, error)
}

// Service handles scorecard business logic. Reads require the viewer to see
// the target profile; writes additionally require a manager or executive
// role.
type Service struct {
	repo     RepositoryPort
	profiles DirectoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, profiles DirectoryPort) *Service {
	return &Service{repo: repo, profiles: profiles}
}

// Get returns the scorecard for an employee the viewer may see.
func (s *Service) Get(ctx context.Context, viewer access.RoleAssignment, employeeID string) (*Scorecard, error) {
	email, err := s.targetEmail(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(viewer, employeeID, email) {
		return nil, fmt.Errorf("%w: scorecard for %s is outside your scope", access.ErrForbidden, employeeID)
	}
	return s.repo.GetByEmployee(ctx, employeeID)
}

// Save replaces the employee's scorecard with the given payload.
func (s *Service) Save(ctx context.Context, viewer access.RoleAssignment, in SaveInput) (*Scorecard, error) {
	email, err := s.targetEmail(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditScorecard(viewer, in.EmployeeID, email) {
		return nil, fmt.Errorf("%w: editing this scorecard requires manager access", access.ErrForbidden)
	}
	return s.repo.Replace(ctx, in, viewer.Email)
}

// Delete removes the employee's scorecard.
func (s *Service) Delete(ctx context.Context, viewer access.RoleAssignment, employeeID string) error {
	email, err := s.targetEmail(ctx, employeeID)
	if err != nil {
		return err
	}
	if !access.CanEditScorecard(viewer, employeeID, email) {
		return fmt.Errorf("%w: editing this scorecard requires manager access", access.ErrForbidden)
	}
	return s.repo.DeleteByEmployee(ctx, employeeID)
}

// targetEmail looks up the email of the profile under review. A missing
// profile is tolerated; view checks then fall back to id-based scope.
func (s *Service) targetEmail(ctx context.Context, employeeID string) (*string, error) {
	p, err := s.profiles.GetByExternalID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p.Email, nil
}
