package access

import (
	"context"
	"fmt"
)

// RepositoryPort defines data access methods for the resolver service.
type RepositoryPort interface {
	ListProfiles(ctx context.Context) ([]Profile, error)
	ListDelegations(ctx context.Context) ([]Delegation, error)
	GetAssignment(ctx context.Context, email string) (*RoleAssignment, error)
	UpsertAssignment(ctx context.Context, a RoleAssignment) error
	InvalidateAssignments(ctx context.Context) error
}

// Service answers authorization questions for request handlers: what role a
// user holds, which profiles they may view or manage, and whether an
// impersonation request is allowed.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Assignment returns the role assignment for an email, creating the cached
// record on first access. The managed scope is recomputed from the current
// delegation snapshot on every call; the stored copy only shortens the next
// lookup and is rebuilt whenever delegations change.
func (s *Service) Assignment(ctx context.Context, email string) (RoleAssignment, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return RoleAssignment{}, fmt.Errorf("access: list profiles: %w", err)
	}
	delegations, err := s.repo.ListDelegations(ctx)
	if err != nil {
		return RoleAssignment{}, fmt.Errorf("access: list delegations: %w", err)
	}

	stored, err := s.repo.GetAssignment(ctx, email)
	if err != nil {
		return RoleAssignment{}, fmt.Errorf("access: get assignment: %w", err)
	}

	var assignment RoleAssignment
	if stored != nil {
		assignment = *stored
	} else {
		assignment = ResolveRole(email, profiles)
	}
	assignment.ManagedIDs = ComputeManagedScope(email, profiles, delegations)

	if err := s.repo.UpsertAssignment(ctx, assignment); err != nil {
		return RoleAssignment{}, fmt.Errorf("access: upsert assignment: %w", err)
	}
	return assignment, nil
}

// Effective resolves the assignment that governs the current request. When
// the session carries an impersonation target and the actor is an executive,
// the target profile's derived assignment is returned instead of the
// actor's own; the stored record for the actor is left untouched. A stale
// override held by a non-executive is ignored.
func (s *Service) Effective(ctx context.Context, actorEmail, impersonatedID string) (RoleAssignment, error) {
	actor, err := s.Assignment(ctx, actorEmail)
	if err != nil {
		return RoleAssignment{}, err
	}
	if impersonatedID == "" || !actor.IsExecutive() {
		return actor, nil
	}
	target, err := s.derive(ctx, impersonatedID)
	if err != nil {
		// A dangling target simply falls back to the actor's own view.
		return actor, nil
	}
	return target, nil
}

// Impersonate validates an executive's request to browse as the target
// profile and returns the assignment the session will assume. Non-executive
// actors are rejected and their session state must not change.
func (s *Service) Impersonate(ctx context.Context, actorEmail, targetExternalID string) (RoleAssignment, error) {
	actor, err := s.Assignment(ctx, actorEmail)
	if err != nil {
		return RoleAssignment{}, err
	}
	if !actor.IsExecutive() {
		return RoleAssignment{}, fmt.Errorf("%w: only executives may browse as another employee", ErrForbidden)
	}
	return s.derive(ctx, targetExternalID)
}

// OverrideRole upserts a role assignment on behalf of an executive, used by
// administrators to promote or demote without touching source data.
func (s *Service) OverrideRole(ctx context.Context, actorEmail, email, name string, role Role) (RoleAssignment, error) {
	actor, err := s.Assignment(ctx, actorEmail)
	if err != nil {
		return RoleAssignment{}, err
	}
	if !actor.CanAssignManagers {
		return RoleAssignment{}, fmt.Errorf("%w: role overrides require the assign-managers capability", ErrForbidden)
	}

	assignment := RoleAssignment{
		Email:             email,
		Name:              name,
		Role:              role,
		CanViewAll:        role == RoleExecutive,
		CanManageAll:      role == RoleExecutive,
		CanAssignManagers: role == RoleExecutive,
	}
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return RoleAssignment{}, fmt.Errorf("access: list profiles: %w", err)
	}
	if p := findByEmail(email, profiles); p != nil {
		assignment.ExternalID = p.ExternalID
		if assignment.Name == "" {
			assignment.Name = p.Name
		}
	}
	delegations, err := s.repo.ListDelegations(ctx)
	if err != nil {
		return RoleAssignment{}, fmt.Errorf("access: list delegations: %w", err)
	}
	assignment.ManagedIDs = ComputeManagedScope(email, profiles, delegations)

	if err := s.repo.UpsertAssignment(ctx, assignment); err != nil {
		return RoleAssignment{}, fmt.Errorf("access: upsert assignment: %w", err)
	}
	return assignment, nil
}

// Invalidate drops all cached assignments. Delegation changes call this so
// managed scopes are rebuilt from source on next access.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.repo.InvalidateAssignments(ctx)
}

// derive computes a non-persisted assignment for the profile with the given
// external id.
func (s *Service) derive(ctx context.Context, externalID string) (RoleAssignment, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return RoleAssignment{}, fmt.Errorf("access: list profiles: %w", err)
	}
	target := FindByExternalID(externalID, profiles)
	if target == nil {
		return RoleAssignment{}, fmt.Errorf("%w: profile %s", ErrNotFound, externalID)
	}

	email := ""
	if target.Email != nil {
		email = *target.Email
	}
	assignment := ResolveRole(email, profiles)
	assignment.ExternalID = target.ExternalID
	assignment.Name = target.Name
	if email == "" {
		// Profiles without an email still resolve by tags for display.
		role := DeriveRole(target)
		assignment.Role = role
		assignment.CanViewAll = role == RoleExecutive
		assignment.CanManageAll = role == RoleExecutive
		assignment.CanAssignManagers = role == RoleExecutive
	}
	delegations, err := s.repo.ListDelegations(ctx)
	if err != nil {
		return RoleAssignment{}, fmt.Errorf("access: list delegations: %w", err)
	}
	// Scope by the target's id, not its email: delegation edges still apply
	// to a manager whose profile carries no email.
	assignment.ManagedIDs = ManagedScopeFor(target.ExternalID, delegations)
	return assignment, nil
}
