package directory

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/teamdeck/teamdeck/internal/access"
)

// RepositoryPort defines data access methods for the directory.
type RepositoryPort interface {
	ListProfiles(ctx context.Context) ([]Profile, error)
	GetByExternalID(ctx context.Context, externalID string) (*Profile, error)
	ListDelegationPairs(ctx context.Context) (map[string]string, error)
	UpdateBaseSalary(ctx context.Context, externalID string, salary float64) error
	DeleteByExternalID(ctx context.Context, externalID string) error
}

// Service handles directory business logic. Every profile is visible to
// every signed-in user (company directory); the sensitive compensation
// fields are redacted unless the viewer's scope covers the target.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all profiles with the manager edge joined in, redacted for
// the viewer.
func (s *Service) List(ctx context.Context, viewer access.RoleAssignment) ([]Profile, error) {
	var (
		profiles  []Profile
		delegates map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.repo.ListProfiles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		delegates, err = s.repo.ListDelegationPairs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("directory: list: %w", err)
	}

	for i := range profiles {
		if managerID, ok := delegates[profiles[i].ExternalID]; ok {
			id := managerID
			profiles[i].ManagerID = &id
		}
		if !access.CanView(viewer, profiles[i].ExternalID, profiles[i].Email) {
			redact(&profiles[i])
		}
	}
	return profiles, nil
}

// Get returns one profile, redacted for the viewer.
func (s *Service) Get(ctx context.Context, viewer access.RoleAssignment, externalID string) (*Profile, error) {
	profile, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(viewer, profile.ExternalID, profile.Email) {
		redact(profile)
	}
	return profile, nil
}

// UpdateSalary sets a profile's stored salary. Only executives may do this;
// the value survives subsequent imports.
func (s *Service) UpdateSalary(ctx context.Context, viewer access.RoleAssignment, externalID string, salary float64) (*Profile, error) {
	if !viewer.IsExecutive() {
		return nil, fmt.Errorf("%w: only executives may update salaries", access.ErrForbidden)
	}
	if err := s.repo.UpdateBaseSalary(ctx, externalID, salary); err != nil {
		return nil, err
	}
	return s.repo.GetByExternalID(ctx, externalID)
}

// Delete removes a profile from the directory. Executive only; the next
// import will not resurrect it unless the source still contains the record.
func (s *Service) Delete(ctx context.Context, viewer access.RoleAssignment, externalID string) error {
	if !viewer.IsExecutive() {
		return fmt.Errorf("%w: only executives may delete employees", access.ErrForbidden)
	}
	return s.repo.DeleteByExternalID(ctx, externalID)
}

// Stats aggregates team membership, tag usage and timezone spread.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("directory: stats: %w", err)
	}

	teamMembers := make(map[string][]string)
	tagCounts := make(map[string]int)
	tzCounts := make(map[string]int)
	for _, p := range profiles {
		for _, team := range p.Team {
			teamMembers[team] = append(teamMembers[team], p.Name)
		}
		for _, tag := range p.Tags {
			tagCounts[tag]++
		}
		if p.Timezone != nil && *p.Timezone != "" {
			tzCounts[*p.Timezone]++
		}
	}

	stats := Stats{TotalEmployees: len(profiles)}
	for name, members := range teamMembers {
		stats.Teams = append(stats.Teams, TeamStat{Name: name, Count: len(members), Members: members})
	}
	sort.Slice(stats.Teams, func(i, j int) bool { return stats.Teams[i].Name < stats.Teams[j].Name })
	stats.Tags = sortedCounts(tagCounts)
	stats.Timezones = sortedCounts(tzCounts)
	return stats, nil
}

func sortedCounts(counts map[string]int) []CountStat {
	out := make([]CountStat, 0, len(counts))
	for name, count := range counts {
		out = append(out, CountStat{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func redact(p *Profile) {
	p.BaseSalary = nil
	p.BillableRate = nil
	p.TotalSalary = nil
	p.LocationFactor = nil
	p.StepFactor = nil
	p.LevelFactor = nil
}
