package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamdeck/teamdeck/internal/access"
)

type memoryRepo struct {
	profiles    []Profile
	delegations map[string]string
}

func (r *memoryRepo) ListProfiles(ctx context.Context) ([]Profile, error) {
	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out, nil
}

func (r *memoryRepo) GetByExternalID(ctx context.Context, externalID string) (*Profile, error) {
	for _, p := range r.profiles {
		if p.ExternalID == externalID {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) ListDelegationPairs(ctx context.Context) (map[string]string, error) {
	return r.delegations, nil
}

func (r *memoryRepo) UpdateBaseSalary(ctx context.Context, externalID string, salary float64) error {
	for i := range r.profiles {
		if r.profiles[i].ExternalID == externalID {
			r.profiles[i].BaseSalary = &salary
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepo) DeleteByExternalID(ctx context.Context, externalID string) error {
	for i := range r.profiles {
		if r.profiles[i].ExternalID == externalID {
			r.profiles = append(r.profiles[:i], r.profiles[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func strp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }

func seededRepo() *memoryRepo {
	return &memoryRepo{
		profiles: []Profile{
			{ExternalID: "p-marco", Name: "Marco Diaz", Email: strp("marco@co.test"), Team: []string{"Engineering"}, Tags: []string{"Engineering Lead"}, BaseSalary: fp(150000), Timezone: strp("Europe/Madrid")},
			{ExternalID: "p-lena", Name: "Lena Park", Email: strp("lena@co.test"), Team: []string{"Engineering"}, Tags: []string{"Backend"}, BaseSalary: fp(120000), TotalSalary: fp(132000), Timezone: strp("Asia/Seoul")},
			{ExternalID: "p-ivo", Name: "Ivo Novak", Email: strp("ivo@co.test"), Team: []string{"Design"}, Tags: []string{"Frontend"}, BaseSalary: fp(115000), Timezone: strp("Europe/Madrid")},
		},
		delegations: map[string]string{"p-lena": "p-marco", "p-ivo": "p-marco"},
	}
}

var (
	execViewer    = access.RoleAssignment{Email: "ava@co.test", Role: access.RoleExecutive}
	managerViewer = access.RoleAssignment{Email: "marco@co.test", Role: access.RoleManager, ManagedIDs: []string{"p-lena"}}
)

func TestListRedactsOutOfScopeSalaries(t *testing.T) {
	svc := NewService(seededRepo())

	profiles, err := svc.List(context.Background(), managerViewer)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	byID := make(map[string]Profile)
	for _, p := range profiles {
		byID[p.ExternalID] = p
	}

	// Own profile and the delegated report keep compensation fields.
	require.NotNil(t, byID["p-marco"].BaseSalary)
	require.NotNil(t, byID["p-lena"].BaseSalary)
	require.NotNil(t, byID["p-lena"].TotalSalary)

	// Everyone else is redacted but still listed.
	require.Nil(t, byID["p-ivo"].BaseSalary)
	require.Equal(t, "Ivo Novak", byID["p-ivo"].Name)
}

func TestListExecutiveSeesEverything(t *testing.T) {
	svc := NewService(seededRepo())

	profiles, err := svc.List(context.Background(), execViewer)
	require.NoError(t, err)
	for _, p := range profiles {
		require.NotNil(t, p.BaseSalary, p.ExternalID)
	}
}

func TestListJoinsManagerEdge(t *testing.T) {
	svc := NewService(seededRepo())

	profiles, err := svc.List(context.Background(), execViewer)
	require.NoError(t, err)

	for _, p := range profiles {
		switch p.ExternalID {
		case "p-lena", "p-ivo":
			require.NotNil(t, p.ManagerID)
			require.Equal(t, "p-marco", *p.ManagerID)
		default:
			require.Nil(t, p.ManagerID)
		}
	}
}

func TestGetRedactsForEmployeeViewer(t *testing.T) {
	svc := NewService(seededRepo())
	employee := access.RoleAssignment{Email: "lena@co.test", Role: access.RoleEmployee}

	own, err := svc.Get(context.Background(), employee, "p-lena")
	require.NoError(t, err)
	require.NotNil(t, own.BaseSalary)

	other, err := svc.Get(context.Background(), employee, "p-ivo")
	require.NoError(t, err)
	require.Nil(t, other.BaseSalary)

	_, err = svc.Get(context.Background(), employee, "p-missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSalaryExecutiveOnly(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.UpdateSalary(ctx, managerViewer, "p-lena", 130000)
	require.ErrorIs(t, err, access.ErrForbidden)

	p, err := svc.UpdateSalary(ctx, execViewer, "p-lena", 130000)
	require.NoError(t, err)
	require.InDelta(t, 130000, *p.BaseSalary, 0.01)

	_, err = svc.UpdateSalary(ctx, execViewer, "p-missing", 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExecutiveOnly(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo)
	ctx := context.Background()

	err := svc.Delete(ctx, managerViewer, "p-ivo")
	require.ErrorIs(t, err, access.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, execViewer, "p-ivo"))
	require.Len(t, repo.profiles, 2)
}

func TestStats(t *testing.T) {
	svc := NewService(seededRepo())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalEmployees)

	require.Len(t, stats.Teams, 2)
	require.Equal(t, "Design", stats.Teams[0].Name)
	require.Equal(t, "Engineering", stats.Teams[1].Name)
	require.Equal(t, 2, stats.Teams[1].Count)

	require.Equal(t, CountStat{Name: "Europe/Madrid", Count: 2}, stats.Timezones[0])
}
