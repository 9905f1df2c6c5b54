package scorecard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teamdeck/teamdeck/internal/access"
	"github.com/teamdeck/teamdeck/internal/directory"
)

type memoryRepo struct {
	cards map[string]*Scorecard
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{cards: make(map[string]*Scorecard)}
}

func (r *memoryRepo) GetByEmployee(ctx context.Context, employeeID string) (*Scorecard, error) {
	card, ok := r.cards[employeeID]
	if !ok {
		return nil, ErrNotFound
	}
	return card, nil
}

func (r *memoryRepo) Replace(ctx context.Context, in SaveInput, createdBy string) (*Scorecard, error) {
	card := &Scorecard{
		EmployeeID: in.EmployeeID,
		Role:       in.Role,
		Mission:    in.Mission,
		CreatedBy:  createdBy,
		UpdatedAt:  time.Now(),
	}
	for i, o := range in.Outcomes {
		card.Outcomes = append(card.Outcomes, Outcome{
			OrderIndex:  i + 1,
			Description: o.Description,
			Details:     o.Details,
			Rating:      o.Rating,
			Comments:    o.Comments,
		})
	}
	r.cards[in.EmployeeID] = card
	return card, nil
}

func (r *memoryRepo) DeleteByEmployee(ctx context.Context, employeeID string) error {
	if _, ok := r.cards[employeeID]; !ok {
		return ErrNotFound
	}
	delete(r.cards, employeeID)
	return nil
}

type stubDirectory struct {
	emails map[string]string
}

func (d *stubDirectory) GetByExternalID(ctx context.Context, externalID string) (*directory.Profile, error) {
	email, ok := d.emails[externalID]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return &directory.Profile{ExternalID: externalID, Email: &email}, nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	dir := &stubDirectory{emails: map[string]string{
		"p-lena": "lena@co.test",
		"p-ivo":  "ivo@co.test",
	}}
	return NewService(repo, dir), repo
}

var (
	exec     = access.RoleAssignment{Email: "ava@co.test", Role: access.RoleExecutive}
	manager  = access.RoleAssignment{Email: "marco@co.test", Role: access.RoleManager, ManagedIDs: []string{"p-lena"}}
	employee = access.RoleAssignment{Email: "lena@co.test", Role: access.RoleEmployee}
)

func sampleInput(employeeID string) SaveInput {
	rating := 4
	return SaveInput{
		EmployeeID: employeeID,
		Role:       "Backend Engineer",
		Outcomes: []OutcomeInput{
			{Description: "Ship billing v2", Details: []string{"migration plan"}, Rating: &rating},
		},
	}
}

func TestGetRequiresViewScope(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.cards["p-lena"] = &Scorecard{EmployeeID: "p-lena", Role: "Backend Engineer"}

	card, err := svc.Get(ctx, manager, "p-lena")
	require.NoError(t, err)
	require.Equal(t, "p-lena", card.EmployeeID)

	// Out of the manager's scope.
	_, err = svc.Get(ctx, manager, "p-ivo")
	require.ErrorIs(t, err, access.ErrForbidden)

	// Employees may read their own.
	_, err = svc.Get(ctx, employee, "p-lena")
	require.NoError(t, err)
}

func TestGetMissingCardInScope(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), exec, "p-lena")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRequiresManagerRole(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	// Employees cannot edit, not even their own card.
	_, err := svc.Save(ctx, employee, sampleInput("p-lena"))
	require.ErrorIs(t, err, access.ErrForbidden)

	card, err := svc.Save(ctx, manager, sampleInput("p-lena"))
	require.NoError(t, err)
	require.Equal(t, "marco@co.test", card.CreatedBy)
	require.Len(t, card.Outcomes, 1)
	require.Equal(t, 1, card.Outcomes[0].OrderIndex)

	// Manager scope does not cover p-ivo.
	_, err = svc.Save(ctx, manager, sampleInput("p-ivo"))
	require.ErrorIs(t, err, access.ErrForbidden)
	require.NotContains(t, repo.cards, "p-ivo")

	_, err = svc.Save(ctx, exec, sampleInput("p-ivo"))
	require.NoError(t, err)
}

func TestSaveDanglingProfileExecutiveOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// No profile means no email match; id-based scope still lets an
	// executive through while a manager without the id is refused.
	_, err := svc.Save(ctx, manager, sampleInput("p-gone"))
	require.ErrorIs(t, err, access.ErrForbidden)

	card, err := svc.Save(ctx, exec, sampleInput("p-gone"))
	require.NoError(t, err)
	require.Equal(t, "p-gone", card.EmployeeID)
}

func TestDelete(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.cards["p-lena"] = &Scorecard{EmployeeID: "p-lena"}

	err := svc.Delete(ctx, employee, "p-lena")
	require.ErrorIs(t, err, access.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, manager, "p-lena"))
	require.ErrorIs(t, svc.Delete(ctx, manager, "p-lena"), ErrNotFound)
}
