package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func sampleProfiles() []Profile {
	return []Profile{
		{ExternalID: "p-ava", Name: "Ava Stone", Email: strp("ava@co.test"), Team: []string{"Exec"}, Tags: []string{"Leadership"}},
		{ExternalID: "p-marco", Name: "Marco Diaz", Email: strp("marco@co.test"), Team: []string{"Engineering"}, Tags: []string{"Engineering Lead"}},
		{ExternalID: "p-lena", Name: "Lena Park", Email: strp("lena@co.test"), Team: []string{"Engineering"}, Tags: []string{"Backend"}},
		{ExternalID: "p-ivo", Name: "Ivo Novak", Email: strp("ivo@co.test"), Team: []string{"Engineering"}, Tags: []string{"Frontend"}},
	}
}

func TestDeriveRole(t *testing.T) {
	cases := []struct {
		name    string
		profile Profile
		want    Role
	}{
		{"exec team", Profile{Team: []string{"Exec"}}, RoleExecutive},
		{"exec tag", Profile{Tags: []string{"Executive"}}, RoleExecutive},
		{"exec tag short", Profile{Tags: []string{"EXEC"}}, RoleExecutive},
		{"lead tag", Profile{Tags: []string{"Tech Lead"}}, RoleManager},
		{"vp tag", Profile{Tags: []string{"VP Engineering"}}, RoleManager},
		{"head tag", Profile{Tags: []string{"Head of Design"}}, RoleManager},
		{"plain employee", Profile{Tags: []string{"Backend"}}, RoleEmployee},
		{"no attributes", Profile{}, RoleEmployee},
		// A team merely containing the word does not promote; the match is
		// on the exact team name.
		{"exec-ish team name", Profile{Team: []string{"Executive Assistants"}}, RoleEmployee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.profile
			require.Equal(t, tc.want, DeriveRole(&p))
		})
	}
}

func TestDeriveRoleExecWinsOverManagerTags(t *testing.T) {
	p := Profile{Team: []string{"Exec"}, Tags: []string{"Engineering Lead"}}
	require.Equal(t, RoleExecutive, DeriveRole(&p))
}

func TestResolveRoleMissingProfileFailsClosed(t *testing.T) {
	a := ResolveRole("ghost@co.test", sampleProfiles())
	require.Equal(t, RoleEmployee, a.Role)
	require.False(t, a.CanViewAll)
	require.False(t, a.CanManageAll)
	require.False(t, a.CanAssignManagers)
	require.Empty(t, a.ManagedIDs)
	require.Equal(t, "ghost", a.Name)
}

func TestResolveRoleExecutiveCapabilities(t *testing.T) {
	a := ResolveRole("ava@co.test", sampleProfiles())
	require.Equal(t, RoleExecutive, a.Role)
	require.True(t, a.CanViewAll)
	require.True(t, a.CanManageAll)
	require.True(t, a.CanAssignManagers)
	require.Equal(t, "p-ava", a.ExternalID)
}

func TestComputeManagedScope(t *testing.T) {
	profiles := sampleProfiles()
	delegations := []Delegation{
		{ManagerID: "p-marco", EmployeeID: "p-lena"},
		{ManagerID: "p-marco", EmployeeID: "p-ivo"},
		{ManagerID: "p-marco", EmployeeID: "p-lena"}, // duplicate edge
		{ManagerID: "p-ava", EmployeeID: "p-marco"},
		{ManagerID: "p-gone", EmployeeID: "p-lena"}, // dangling manager
	}

	scope := ComputeManagedScope("marco@co.test", profiles, delegations)
	require.ElementsMatch(t, []string{"p-lena", "p-ivo"}, scope)

	// One level deep: marco's reports do not leak into ava's scope.
	scope = ComputeManagedScope("ava@co.test", profiles, delegations)
	require.ElementsMatch(t, []string{"p-marco"}, scope)

	require.Nil(t, ComputeManagedScope("ghost@co.test", profiles, delegations))
}

func TestManagedScopeFor(t *testing.T) {
	delegations := []Delegation{
		{ManagerID: "p-marco", EmployeeID: "p-lena"},
		{ManagerID: "p-marco", EmployeeID: "p-lena"}, // duplicate edge
		{ManagerID: "p-marco", EmployeeID: "p-ivo"},
		{ManagerID: "p-ava", EmployeeID: "p-marco"},
	}

	// Id-keyed lookup needs no profile snapshot, so it resolves scope for
	// managers whose profile has no email.
	require.ElementsMatch(t, []string{"p-lena", "p-ivo"}, ManagedScopeFor("p-marco", delegations))
	require.Nil(t, ManagedScopeFor("p-gone", delegations))
	require.Nil(t, ManagedScopeFor("", delegations))
}

func TestCanViewPrecedence(t *testing.T) {
	exec := RoleAssignment{Email: "ava@co.test", Role: RoleExecutive}
	manager := RoleAssignment{Email: "marco@co.test", Role: RoleManager, ManagedIDs: []string{"p-lena"}}
	employee := RoleAssignment{Email: "lena@co.test", Role: RoleEmployee}

	// Self is always viewable, regardless of role.
	require.True(t, CanView(employee, "p-lena", strp("lena@co.test")))

	// Executives see everyone.
	require.True(t, CanView(exec, "p-ivo", strp("ivo@co.test")))

	// Managers see exactly their delegated reports.
	require.True(t, CanView(manager, "p-lena", strp("lena@co.test")))
	require.False(t, CanView(manager, "p-ivo", strp("ivo@co.test")))

	// Employees see nobody else.
	require.False(t, CanView(employee, "p-ivo", strp("ivo@co.test")))

	// A target without an email still resolves through id scope.
	require.True(t, CanView(manager, "p-lena", nil))
	require.False(t, CanView(employee, "p-lena", nil))
}

func TestCanEditScorecard(t *testing.T) {
	exec := RoleAssignment{Email: "ava@co.test", Role: RoleExecutive}
	manager := RoleAssignment{Email: "marco@co.test", Role: RoleManager, ManagedIDs: []string{"p-lena"}}
	employee := RoleAssignment{Email: "lena@co.test", Role: RoleEmployee}

	require.True(t, CanEditScorecard(exec, "p-ivo", strp("ivo@co.test")))
	require.True(t, CanEditScorecard(manager, "p-lena", strp("lena@co.test")))
	require.False(t, CanEditScorecard(manager, "p-ivo", strp("ivo@co.test")))

	// Employees never edit scorecards, not even their own.
	require.False(t, CanEditScorecard(employee, "p-lena", strp("lena@co.test")))
}
