package access

import (
	"strings"

	"golang.org/x/text/cases"
)

// The resolver is a set of pure functions over in-memory snapshots of
// profiles and delegations. Callers fetch the snapshots and decide whether
// to persist the result; nothing here touches storage.

var tagFolder = cases.Fold()

// Teams and tags that promote a profile to executive, and tag fragments
// that mark a manager. Matching is case-insensitive; manager keywords match
// on substring so "Tech Lead" and "VP Engineering" both qualify.
var (
	executiveTeam   = "Exec"
	executiveTags   = []string{"exec", "executive"}
	managerKeywords = []string{"manager", "lead", "head", "director", "vp"}
)

// DeriveRole classifies a profile by its team and tag attributes. A nil
// profile yields RoleEmployee.
func DeriveRole(p *Profile) Role {
	if p == nil {
		return RoleEmployee
	}
	for _, team := range p.Team {
		if team == executiveTeam {
			return RoleExecutive
		}
	}
	for _, tag := range p.Tags {
		folded := tagFolder.String(tag)
		for _, exec := range executiveTags {
			if folded == exec {
				return RoleExecutive
			}
		}
	}
	for _, tag := range p.Tags {
		folded := tagFolder.String(tag)
		for _, kw := range managerKeywords {
			if strings.Contains(folded, kw) {
				return RoleManager
			}
		}
	}
	return RoleEmployee
}

// ResolveRole derives a role assignment for the given email from a profile
// snapshot. A missing profile is not an error: the user defaults to an
// employee with empty scope. Email matching is exact.
func ResolveRole(email string, profiles []Profile) RoleAssignment {
	profile := findByEmail(email, profiles)
	role := DeriveRole(profile)

	assignment := RoleAssignment{
		Email:             email,
		Role:              role,
		CanViewAll:        role == RoleExecutive,
		CanManageAll:      role == RoleExecutive,
		CanAssignManagers: role == RoleExecutive,
	}
	if profile != nil {
		assignment.ExternalID = profile.ExternalID
		assignment.Name = profile.Name
	} else {
		if at := strings.IndexByte(email, '@'); at > 0 {
			assignment.Name = email[:at]
		} else {
			assignment.Name = email
		}
	}
	return assignment
}

// ComputeManagedScope returns the external ids of every profile delegated to
// the user with the given email. The hierarchy is one level deep: reports of
// reports are not included. Delegations whose manager id does not resolve to
// the requester are ignored, as are duplicates.
func ComputeManagedScope(email string, profiles []Profile, delegations []Delegation) []string {
	profile := findByEmail(email, profiles)
	if profile == nil {
		return nil
	}
	return ManagedScopeFor(profile.ExternalID, delegations)
}

// ManagedScopeFor returns the external ids delegated to the manager with the
// given external id. Delegation edges are keyed by id, so this resolves for
// profiles without an email too. Duplicates are ignored.
func ManagedScopeFor(managerID string, delegations []Delegation) []string {
	if managerID == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var scope []string
	for _, d := range delegations {
		if d.ManagerID != managerID {
			continue
		}
		if _, ok := seen[d.EmployeeID]; ok {
			continue
		}
		seen[d.EmployeeID] = struct{}{}
		scope = append(scope, d.EmployeeID)
	}
	return scope
}

// CanView reports whether a viewer may see the sensitive fields (salary, KPI
// scorecards) of the target profile. Precedence: self, executive, manager
// with the target in scope, deny.
func CanView(viewer RoleAssignment, targetExternalID string, targetEmail *string) bool {
	if targetEmail != nil && viewer.Email == *targetEmail {
		return true
	}
	if viewer.Role == RoleExecutive {
		return true
	}
	if viewer.Role == RoleManager && viewer.Manages(targetExternalID) {
		return true
	}
	return false
}

// CanEditScorecard applies the CanView precedence with the additional
// requirement that the viewer is an executive or manager. Employees cannot
// edit scorecards, not even their own.
func CanEditScorecard(viewer RoleAssignment, targetExternalID string, targetEmail *string) bool {
	if viewer.Role != RoleExecutive && viewer.Role != RoleManager {
		return false
	}
	return CanView(viewer, targetExternalID, targetEmail)
}

func findByEmail(email string, profiles []Profile) *Profile {
	if email == "" {
		return nil
	}
	for i := range profiles {
		if profiles[i].Email != nil && *profiles[i].Email == email {
			return &profiles[i]
		}
	}
	return nil
}

// FindByExternalID returns the profile with the given external id, or nil.
func FindByExternalID(externalID string, profiles []Profile) *Profile {
	for i := range profiles {
		if profiles[i].ExternalID == externalID {
			return &profiles[i]
		}
	}
	return nil
}
