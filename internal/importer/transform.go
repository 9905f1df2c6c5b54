package importer

import (
	"github.com/teamdeck/teamdeck/internal/directory"
	"github.com/teamdeck/teamdeck/internal/workspace"
)

// transformRecord maps one workspace record onto a directory profile. Absent
// or mistyped properties yield nil fields rather than errors; the source
// schema drifts and a partial profile is still worth storing.
func transformRecord(rec workspace.Record) directory.Profile {
	props := rec.Properties
	p := directory.Profile{
		ExternalID: rec.ID,
		Name:       props["Name"].String(),
		Position:   strPtr(props["Position"].String()),
		Email:      strPtr(props["Email"].String()),
		Phone:      strPtr(props["Phone"].String()),
		Level:      strPtr(props["Level"].String()),
		Step:       strPtr(props["Step"].String()),
		Team:       props["Team"].StringList(),
		Skills:     props["Skills"].StringList(),
		Tags:       props["Tags"].StringList(),
		Groups:     props["Group"].StringList(),
		Timezone:   strPtr(props["Timezone"].String()),
		ReportsTo:  props["Reports to"].StringList(),
		Manages:    props["Manages"].StringList(),
		Tenure:     strPtr(props["Tenure"].String()),
	}

	if v, ok := props["Base Salary"].Float(); ok {
		p.BaseSalary = &v
	}
	if v, ok := props["Billable Rate"].Float(); ok {
		p.BillableRate = &v
	}
	if v, ok := props["Location Factor"].Float(); ok {
		p.LocationFactor = &v
	}
	if v, ok := props["Step Factor"].Float(); ok {
		p.StepFactor = &v
	}
	if v, ok := props["Level Factor"].Float(); ok {
		p.LevelFactor = &v
	}
	if v, ok := props["Total Salary"].Float(); ok {
		p.TotalSalary = &v
	}
	if t, ok := props["Start Date"].Time(); ok {
		p.StartDate = &t
	}
	return p
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
