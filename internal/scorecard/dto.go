package scorecard

// SaveInput carries the full replacement payload for one employee scorecard.
type SaveInput struct {
	EmployeeID   string           `json:"employee_id" validate:"required"`
	Role         string           `json:"role" validate:"required"`
	Mission      *string          `json:"mission"`
	Outcomes     []OutcomeInput   `json:"outcomes" validate:"dive"`
	Competencies []CompetencyInput `json:"competencies" validate:"dive"`
}

// OutcomeInput is one outcome row in a save payload. Order follows the
// slice; the stored order index is assigned server side.
type OutcomeInput struct {
	Description string   `json:"description" validate:"required"`
	Details     []string `json:"details"`
	Rating      *int     `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comments    *string  `json:"comments"`
}

// CompetencyInput is one competency row in a save payload.
type CompetencyInput struct {
	Competency string  `json:"competency" validate:"required"`
	Rating     *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comments   *string `json:"comments"`
}
