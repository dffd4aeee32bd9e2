package dto

// JobRequest is the body of job create and update. Omitted fields are left
// unchanged on update.
type JobRequest struct {
	EmployerID     string   `json:"employer_id"`
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	EmploymentType *string  `json:"employment_type"`
	PayMin         *float64 `json:"pay_min"`
	PayMax         *float64 `json:"pay_max"`
	City           *string  `json:"city"`
	State          *string  `json:"state"`
	PostalCode     *string  `json:"postal_code"`
	Country        *string  `json:"country"`
	Skills         []string `json:"skills"`
	Experience     *int     `json:"experience"`
	Openings       *int     `json:"openings"`
	Status         *string  `json:"status"`
}

type CandidateProfileRequest struct {
	Email           string   `json:"email"`
	Password        *string  `json:"password"`
	Name            *string  `json:"name"`
	Phone           *string  `json:"phone"`
	Address         *string  `json:"address"`
	City            *string  `json:"city"`
	State           *string  `json:"state"`
	Country         *string  `json:"country"`
	PostalCode      *string  `json:"postal_code"`
	Headline        *string  `json:"headline"`
	DesiredJobTitle *string  `json:"desired_job_title"`
	Experience      *int     `json:"experience"`
	Skills          []string `json:"skills"`
	PayScale        *float64 `json:"pay_scale"`
	PayType         *string  `json:"pay_type"`
	ResumeLink      *string  `json:"resume_link"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FlagsRequest toggles the integration switches; nil leaves a flag as is.
type FlagsRequest struct {
	IntegrationEnabled   *bool `json:"integration_enabled"`
	ScheduledSyncEnabled *bool `json:"scheduled_sync_enabled"`
}
