package job

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("job not found")

type EmploymentType string

const (
	FullTime   EmploymentType = "Full-time"
	PartTime   EmploymentType = "Part-time"
	Contract   EmploymentType = "Contract"
	Temporary  EmploymentType = "Temporary"
	Internship EmploymentType = "Internship"
)

// ParseEmploymentType matches case-insensitively against the known types.
func ParseEmploymentType(s string) (EmploymentType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range []EmploymentType{FullTime, PartTime, Contract, Temporary, Internship} {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

type Status string

const (
	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
	StatusPaused Status = "Paused"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.TrimSpace(s)) {
	case StatusOpen:
		return StatusOpen, true
	case StatusClosed:
		return StatusClosed, true
	case StatusPaused:
		return StatusPaused, true
	}
	return "", false
}

type PayRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type Location struct {
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
}

type Job struct {
	ID             uuid.UUID       `json:"id"`
	EmployerID     uuid.UUID       `json:"employer_id"`
	Title          *string         `json:"title,omitempty"`
	Description    *string         `json:"description,omitempty"`
	EmploymentType *EmploymentType `json:"employment_type,omitempty"`
	PayRange       *PayRange       `json:"pay_range,omitempty"`
	Location       *Location       `json:"location,omitempty"`
	Skills         []string        `json:"skills"`
	Experience     *int            `json:"experience,omitempty"`
	Openings       *int            `json:"openings,omitempty"`
	Status         Status          `json:"status"`
	ExternalID     *string         `json:"external_id,omitempty"`
	ExternalSource *string         `json:"external_source,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsSynced reports whether the job has a counterpart in an external system.
func (j Job) IsSynced() bool {
	return j.ExternalID != nil && strings.TrimSpace(*j.ExternalID) != ""
}

// MarkSynced sets the external id and source together; the pair is never
// set independently.
func (j *Job) MarkSynced(externalID, source string) {
	id := strings.TrimSpace(externalID)
	src := strings.TrimSpace(source)
	j.ExternalID = &id
	j.ExternalSource = &src
}

// Employer owns jobs. ExternalCompanyID caches the company id assigned by
// the External ATS.
type Employer struct {
	ID                uuid.UUID `json:"id"`
	CompanyName       string    `json:"company_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	State             string    `json:"state"`
	Country           string    `json:"country"`
	ExternalCompanyID *int64    `json:"external_company_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
