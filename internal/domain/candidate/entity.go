package candidate

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("candidate not found")
	ErrEmailDuplicate = errors.New("candidate email already exists")
)

type Candidate struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Country         string    `json:"country"`
	PostalCode      string    `json:"postal_code"`
	Headline        string    `json:"headline"`
	DesiredJobTitle string    `json:"desired_job_title"`
	Experience      int       `json:"experience"`
	Skills          []string  `json:"skills"`
	PayScale        *float64  `json:"pay_scale,omitempty"`
	PayType         string    `json:"pay_type"`
	ResumeLink      *string   `json:"resume_link,omitempty"`
	PasswordHash    string    `json:"-"`
	ExternalID      *string   `json:"external_id,omitempty"`
	ExternalSource  *string   `json:"external_source,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c Candidate) IsSynced() bool {
	return c.ExternalID != nil && strings.TrimSpace(*c.ExternalID) != ""
}

func (c *Candidate) MarkSynced(externalID, source string) {
	id := strings.TrimSpace(externalID)
	src := strings.TrimSpace(source)
	c.ExternalID = &id
	c.ExternalSource = &src
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
