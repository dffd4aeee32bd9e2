package mapping

import (
	"strings"

	"github.com/google/uuid"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/job"
	"ats-sync/internal/infrastructure/ats"
)

const (
	JobTypeFullTime   = "FULL_TIME"
	JobTypePartTime   = "PART_TIME"
	JobTypeContract   = "CONTRACT"
	JobTypeTemporary  = "TEMPORARY"
	JobTypeInternship = "INTERNSHIP"
)

var employmentTypeToCode = map[string]string{
	strings.ToLower(string(job.FullTime)):   JobTypeFullTime,
	strings.ToLower(string(job.PartTime)):   JobTypePartTime,
	strings.ToLower(string(job.Contract)):   JobTypeContract,
	strings.ToLower(string(job.Temporary)):  JobTypeTemporary,
	strings.ToLower(string(job.Internship)): JobTypeInternship,
}

var codeToEmploymentType = map[string]job.EmploymentType{
	JobTypeFullTime:   job.FullTime,
	JobTypePartTime:   job.PartTime,
	JobTypeContract:   job.Contract,
	JobTypeTemporary:  job.Temporary,
	JobTypeInternship: job.Internship,
}

// EmploymentTypeCode maps a local employment type to the ATS code.
// Unknown or missing types map to FULL_TIME.
func EmploymentTypeCode(t *job.EmploymentType) string {
	if t == nil {
		return JobTypeFullTime
	}
	if code, ok := employmentTypeToCode[strings.ToLower(strings.TrimSpace(string(*t)))]; ok {
		return code
	}
	return JobTypeFullTime
}

// EmploymentTypeFromCode maps an ATS code to the local type. Unknown codes
// map to Full-time.
func EmploymentTypeFromCode(code string) job.EmploymentType {
	if t, ok := codeToEmploymentType[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return t
	}
	return job.FullTime
}

// JobPatch is the partial view of a local job that gets sent to the ATS.
type JobPatch struct {
	Title          Field[string]
	Description    Field[string]
	EmploymentType Field[job.EmploymentType]
	MinPay         Field[float64]
	MaxPay         Field[float64]
	City           Field[string]
	State          Field[string]
	PostalCode     Field[string]
	Country        Field[string]
	Skills         Field[[]string]
	Experience     Field[int]
	Openings       Field[int]
}

func NewJobPatch(j job.Job) JobPatch {
	p := JobPatch{
		Title:          Text(j.Title),
		Description:    Text(j.Description),
		EmploymentType: FromPtr(j.EmploymentType),
		Experience:     FromPtr(j.Experience),
		Openings:       FromPtr(j.Openings),
	}
	if j.PayRange != nil {
		p.MinPay = FromPtr(j.PayRange.Min)
		p.MaxPay = FromPtr(j.PayRange.Max)
	}
	if j.Location != nil {
		p.City = Text(j.Location.City)
		p.State = Text(j.Location.State)
		p.PostalCode = Text(j.Location.PostalCode)
		p.Country = Text(j.Location.Country)
	}
	if j.Skills != nil {
		p.Skills = Set(j.Skills)
	}
	return p
}

// Payload renders the patch. Absent fields are omitted except pay rates and
// experience, which default to 0. Status is always sent as active; the
// company id is filled in by the caller after company resolution.
func (p JobPatch) Payload() ats.JobPayload {
	out := ats.JobPayload{
		Title:       textPtr(p.Title),
		Description: textPtr(p.Description),
		MinPayRate:  p.MinPay.Or(0),
		MaxPayRate:  p.MaxPay.Or(0),
		City:        textPtr(p.City),
		State:       textPtr(p.State),
		Zip:         textPtr(p.PostalCode),
		Country:     textPtr(p.Country),
		Status:      ats.StatusActive,
		Experience:  p.Experience.Or(0),
	}

	if t, ok := p.EmploymentType.Get(); ok {
		out.JobType = EmploymentTypeCode(&t)
	} else {
		out.JobType = EmploymentTypeCode(nil)
	}

	if n, ok := p.Openings.Get(); ok {
		out.Openings = &n
	}

	if skills, ok := p.Skills.Get(); ok {
		out.Skills = make([]ats.Skill, 0, len(skills))
		for _, s := range skills {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			out.Skills = append(out.Skills, ats.Skill{Name: s})
		}
	}

	return out
}

func JobToExternal(j job.Job) ats.JobPayload {
	return NewJobPatch(j).Payload()
}

// JobFromExternal converts a search result into a local job carrying the
// external reference. The local id is a stable synthetic id derived from the
// external id.
func JobFromExternal(r ats.JobRecord) job.Job {
	extID := r.Identifier()
	et := EmploymentTypeFromCode(r.JobType.String())

	out := job.Job{
		ID:             SyntheticID("job", extID),
		Title:          strPtr(r.Title.String()),
		Description:    strPtr(r.Description.String()),
		EmploymentType: &et,
		Skills:         make([]string, 0, len(r.Skills)),
		Status:         job.StatusClosed,
	}
	if int(r.Status) == ats.StatusActive {
		out.Status = job.StatusOpen
	}

	if r.MinPayRate > 0 || r.MaxPayRate > 0 {
		minPay, maxPay := float64(r.MinPayRate), float64(r.MaxPayRate)
		out.PayRange = &job.PayRange{Min: &minPay, Max: &maxPay}
	}

	loc := job.Location{
		City:       strPtr(r.City.String()),
		State:      strPtr(r.State.String()),
		PostalCode: strPtr(r.Zip.String()),
		Country:    strPtr(r.Country.String()),
	}
	if loc.City != nil || loc.State != nil || loc.PostalCode != nil || loc.Country != nil {
		out.Location = &loc
	}

	for _, s := range r.Skills {
		if name := s.Name.String(); name != "" {
			out.Skills = append(out.Skills, name)
		}
	}

	exp := int(r.Experience)
	out.Experience = &exp
	if r.Openings > 0 {
		n := int(r.Openings)
		out.Openings = &n
	}

	if extID != "" {
		out.MarkSynced(extID, domain.ExternalSourceATS)
	}
	return out
}

type JobCriteria struct {
	PostalCode string
	Title      string
	Country    string
	City       string
	State      string
}

// JobSearchFilter builds the SearchJob body. Only non-blank criteria are
// sent; state goes as a one-element list because that is what the search
// endpoint expects for that field.
func JobSearchFilter(c JobCriteria) map[string]any {
	out := map[string]any{}
	if v := strings.TrimSpace(c.PostalCode); v != "" {
		out["zipcode"] = v
	}
	if v := strings.TrimSpace(c.Title); v != "" {
		out["title"] = v
	}
	if v := strings.TrimSpace(c.Country); v != "" {
		out["country"] = v
	}
	if v := strings.TrimSpace(c.City); v != "" {
		out["city"] = v
	}
	if v := strings.TrimSpace(c.State); v != "" {
		out["state"] = []string{v}
	}
	return out
}

// SyntheticID derives a stable local id for a record first seen in the ATS.
func SyntheticID(kind, externalID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("ats:"+kind+":"+strings.TrimSpace(externalID)))
}
