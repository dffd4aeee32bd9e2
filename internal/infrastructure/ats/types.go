package ats

// Status codes used by the External ATS for jobs.
const StatusActive = 0

type Skill struct {
	Name string `json:"name"`
}

type SkillRecord struct {
	Name FlexString `json:"name"`
}

// JobPayload is the body of createJob / updateJob. Pointer fields are sparse:
// nil means "not sent".
type JobPayload struct {
	JobID       *string `json:"jobid,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	JobType     string  `json:"jobType"`
	MinPayRate  float64 `json:"minpayrate"`
	MaxPayRate  float64 `json:"maxpayrate"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Country     *string `json:"country,omitempty"`
	Zip         *string `json:"zipcode,omitempty"`
	Status      int     `json:"status"`
	Openings    *int    `json:"openings,omitempty"`
	CompanyID   int64   `json:"companyid"`
	Skills      []Skill `json:"skills,omitempty"`
	Experience  int     `json:"experience"`
}

// JobRecord is a job as returned by SearchJob.
type JobRecord struct {
	ID          FlexString `json:"id"`
	JobID       FlexString `json:"jobid"`
	Title       FlexString `json:"title"`
	Description FlexString `json:"description"`
	JobType     FlexString `json:"jobType"`
	MinPayRate  FlexFloat  `json:"minpayrate"`
	MaxPayRate  FlexFloat  `json:"maxpayrate"`
	Address     FlexString `json:"address"`
	City        FlexString `json:"city"`
	State       FlexString `json:"state"`
	Country     FlexString `json:"country"`
	Zip         FlexString `json:"zipcode"`
	Status      FlexInt    `json:"status"`
	Openings    FlexInt    `json:"openings"`
	CompanyID   FlexString `json:"companyid"`
	Skills      []SkillRecord `json:"skills"`
	Experience  FlexInt       `json:"experience"`
}

// Identifier returns whichever of id / jobid the endpoint filled in.
func (r JobRecord) Identifier() string {
	if r.ID != "" {
		return r.ID.String()
	}
	return r.JobID.String()
}

type CandidatePayload struct {
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	Email             string  `json:"email,omitempty"`
	CellPhone         string  `json:"cellphone,omitempty"`
	Address1          string  `json:"address1,omitempty"`
	City              string  `json:"city,omitempty"`
	State             string  `json:"state,omitempty"`
	ZipCode           string  `json:"zipCode,omitempty"`
	CountryID         string  `json:"countryid,omitempty"`
	YearsOfExperience int     `json:"yearsofexperience"`
	CurrentSalary     float64 `json:"currentsalary"`
	CurrentSalaryUnit string  `json:"currentsalaryunit"`
	Narrative         string  `json:"narrative,omitempty"`
}

// CandidateRecord is a candidate as returned by searchCandidateProfile.
// encoding/json matches keys case-insensitively, which absorbs the API's
// inconsistent casing (zipCode / zipcode / ZIPCODE).
type CandidateRecord struct {
	ID                FlexString `json:"id"`
	CandidateID       FlexString `json:"candidateid"`
	FirstName         FlexString `json:"firstName"`
	MiddleInitial     FlexString `json:"middleInitial"`
	LastName          FlexString `json:"lastName"`
	Email             FlexString `json:"email"`
	Phone1            FlexString `json:"phone1"`
	Phone2            FlexString `json:"phone2"`
	Phone3            FlexString `json:"phone3"`
	Address1          FlexString `json:"address1"`
	City              FlexString `json:"city"`
	State             FlexString `json:"state"`
	ZipCode           FlexString `json:"zipCode"`
	CountryID         FlexString `json:"countryid"`
	CurrentSalary     FlexFloat  `json:"currentsalary"`
	CurrentSalaryUnit FlexString `json:"currentsalaryunit"`
	Narrative         FlexString `json:"narrative"`
}

func (r CandidateRecord) Identifier() string {
	if r.ID != "" {
		return r.ID.String()
	}
	return r.CandidateID.String()
}

type CompanyPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type CompanyRecord struct {
	ID        FlexString `json:"id"`
	CompanyID FlexString `json:"companyid"`
	Name      string     `json:"name"`
}

func (r CompanyRecord) Identifier() string {
	if r.ID != "" {
		return r.ID.String()
	}
	return r.CompanyID.String()
}
