package mapping

import (
	"encoding/json"
	"testing"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/job"
	"ats-sync/internal/infrastructure/ats"
)

func ptr[T any](v T) *T { return &v }

func TestJobToExternal_EngineerContract(t *testing.T) {
	et := job.Contract
	j := job.Job{
		Title:          ptr("Engineer"),
		EmploymentType: &et,
		PayRange:       &job.PayRange{Min: ptr(50000.0), Max: ptr(80000.0)},
		Location:       &job.Location{City: ptr("Austin")},
		Status:         job.StatusPaused,
	}

	p := JobToExternal(j)
	p.CompanyID = 42

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := map[string]any{
		"title":      "Engineer",
		"jobType":    "CONTRACT",
		"minpayrate": 50000.0,
		"maxpayrate": 80000.0,
		"city":       "Austin",
		"status":     0.0,
		"companyid":  42.0,
		"experience": 0.0,
	}
	if len(got) != len(want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s: expected %v, got %v", k, v, got[k])
		}
	}
}

func TestJobToExternal_DefaultsWhenAbsent(t *testing.T) {
	p := JobToExternal(job.Job{})
	if p.JobType != JobTypeFullTime {
		t.Fatalf("expected FULL_TIME, got %q", p.JobType)
	}
	if p.MinPayRate != 0 || p.MaxPayRate != 0 || p.Experience != 0 {
		t.Fatalf("expected zero pay and experience, got %+v", p)
	}
	if p.Title != nil || p.City != nil || p.Openings != nil || p.Skills != nil {
		t.Fatalf("expected sparse payload, got %+v", p)
	}
	if p.Status != ats.StatusActive {
		t.Fatalf("expected active status, got %d", p.Status)
	}
}

func TestJobPatch_ClearedFieldIsSentEmpty(t *testing.T) {
	j := job.Job{Description: ptr("   ")}
	p := JobToExternal(j)
	if p.Description == nil || *p.Description != "" {
		t.Fatalf("expected explicit empty description, got %v", p.Description)
	}
}

func TestEmploymentType_RoundTrip(t *testing.T) {
	for _, et := range []job.EmploymentType{job.FullTime, job.PartTime, job.Contract, job.Temporary, job.Internship} {
		code := EmploymentTypeCode(&et)
		if got := EmploymentTypeFromCode(code); got != et {
			t.Fatalf("%s: round trip via %s gave %s", et, code, got)
		}
	}

	unknown := job.EmploymentType("Freelance")
	if got := EmploymentTypeCode(&unknown); got != JobTypeFullTime {
		t.Fatalf("expected FULL_TIME for unknown, got %s", got)
	}
	if got := EmploymentTypeFromCode("SEASONAL"); got != job.FullTime {
		t.Fatalf("expected Full-time for unknown code, got %s", got)
	}
	if got := EmploymentTypeFromCode(""); got != job.FullTime {
		t.Fatalf("expected Full-time for empty code, got %s", got)
	}
}

func TestJobFromExternal(t *testing.T) {
	var r ats.JobRecord
	body := `{"jobid":901,"title":"Nurse","jobType":"PART_TIME","minpayrate":"30","maxpayrate":45.5,
		"city":"Denver","state":"CO","status":0,"openings":"2","skills":[{"name":"Triage"},{"name":" "}],"experience":null}`
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	j := JobFromExternal(r)
	if j.ExternalID == nil || *j.ExternalID != "901" {
		t.Fatalf("expected external id 901, got %v", j.ExternalID)
	}
	if j.ExternalSource == nil || *j.ExternalSource != domain.ExternalSourceATS {
		t.Fatalf("expected external source set, got %v", j.ExternalSource)
	}
	if j.EmploymentType == nil || *j.EmploymentType != job.PartTime {
		t.Fatalf("expected Part-time, got %v", j.EmploymentType)
	}
	if j.PayRange == nil || *j.PayRange.Min != 30 || *j.PayRange.Max != 45.5 {
		t.Fatalf("unexpected pay range %+v", j.PayRange)
	}
	if j.Location == nil || *j.Location.City != "Denver" || j.Location.Country != nil {
		t.Fatalf("unexpected location %+v", j.Location)
	}
	if j.Status != job.StatusOpen {
		t.Fatalf("expected Open, got %s", j.Status)
	}
	if len(j.Skills) != 1 || j.Skills[0] != "Triage" {
		t.Fatalf("unexpected skills %v", j.Skills)
	}
	if j.Openings == nil || *j.Openings != 2 {
		t.Fatalf("expected 2 openings, got %v", j.Openings)
	}
	if j.ID != SyntheticID("job", "901") {
		t.Fatalf("expected synthetic id")
	}
}

func TestJobSearchFilter(t *testing.T) {
	got := JobSearchFilter(JobCriteria{Title: " Engineer ", State: "TX", City: "  "})
	if len(got) != 2 {
		t.Fatalf("expected 2 keys, got %v", got)
	}
	if got["title"] != "Engineer" {
		t.Fatalf("unexpected title %v", got["title"])
	}
	states, ok := got["state"].([]string)
	if !ok || len(states) != 1 || states[0] != "TX" {
		t.Fatalf("expected state list, got %#v", got["state"])
	}
	if _, ok := got["city"]; ok {
		t.Fatalf("blank city must be omitted")
	}

	if got := JobSearchFilter(JobCriteria{}); len(got) != 0 {
		t.Fatalf("expected empty filter, got %v", got)
	}
}
