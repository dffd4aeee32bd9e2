package mapping

import (
	"encoding/json"
	"testing"

	"ats-sync/internal/domain/candidate"
	"ats-sync/internal/infrastructure/ats"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Mary Ann  van Dyke", "Mary", "Ann van Dyke"},
		{"Cher", "Cher", UnknownLastName},
		{"   ", "", UnknownLastName},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		if first != tt.first || last != tt.last {
			t.Fatalf("%q: expected (%q,%q), got (%q,%q)", tt.in, tt.first, tt.last, first, last)
		}
	}
}

func TestCandidateToExternal(t *testing.T) {
	c := candidate.Candidate{
		Name:       "Grace Hopper",
		Email:      " Grace@Example.com ",
		Phone:      "5551234567",
		City:       "Arlington",
		State:      "VA",
		Country:    "United States",
		PostalCode: "22201",
		Headline:   "Compiler pioneer",
		Experience: 12,
	}

	p := CandidateToExternal(c)
	if p.FirstName != "Grace" || p.LastName != "Hopper" {
		t.Fatalf("unexpected name split %q %q", p.FirstName, p.LastName)
	}
	if p.Email != "grace@example.com" {
		t.Fatalf("expected normalized email, got %q", p.Email)
	}
	if p.CountryID != "United States" {
		t.Fatalf("expected free-text country in countryid, got %q", p.CountryID)
	}
	if p.ZipCode != "22201" || p.CellPhone != "5551234567" || p.Narrative != "Compiler pioneer" {
		t.Fatalf("unexpected payload %+v", p)
	}
	if p.CurrentSalary != 0 || p.CurrentSalaryUnit != DefaultSalaryUnit {
		t.Fatalf("expected salary defaults, got %v %q", p.CurrentSalary, p.CurrentSalaryUnit)
	}

	pay := 95000.0
	c.PayScale = &pay
	c.PayType = "hourly"
	p = CandidateToExternal(c)
	if p.CurrentSalary != 95000 || p.CurrentSalaryUnit != "hourly" {
		t.Fatalf("expected salary fields, got %v %q", p.CurrentSalary, p.CurrentSalaryUnit)
	}
}

func TestExtractPhone_PriorityOrder(t *testing.T) {
	r := ats.CandidateRecord{
		Phone3: "not a phone",
		Phone2: "Call: 5551234567 ext 2",
		Phone1: "000-000-0000 (invalid, 9 digits)",
	}
	if got := ExtractPhone(r.Phone3.String(), r.Phone2.String(), r.Phone1.String()); got != "5551234567" {
		t.Fatalf("expected 5551234567, got %q", got)
	}
	if got := CandidateFromExternal(r).Phone; got != "5551234567" {
		t.Fatalf("expected mapped phone 5551234567, got %q", got)
	}
	if got := ExtractPhone("", "n/a", "123-456"); got != "" {
		t.Fatalf("expected empty phone, got %q", got)
	}
}

func TestCandidateFromExternal(t *testing.T) {
	body := `{"CandidateId":"77","FirstName":"Alan","middleInitial":"M","LASTNAME":"Turing",
		"Email":"ALAN@EXAMPLE.COM","zipcode":"10001","CurrentSalary":"120000","narrative":"Codebreaker"}`
	var r ats.CandidateRecord
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	c := CandidateFromExternal(r)
	if c.Name != "Alan M Turing" {
		t.Fatalf("unexpected name %q", c.Name)
	}
	if c.Email != "alan@example.com" {
		t.Fatalf("unexpected email %q", c.Email)
	}
	if c.PostalCode != "10001" || c.Headline != "Codebreaker" {
		t.Fatalf("unexpected fields %+v", c)
	}
	if c.PayScale == nil || *c.PayScale != 120000 {
		t.Fatalf("unexpected pay scale %v", c.PayScale)
	}
	if c.Experience != 0 || c.DesiredJobTitle != "" || c.Skills == nil || len(c.Skills) != 0 {
		t.Fatalf("expected zeroed fields without ATS counterpart, got %+v", c)
	}
	if c.ExternalID == nil || *c.ExternalID != "77" {
		t.Fatalf("expected external id 77, got %v", c.ExternalID)
	}
	if c.ID != SyntheticID("candidate", "77") {
		t.Fatalf("expected synthetic id")
	}
}

func TestCandidateSearchFilter(t *testing.T) {
	got := CandidateSearchFilter(CandidateCriteria{Name: "Ada Lovelace", Email: "ADA@x.io", State: "NY"})
	if got["firstName"] != "Ada" || got["lastName"] != "Lovelace" || got["email"] != "ada@x.io" {
		t.Fatalf("unexpected filter %v", got)
	}
	if _, ok := got["city"]; ok {
		t.Fatalf("absent criteria must be omitted")
	}
	if got := CandidateSearchFilter(CandidateCriteria{Name: "Cher"}); len(got) != 1 {
		t.Fatalf("expected only firstName, got %v", got)
	}
}

func TestCandidateFromExternal_NumericPhoneAndZip(t *testing.T) {
	var r ats.CandidateRecord
	if err := json.Unmarshal([]byte(`{"id":5,"firstName":"Ann","lastName":"Lee","zipCode":78701,"phone3":5551234567}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	c := CandidateFromExternal(r)
	if c.PostalCode != "78701" || c.Phone != "5551234567" {
		t.Fatalf("expected zip and phone from numbers, got %q %q", c.PostalCode, c.Phone)
	}
}
