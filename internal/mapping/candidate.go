package mapping

import (
	"regexp"
	"strings"

	"ats-sync/internal/domain"
	"ats-sync/internal/domain/candidate"
	"ats-sync/internal/infrastructure/ats"
)

const (
	UnknownLastName   = "Unknown"
	DefaultSalaryUnit = "yearly"
)

var tenDigits = regexp.MustCompile(`\d{10}`)

// SplitName splits on the first whitespace run. The remaining words become
// the last name, single-space joined.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", UnknownLastName
	}
	if len(parts) == 1 {
		return parts[0], UnknownLastName
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// CandidateToExternal maps a local candidate for createCandidate and the
// update endpoint. countryid receives the free-text country: the ATS field is
// id-typed but accepts the name, and that is what it has always been sent.
func CandidateToExternal(c candidate.Candidate) ats.CandidatePayload {
	first, last := SplitName(c.Name)

	out := ats.CandidatePayload{
		FirstName:         first,
		LastName:          last,
		Email:             candidate.NormalizeEmail(c.Email),
		CellPhone:         strings.TrimSpace(c.Phone),
		Address1:          strings.TrimSpace(c.Address),
		City:              strings.TrimSpace(c.City),
		State:             strings.TrimSpace(c.State),
		ZipCode:           strings.TrimSpace(c.PostalCode),
		CountryID:         strings.TrimSpace(c.Country),
		YearsOfExperience: c.Experience,
		CurrentSalary:     0,
		CurrentSalaryUnit: DefaultSalaryUnit,
		Narrative:         strings.TrimSpace(c.Headline),
	}
	if c.PayScale != nil {
		out.CurrentSalary = *c.PayScale
	}
	if u := strings.TrimSpace(c.PayType); u != "" {
		out.CurrentSalaryUnit = u
	}
	return out
}

// ExtractPhone returns the first 10-digit run found scanning the candidates
// in order, or "" when none has one.
func ExtractPhone(candidates ...string) string {
	for _, v := range candidates {
		if m := tenDigits.FindString(v); m != "" {
			return m
		}
	}
	return ""
}

// CandidateFromExternal rebuilds a local candidate from a search result.
// Experience, desired title and skills have no ATS counterpart and come back
// zeroed.
func CandidateFromExternal(r ats.CandidateRecord) candidate.Candidate {
	extID := r.Identifier()

	nameParts := make([]string, 0, 3)
	for _, p := range []string{r.FirstName.String(), r.MiddleInitial.String(), r.LastName.String()} {
		if p = strings.TrimSpace(p); p != "" {
			nameParts = append(nameParts, p)
		}
	}

	out := candidate.Candidate{
		ID:              SyntheticID("candidate", extID),
		Name:            strings.Join(nameParts, " "),
		Email:           candidate.NormalizeEmail(r.Email.String()),
		Phone:           ExtractPhone(r.Phone3.String(), r.Phone2.String(), r.Phone1.String()),
		Address:         r.Address1.String(),
		City:            r.City.String(),
		State:           r.State.String(),
		Country:         r.CountryID.String(),
		PostalCode:      r.ZipCode.String(),
		Headline:        r.Narrative.String(),
		DesiredJobTitle: "",
		Experience:      0,
		Skills:          []string{},
		PayType:         r.CurrentSalaryUnit.String(),
	}
	if r.CurrentSalary > 0 {
		v := float64(r.CurrentSalary)
		out.PayScale = &v
	}
	if extID != "" {
		out.MarkSynced(extID, domain.ExternalSourceATS)
	}
	return out
}

type CandidateCriteria struct {
	Name       string
	Email      string
	City       string
	State      string
	Country    string
	PostalCode string
}

func CandidateSearchFilter(c CandidateCriteria) map[string]any {
	out := map[string]any{}
	if v := strings.TrimSpace(c.Name); v != "" {
		first, last := SplitName(v)
		out["firstName"] = first
		if last != UnknownLastName {
			out["lastName"] = last
		}
	}
	if v := candidate.NormalizeEmail(c.Email); v != "" {
		out["email"] = v
	}
	if v := strings.TrimSpace(c.City); v != "" {
		out["city"] = v
	}
	if v := strings.TrimSpace(c.State); v != "" {
		out["state"] = []string{v}
	}
	if v := strings.TrimSpace(c.Country); v != "" {
		out["countryid"] = v
	}
	if v := strings.TrimSpace(c.PostalCode); v != "" {
		out["zipcode"] = v
	}
	return out
}
