package seeder

import (
	"testing"

	"ats-sync/internal/domain/job"
)

func TestSeedJobsReferenceSeededEmployers(t *testing.T) {
	employers := map[string]bool{}
	for _, e := range seedEmployers {
		employers[e.Name] = true
	}
	for _, j := range seedJobs {
		if !employers[j.Employer] {
			t.Fatalf("job %q references unknown employer %q", j.Title, j.Employer)
		}
		if _, ok := job.ParseEmploymentType(j.EmploymentType); !ok {
			t.Fatalf("job %q has invalid employment type %q", j.Title, j.EmploymentType)
		}
	}
}

func TestSeedIDIsStable(t *testing.T) {
	if seedID("employer", "Acme Robotics") != seedID("employer", "Acme Robotics") {
		t.Fatal("seed ids must be deterministic")
	}
	if seedID("employer", "Acme Robotics") == seedID("job", "Acme Robotics") {
		t.Fatal("seed ids must differ by kind")
	}
}
