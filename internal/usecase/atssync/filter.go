package atssync

import (
	"strings"

	"ats-sync/internal/domain/job"
)

// matchesPay keeps jobs whose pay range overlaps [minPay, maxPay]. A job without
// any pay information never matches an active pay filter.
func matchesPay(j job.Job, minPay, maxPay *float64) bool {
	if minPay == nil && maxPay == nil {
		return true
	}
	if j.PayRange == nil || (j.PayRange.Min == nil && j.PayRange.Max == nil) {
		return false
	}

	lo, hi := bounds(j.PayRange)
	if minPay != nil && hi < *minPay {
		return false
	}
	if maxPay != nil && lo > *maxPay {
		return false
	}
	return true
}

func bounds(p *job.PayRange) (lo, hi float64) {
	switch {
	case p.Min != nil && p.Max != nil:
		lo, hi = *p.Min, *p.Max
	case p.Min != nil:
		lo, hi = *p.Min, *p.Min
	default:
		lo, hi = *p.Max, *p.Max
	}
	// 0 is how the ATS reports an unset maximum.
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// matchesQuery does a case-insensitive substring match of q against status,
// city, state, country and title.
func matchesQuery(j job.Job, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}

	fields := []string{string(j.Status), deref(j.Title)}
	if j.Location != nil {
		fields = append(fields, deref(j.Location.City), deref(j.Location.State), deref(j.Location.Country))
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
