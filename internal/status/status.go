// Package status turns registration and renewal evidence into a verdict.
package status

import "context"

// Legal-regime constants. They are not tuning knobs; they change only when the
// law does.
const (
	// PublicDomainTermYears is how long a work stays protected after publication.
	PublicDomainTermYears = 95
	// RenewalRequirementEndYear is the first registration year that no longer
	// needed a renewal filing to stay in force.
	RenewalRequirementEndYear = 1964
)

// Status is one of the fixed verdicts below.
type Status string

const (
	NoInput                  Status = "no input"
	UnknownNoRecordNoDate    Status = "unknown, no record, no date"
	LikelyPublicDomain       Status = "likely public domain, unverified (no record)"
	PotentiallyPublicDomain  Status = "potentially public domain (no record)"
	ManualCheckRequired      Status = "manual check required (record found, no date)"
	PublicDomainExpired      Status = "public domain (published >95 years ago)"
	CopyrightedAfterRenewals Status = "copyrighted (published 1964 or later)"
	CopyrightedRenewed       Status = "copyrighted (renewed)"
	PublicDomainNotRenewed   Status = "public domain (not renewed)"
)

// All lists every status in decision-table order.
var All = []Status{
	NoInput,
	UnknownNoRecordNoDate,
	LikelyPublicDomain,
	PotentiallyPublicDomain,
	ManualCheckRequired,
	PublicDomainExpired,
	CopyrightedAfterRenewals,
	CopyrightedRenewed,
	PublicDomainNotRenewed,
}

// Category groups statuses for summaries.
type Category string

const (
	CategoryPublicDomain Category = "public domain"
	CategoryCopyrighted  Category = "copyrighted"
	CategoryUndetermined Category = "undetermined"
)

// Category returns the coarse grouping for s.
func (s Status) Category() Category {
	switch s {
	case PublicDomainExpired, PublicDomainNotRenewed, LikelyPublicDomain, PotentiallyPublicDomain:
		return CategoryPublicDomain
	case CopyrightedAfterRenewals, CopyrightedRenewed:
		return CategoryCopyrighted
	default:
		return CategoryUndetermined
	}
}

// Valid reports whether s is one of the fixed statuses.
func (s Status) Valid() bool {
	for _, known := range All {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// PublicDomainYear is the first publication year still under protection in
// currentYear; anything published earlier has expired.
func PublicDomainYear(currentYear int) int {
	return currentYear - PublicDomainTermYears
}

// Evidence is what the registration search produced.
type Evidence struct {
	// Matched is true when a registration entry cleared the match threshold.
	Matched bool
	// RegistrationNumber of the matched entry.
	RegistrationNumber string
	// MatchYear is the matched entry's registration year, nil when the entry
	// carried no usable date.
	MatchYear *int
	// QueryYear is the caller's publication year, nil when unknown.
	QueryYear *int
}

// RenewalChecker answers whether a registration was renewed.
type RenewalChecker interface {
	Renewed(ctx context.Context, regNum string, regYear int) (bool, error)
}

// Decision is a verdict plus whether the renewal corpus was consulted.
type Decision struct {
	Status           Status
	PublicDomainYear int
	RenewalChecked   bool
	Renewed          bool
}

// Decide evaluates the decision table for ev in currentYear. The renewal
// checker is only called for registrations in the renewal era.
func Decide(ctx context.Context, ev Evidence, currentYear int, renewals RenewalChecker) (Decision, error) {
	d := Decision{PublicDomainYear: PublicDomainYear(currentYear)}

	if !ev.Matched {
		switch {
		case ev.QueryYear == nil:
			d.Status = UnknownNoRecordNoDate
		case *ev.QueryYear < d.PublicDomainYear:
			d.Status = LikelyPublicDomain
		default:
			d.Status = PotentiallyPublicDomain
		}
		return d, nil
	}

	switch {
	case ev.MatchYear == nil:
		d.Status = ManualCheckRequired
	case *ev.MatchYear < d.PublicDomainYear:
		d.Status = PublicDomainExpired
	case *ev.MatchYear >= RenewalRequirementEndYear:
		d.Status = CopyrightedAfterRenewals
	default:
		renewed, err := renewals.Renewed(ctx, ev.RegistrationNumber, *ev.MatchYear)
		if err != nil {
			return d, err
		}
		d.RenewalChecked = true
		d.Renewed = renewed
		if renewed {
			d.Status = CopyrightedRenewed
		} else {
			d.Status = PublicDomainNotRenewed
		}
	}
	return d, nil
}
