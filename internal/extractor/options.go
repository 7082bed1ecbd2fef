package extractor

import "time"

// Options configures the behaviors that differed between page revisions.
type Options struct {
	// SummaryMarkers lists label fragments for which the statement summary
	// balance is trusted. A nil slice means the default set.
	SummaryMarkers []string
	// IncludeDeposits keeps statement rows described as deposits.
	IncludeDeposits bool
	// StatementFallback rescans with the main page layout when the statement scan finds nothing.
	StatementFallback bool
	// DefaultAccountLabel is used when no heading, summary or table id names the account.
	DefaultAccountLabel string
	// Location is the zone statement dates are interpreted in.
	Location *time.Location
	// Now is the extraction clock.
	Now func() time.Time
}

// DefaultSummaryMarkers trusts the summary block for meal plan accounts only.
var DefaultSummaryMarkers = []string{"meal plan"}

// DefaultOptions returns the behavior of the current statement pages.
func DefaultOptions() Options {
	return Options{
		SummaryMarkers:    DefaultSummaryMarkers,
		IncludeDeposits:   true,
		StatementFallback: true,
		Location:          time.Local,
		Now:               time.Now,
	}
}

func (o Options) withDefaults() Options {
	if o.SummaryMarkers == nil {
		o.SummaryMarkers = DefaultSummaryMarkers
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) trustsSummary(accountName string) bool {
	for _, m := range o.SummaryMarkers {
		if m != "" && containsFold(accountName, m) {
			return true
		}
	}
	return false
}
