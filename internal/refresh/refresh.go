// Package refresh decides whether a catalog record is due for resolution.
//
// Recently released films churn, so they are resolved on every cycle.
// Within the first year a week between resolutions is enough; older films and
// films with no known release date are revisited every two weeks.
package refresh

import (
	"time"

	"filmbridge/internal/config"
	"filmbridge/internal/film"
)

const day = 24 * time.Hour

// Reasons reported with a Decision.
const (
	ReasonNewRecord      = "new-record"
	ReasonReleaseWindow  = "release-window"
	ReasonStale          = "stale"
	ReasonFreshEnough    = "fresh-enough"
	ReasonUnknownRelease = "unknown-release"
)

// Decision is the outcome of Decide.
type Decision struct {
	Resolve bool
	Reason  string
}

// Policy holds the staleness windows in days.
type Policy struct {
	ReleaseWindowDays   int
	RecentDays          int
	RecentIntervalDays  int
	ArchiveIntervalDays int
}

// DefaultPolicy returns the 90/365/7/14 day windows.
func DefaultPolicy() Policy {
	return Policy{
		ReleaseWindowDays:   90,
		RecentDays:          365,
		RecentIntervalDays:  7,
		ArchiveIntervalDays: 14,
	}
}

// FromConfig builds a Policy from the refresh config section. Unset values
// keep their defaults.
func FromConfig(cfg config.Refresh) Policy {
	p := DefaultPolicy()
	if cfg.ReleaseWindowDays > 0 {
		p.ReleaseWindowDays = cfg.ReleaseWindowDays
	}
	if cfg.RecentDays > 0 {
		p.RecentDays = cfg.RecentDays
	}
	if cfg.RecentIntervalDays > 0 {
		p.RecentIntervalDays = cfg.RecentIntervalDays
	}
	if cfg.ArchiveIntervalDays > 0 {
		p.ArchiveIntervalDays = cfg.ArchiveIntervalDays
	}
	return p
}

// Decide is a pure function of the previously stored record and now.
// Ages are whole days since release; a release in the future counts as
// inside the release window.
func (p Policy) Decide(prev *film.MergedRecord, now time.Time) Decision {
	if prev == nil {
		return Decision{Resolve: true, Reason: ReasonNewRecord}
	}
	sinceStored := now.Sub(prev.StoredAt)

	release, known := prev.Release()
	if !known {
		if sinceStored >= days(p.ArchiveIntervalDays) {
			return Decision{Resolve: true, Reason: ReasonUnknownRelease}
		}
		return Decision{Reason: ReasonFreshEnough}
	}

	age := int(now.Sub(release) / day)
	if age <= p.ReleaseWindowDays {
		return Decision{Resolve: true, Reason: ReasonReleaseWindow}
	}
	interval := p.ArchiveIntervalDays
	if age <= p.RecentDays {
		interval = p.RecentIntervalDays
	}
	if sinceStored >= days(interval) {
		return Decision{Resolve: true, Reason: ReasonStale}
	}
	return Decision{Reason: ReasonFreshEnough}
}

// Decide applies the default policy.
func Decide(prev *film.MergedRecord, now time.Time) Decision {
	return DefaultPolicy().Decide(prev, now)
}

func days(n int) time.Duration {
	return time.Duration(n) * day
}
