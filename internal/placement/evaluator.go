// Package placement decides whether a single advertisement may be shown for a
// request. Everything here is pure: no I/O, no clock reads, no logging.
//
// Optional fields that are missing or malformed impose no constraint. The
// evaluator fails open so partial ad data never hides an ad.
package placement

import (
	"strings"
	"time"

	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

// Rule names returned by Explain.
const (
	RuleDisabled   = "disabled"
	RulePaused     = "paused"
	RuleNotStarted = "not_started"
	RuleEnded      = "ended"
	RuleDay        = "schedule_day"
	RuleHour       = "schedule_hour"
	RulePage       = "page"
	RuleExcluded   = "excluded_page"
	RuleEntity     = "entity"
	RuleDevice     = "device"
	RuleCountry    = "country"
	RuleImpressCap = "max_impressions"
	RuleClickCap   = "max_clicks"
)

// IsEligible reports whether ad may be served for req at now. The weekday and
// hour are taken from now's location, so callers pick the schedule zone.
func IsEligible(ad *domain.Advertisement, req domain.RequestContext, now time.Time) bool {
	return Explain(ad, req, now) == ""
}

// Explain returns the name of the first rule that rejects ad, or "" when the
// ad is eligible.
func Explain(ad *domain.Advertisement, req domain.RequestContext, now time.Time) string {
	if ad == nil || !ad.Enabled {
		return RuleDisabled
	}
	if ad.Paused {
		return RulePaused
	}

	if rule := checkDateWindow(ad.Schedule, now); rule != "" {
		return rule
	}
	if rule := checkDayHour(ad.Schedule, now); rule != "" {
		return rule
	}

	if !MatchesAny(ad.Targeting.Pages, req.Path, true) {
		return RulePage
	}
	if MatchesAny(ad.Targeting.ExcludedPages, req.Path, false) {
		return RuleExcluded
	}

	if !matchesEntity(ad.Targeting, req) {
		return RuleEntity
	}
	if !inListFold(ad.Targeting.Devices, req.DeviceType) {
		return RuleDevice
	}
	if !inListFold(ad.Targeting.Countries, req.Country) {
		return RuleCountry
	}

	// nil is no cap; 0 is a cap nothing can stay under
	if ad.MaxImpressions != nil && *ad.MaxImpressions >= 0 && ad.ViewCount >= *ad.MaxImpressions {
		return RuleImpressCap
	}
	if ad.MaxClicks != nil && *ad.MaxClicks >= 0 && ad.ClickCount >= *ad.MaxClicks {
		return RuleClickCap
	}

	return ""
}

// Both ends of the window are inclusive.
func checkDateWindow(s domain.Schedule, now time.Time) string {
	if s.StartDate != nil && !s.StartDate.IsZero() && now.Before(*s.StartDate) {
		return RuleNotStarted
	}
	if s.EndDate != nil && !s.EndDate.IsZero() && now.After(*s.EndDate) {
		return RuleEnded
	}
	return ""
}

func checkDayHour(s domain.Schedule, now time.Time) string {
	if days := validRange(s.Days, 0, 6); len(days) > 0 && !containsInt(days, int(now.Weekday())) {
		return RuleDay
	}
	if hours := validRange(s.Hours, 0, 23); len(hours) > 0 && !containsInt(hours, now.Hour()) {
		return RuleHour
	}
	return ""
}

// MatchesAny reports whether path matches one of patterns. An empty pattern
// list yields emptyResult. A pattern matches on equality, or as a prefix when
// it ends in '*'. A lone "*" matches everything.
func MatchesAny(patterns []string, path string, emptyResult bool) bool {
	seen := false
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		seen = true
		if MatchPattern(p, path) {
			return true
		}
	}
	if !seen {
		return emptyResult
	}
	return false
}

func MatchPattern(pattern, path string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return pattern == path
}

func matchesEntity(t domain.Targeting, req domain.RequestContext) bool {
	switch t.Scope() {
	case domain.ScopeEntity:
		return req.EntitySlug == t.TargetEntity
	case domain.ScopeAllEntities:
		return req.EntityScoped()
	default:
		return !req.EntityScoped()
	}
}

// An empty list or an unknown request value is no constraint.
func inListFold(list []string, value string) bool {
	if value == "" {
		return true
	}
	seen := false
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		seen = true
		if item == "*" || strings.EqualFold(item, value) {
			return true
		}
	}
	return !seen
}

func validRange(values []int, lo, hi int) []int {
	out := values[:0:0]
	for _, v := range values {
		if v >= lo && v <= hi {
			out = append(out, v)
		}
	}
	return out
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
