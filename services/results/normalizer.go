// Package results turns a raw audit result into the prioritized groupings
// shown to users. Everything here is pure.
package results

import (
	"sort"
	"strings"

	"github.com/upb/seo-audit-console/models"
)

const (
	// ChecklistDisplayCap bounds the entries shown per checklist bucket
	ChecklistDisplayCap = 6

	// RecommendationDisplayCap bounds the items shown per recommendation bucket
	RecommendationDisplayCap = 4

	// DefaultChecklistTotal is the progress denominator used while the
	// backend has not populated a checklist yet
	DefaultChecklistTotal = 20

	// TopIssuesLimit bounds the issues carried for the summary view
	TopIssuesLimit = 8
)

// notMeasuredMarkers are matched case-insensitively as substrings of a
// checklist value
var notMeasuredMarkers = []string{"n/a", "nepamatuota"}

// Band is the qualitative reading of a score
type Band string

const (
	BandGood      Band = "Good"
	BandNeedsWork Band = "Needs work"
	BandCritical  Band = "Critical"
)

// ScoreBand maps a 0-100 score to its band. Lower bounds are inclusive.
func ScoreBand(score int) Band {
	switch {
	case score >= 80:
		return BandGood
	case score >= 60:
		return BandNeedsWork
	default:
		return BandCritical
	}
}

// CheckState is the display state of a checklist entry
type CheckState string

const (
	CheckPass CheckState = "PASS"
	CheckFail CheckState = "FAIL"
	CheckNA   CheckState = "NA"
)

// IsNotMeasured reports whether a checklist value carries a not-measured marker
func IsNotMeasured(value string) bool {
	lower := strings.ToLower(value)
	for _, marker := range notMeasuredMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Classify returns the display state of entry. A not-measured value wins
// over Passed.
func Classify(entry models.ChecklistEntry) CheckState {
	if IsNotMeasured(entry.Value) {
		return CheckNA
	}
	if entry.Passed {
		return CheckPass
	}
	return CheckFail
}

// ClassifiedEntry is a checklist entry with its display state
type ClassifiedEntry struct {
	models.ChecklistEntry
	State CheckState `json:"state"`
}

// ChecklistGroup is one bucket of failing checks. Entries is capped for
// display; Count is the uncapped size.
type ChecklistGroup struct {
	Entries []models.ChecklistEntry `json:"entries"`
	Count   int                     `json:"count"`
}

// RecommendationGroup is one bucket of recommendations. Items is capped for
// display; Count is the uncapped size.
type RecommendationGroup struct {
	Items []models.Recommendation `json:"items"`
	Count int                     `json:"count"`
}

// NormalizedResult is the user-facing view of an AuditResult
type NormalizedResult struct {
	AuditID               string                                `json:"audit_id,omitempty"`
	URL                   string                                `json:"url,omitempty"`
	Score                 int                                   `json:"score"`
	Band                  Band                                  `json:"band"`
	Checklist             []ClassifiedEntry                     `json:"checklist"`
	ChecklistBuckets      map[models.Bucket]ChecklistGroup      `json:"checklist_buckets"`
	RecommendationBuckets map[models.Bucket]RecommendationGroup `json:"recommendation_buckets"`
	PassedCount           int                                   `json:"passed_count"`
	MeasuredCount         int                                   `json:"measured_count"`
	Total                 int                                   `json:"total"`
	TopIssues             []models.Issue                        `json:"top_issues"`
	Metrics               map[string]float64                    `json:"metrics"`
}

// Normalize classifies and buckets raw. It never fails; missing arrays are
// treated as empty and raw is not modified.
func Normalize(raw *models.AuditResult) *NormalizedResult {
	if raw == nil {
		raw = &models.AuditResult{}
	}

	out := &NormalizedResult{
		AuditID:               raw.AuditID,
		URL:                   raw.URL,
		Score:                 raw.Score,
		Band:                  ScoreBand(raw.Score),
		Checklist:             make([]ClassifiedEntry, 0, len(raw.Checklist)),
		ChecklistBuckets:      make(map[models.Bucket]ChecklistGroup, len(models.Buckets)),
		RecommendationBuckets: make(map[models.Bucket]RecommendationGroup, len(models.Buckets)),
		TopIssues:             topIssues(raw.Issues, TopIssuesLimit),
		Metrics:               make(map[string]float64, len(raw.Metrics)),
	}

	failing := make(map[models.Bucket][]models.ChecklistEntry, len(models.Buckets))
	for _, entry := range raw.Checklist {
		state := Classify(entry)
		out.Checklist = append(out.Checklist, ClassifiedEntry{ChecklistEntry: entry, State: state})

		if entry.Passed {
			out.PassedCount++
		}
		if state != CheckNA {
			out.MeasuredCount++
		}
		if state == CheckFail {
			failing[entry.Priority] = append(failing[entry.Priority], entry)
		}
	}

	recommendations := make(map[models.Bucket][]models.Recommendation, len(models.Buckets))
	for _, rec := range raw.Recommendations {
		recommendations[rec.Bucket] = append(recommendations[rec.Bucket], rec)
	}

	for _, bucket := range models.Buckets {
		entries := failing[bucket]
		out.ChecklistBuckets[bucket] = ChecklistGroup{
			Entries: capEntries(entries, ChecklistDisplayCap),
			Count:   len(entries),
		}

		recs := recommendations[bucket]
		out.RecommendationBuckets[bucket] = RecommendationGroup{
			Items: capRecommendations(recs, RecommendationDisplayCap),
			Count: len(recs),
		}
	}

	out.Total = len(raw.Checklist)
	if out.Total == 0 {
		out.Total = DefaultChecklistTotal
	}

	for k, v := range raw.Metrics {
		out.Metrics[k] = v
	}

	return out
}

func capEntries(entries []models.ChecklistEntry, limit int) []models.ChecklistEntry {
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return append([]models.ChecklistEntry{}, entries...)
}

func capRecommendations(recs []models.Recommendation, limit int) []models.Recommendation {
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return append([]models.Recommendation{}, recs...)
}

// topIssues returns the highest priority issues first, keeping backend order
// among equal scores
func topIssues(issues []models.Issue, limit int) []models.Issue {
	sorted := append([]models.Issue{}, issues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriorityScore > sorted[j].PriorityScore
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
