package utils

import (
	"sort"
	"strings"

	"brightside/api/models"
)

// Traffic source buckets, in rule-evaluation order. First match wins and
// matching is a plain case-sensitive substring test on the raw referrer.
const (
	SourceDirect   = "Direct"
	SourceGoogle   = "Google"
	SourceFacebook = "Facebook"
	SourceTwitter  = "Twitter"
	SourceLinkedIn = "LinkedIn"
	SourceOther    = "Other"
)

// ClassifySource buckets a page view's referrer into a traffic source.
// An empty referrer is a direct visit; t.co counts as Twitter because the
// shortener strips the original domain.
func ClassifySource(referrer string) string {
	switch {
	case referrer == "":
		return SourceDirect
	case strings.Contains(referrer, "google"):
		return SourceGoogle
	case strings.Contains(referrer, "facebook"):
		return SourceFacebook
	case strings.Contains(referrer, "twitter"), strings.Contains(referrer, "t.co"):
		return SourceTwitter
	case strings.Contains(referrer, "linkedin"):
		return SourceLinkedIn
	default:
		return SourceOther
	}
}

// BucketSources folds raw per-referrer view counts into source buckets,
// ordered by count descending (bucket name ascending on ties, so the
// output is deterministic).
func BucketSources(referrerCounts map[string]uint64) []models.SourceCount {
	buckets := make(map[string]uint64)
	for referrer, count := range referrerCounts {
		buckets[ClassifySource(referrer)] += count
	}

	out := make([]models.SourceCount, 0, len(buckets))
	for source, count := range buckets {
		out = append(out, models.SourceCount{Source: source, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	return out
}
