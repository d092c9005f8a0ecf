package suggest

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

type Dimension string

const (
	BySubject Dimension = "subject"
	ByContent Dimension = "content"
)

// recurringAfter is the reschedule count from which a key counts as a
// recurring trigger.
const recurringAfter = 3

// Pattern aggregates the reschedule history of one subject or content.
type Pattern struct {
	Dimension Dimension `json:"dimension"`
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	// AverageIntervalDays is zero unless Count >= 2.
	AverageIntervalDays float64   `json:"average_interval_days"`
	LastRescheduled     time.Time `json:"last_rescheduled"`
	Recurring           bool      `json:"recurring"`
}

func (p Pattern) Describe() string {
	if p.Count < 2 {
		return fmt.Sprintf("%s %q rescheduled once, on %s", p.Dimension, p.Key, domain.DateKey(p.LastRescheduled))
	}
	return fmt.Sprintf("%s %q rescheduled %d times, on average every %.1f days", p.Dimension, p.Key, p.Count, p.AverageIntervalDays)
}

type patternKey struct {
	dim Dimension
	key string
}

// AnalyzePatterns aggregates committed reschedule logs per subject and
// per content. Rolled back logs are ignored.
func AnalyzePatterns(logs []domain.RescheduleLog) []Pattern {
	times := make(map[patternKey][]time.Time)
	for _, l := range logs {
		if l.Status == domain.LogRolledBack {
			continue
		}
		seen := make(map[patternKey]bool)
		add := func(k patternKey) {
			if k.key == "" || seen[k] {
				return
			}
			seen[k] = true
			times[k] = append(times[k], l.CreatedAt)
		}
		for _, s := range l.Subjects {
			add(patternKey{BySubject, s})
		}
		for _, a := range l.Adjustments {
			add(patternKey{ByContent, a.PlanContentID})
		}
	}

	out := make([]Pattern, 0, len(times))
	for k, ts := range times {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
		p := Pattern{
			Dimension:       k.dim,
			Key:             k.key,
			Count:           len(ts),
			LastRescheduled: ts[len(ts)-1],
			Recurring:       len(ts) >= recurringAfter,
		}
		if len(ts) >= 2 {
			span := ts[len(ts)-1].Sub(ts[0]).Hours() / 24
			p.AverageIntervalDays = roundTenth(span / float64(len(ts)-1))
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Dimension != out[j].Dimension {
			return out[i].Dimension > out[j].Dimension
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
