package reschedule

import (
	"sort"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// Operation is one step of a reschedule transaction.
type Operation struct {
	Kind domain.OperationKind `json:"kind"`
	// Plan is the row to create, the new state of an updated row, or the
	// row to delete.
	Plan domain.Plan `json:"plan"`
	// Before is the previous state of an updated row.
	Before *domain.Plan `json:"before,omitempty"`
}

// DiffSummary counts plan-days by how a reschedule touches them.
type DiffSummary struct {
	AddedDays   int `json:"added_days"`
	ChangedDays int `json:"changed_days"`
	RemovedDays int `json:"removed_days"`
}

type diffResult struct {
	ops           []Operation
	after         []domain.Plan
	affectedDates []string
	summary       DiffSummary
}

type slotKey struct {
	date          string
	planContentID string
}

// diffPlans matches previous and regenerated plans by date, content and
// occurrence on that date. Matched pairs keep the old id and become
// updates when anything differs; leftovers become deletes and creates.
// Operations are ordered deletes, updates, creates, each by date and
// sequence.
func diffPlans(previous []domain.Plan, generated []domain.ScheduledPlan, groupID string, newID func() string) diffResult {
	oldBy := make(map[slotKey][]domain.Plan)
	for _, p := range previous {
		k := slotKey{date: domain.DateKey(p.PlanDate), planContentID: p.PlanContentID}
		oldBy[k] = append(oldBy[k], p)
	}
	for k := range oldBy {
		ps := oldBy[k]
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].Sequence != ps[j].Sequence {
				return ps[i].Sequence < ps[j].Sequence
			}
			return ps[i].StartTime < ps[j].StartTime
		})
	}

	var (
		deletes, updates, creates []Operation
		after                     []domain.Plan
		used                      = make(map[slotKey]int)
		touched                   = make(map[string]bool)
		oldPerDate                = make(map[string]int)
		newPerDate                = make(map[string]int)
	)
	for _, p := range previous {
		oldPerDate[domain.DateKey(p.PlanDate)]++
	}

	for _, g := range generated {
		dk := domain.DateKey(g.PlanDate)
		newPerDate[dk]++
		k := slotKey{date: dk, planContentID: g.PlanContentID}
		n := used[k]
		used[k] = n + 1

		if n < len(oldBy[k]) {
			old := oldBy[k][n]
			next := old
			next.ScheduledPlan = g
			after = append(after, next)
			if !old.SameSchedule(g) {
				before := old
				updates = append(updates, Operation{Kind: domain.OpUpdate, Plan: next, Before: &before})
				touched[dk] = true
			}
			continue
		}
		p := domain.Plan{ID: newID(), GroupID: groupID, ScheduledPlan: g, Status: domain.PlanPending}
		after = append(after, p)
		creates = append(creates, Operation{Kind: domain.OpCreate, Plan: p})
		touched[dk] = true
	}

	keys := make([]slotKey, 0, len(oldBy))
	for k := range oldBy {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].planContentID < keys[j].planContentID
	})
	for _, k := range keys {
		for _, p := range oldBy[k][min(used[k], len(oldBy[k])):] {
			deletes = append(deletes, Operation{Kind: domain.OpDelete, Plan: p})
			touched[k.date] = true
		}
	}

	sortOps(deletes)
	sortOps(updates)
	sortOps(creates)

	res := diffResult{after: after}
	res.ops = append(res.ops, deletes...)
	res.ops = append(res.ops, updates...)
	res.ops = append(res.ops, creates...)

	for dk := range touched {
		res.affectedDates = append(res.affectedDates, dk)
		switch {
		case oldPerDate[dk] == 0:
			res.summary.AddedDays++
		case newPerDate[dk] == 0:
			res.summary.RemovedDays++
		default:
			res.summary.ChangedDays++
		}
	}
	sort.Strings(res.affectedDates)
	return res
}

func sortOps(ops []Operation) {
	sort.SliceStable(ops, func(i, j int) bool {
		a, b := ops[i].Plan, ops[j].Plan
		if !a.PlanDate.Equal(b.PlanDate) {
			return a.PlanDate.Before(b.PlanDate)
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ID < b.ID
	})
}
