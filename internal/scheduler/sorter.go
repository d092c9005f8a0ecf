package scheduler

import (
	"sort"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// StatusPriority returns a sort priority (lower = more urgent).
func StatusPriority(s domain.DelayStatus) int {
	switch s {
	case domain.DelayCritical:
		return 0
	case domain.DelayBehind:
		return 1
	case domain.DelayOnTrack:
		return 2
	default:
		return 3
	}
}

// SortAnalyses orders delay analyses for display:
// 1. Status: critical > behind > on-track > ahead
// 2. At-risk plan count: higher first
// 3. Progress gap: larger shortfall first
// 4. Group ID: lexical ascending
func SortAnalyses(analyses []DelayAnalysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		a, b := analyses[i], analyses[j]

		pa, pb := StatusPriority(a.Status), StatusPriority(b.Status)
		if pa != pb {
			return pa < pb
		}

		if a.AtRiskPlanCount != b.AtRiskPlanCount {
			return a.AtRiskPlanCount > b.AtRiskPlanCount
		}

		gapA := a.ExpectedProgressRate - a.ProgressRate
		gapB := b.ExpectedProgressRate - b.ProgressRate
		if gapA != gapB {
			return gapA > gapB
		}

		return a.GroupID < b.GroupID
	})
}
