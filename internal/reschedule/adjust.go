package reschedule

import "github.com/alexanderramin/studyplan/internal/domain"

// mergeAdjustments applies adjustments to a copy of contents. Range changes
// replace start and end; replacements swap the content reference and keep
// order and subject; full regenerations leave the content as is. Multiple
// adjustments to one content apply in input order.
func mergeAdjustments(contents []domain.PlanContent, adjustments []domain.AdjustmentInput) ([]domain.PlanContent, map[string]bool) {
	merged := make([]domain.PlanContent, len(contents))
	copy(merged, contents)
	index := make(map[string]int, len(merged))
	for i, c := range merged {
		index[c.ID] = i
	}

	affected := make(map[string]bool, len(adjustments))
	for _, adj := range adjustments {
		i, ok := index[adj.PlanContentID]
		if !ok {
			continue
		}
		affected[adj.PlanContentID] = true
		c := &merged[i]
		switch adj.ChangeType {
		case domain.AdjustRange:
			c.StartRange = *adj.NewStartRange
			c.EndRange = *adj.NewEndRange
		case domain.AdjustReplace:
			c.ContentType = adj.NewContentType
			c.ContentID = adj.NewContentID
			if adj.NewStartRange != nil && adj.NewEndRange != nil {
				c.StartRange = *adj.NewStartRange
				c.EndRange = *adj.NewEndRange
			}
		}
	}
	return merged, affected
}

// AdjustmentsSummary counts adjustments by kind.
type AdjustmentsSummary struct {
	RangeChanges      int `json:"range_changes"`
	Replacements      int `json:"replacements"`
	FullRegenerations int `json:"full_regenerations"`
}

func summarizeAdjustments(adjustments []domain.AdjustmentInput) AdjustmentsSummary {
	var s AdjustmentsSummary
	for _, adj := range adjustments {
		switch adj.ChangeType {
		case domain.AdjustRange:
			s.RangeChanges++
		case domain.AdjustReplace:
			s.Replacements++
		case domain.AdjustFull:
			s.FullRegenerations++
		}
	}
	return s
}
