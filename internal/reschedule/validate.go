package reschedule

import (
	"fmt"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// Validate checks adjustments against the current contents of a group.
// Checks run in order: adjustments present, contents present, every
// adjustment targets a known content, every adjustment is well formed.
func Validate(adjustments []domain.AdjustmentInput, contents []domain.PlanContent) error {
	if len(adjustments) == 0 {
		return &ValidationError{Reason: reasonNoAdjustments}
	}
	if len(contents) == 0 {
		return &ValidationError{Reason: reasonNoContents}
	}
	known := make(map[string]bool, len(contents))
	for _, c := range contents {
		if c.ID != "" {
			known[c.ID] = true
		}
	}
	for _, adj := range adjustments {
		if adj.PlanContentID == "" || !known[adj.PlanContentID] {
			return &ValidationError{Reason: reasonInvalidContent, ContentID: adj.PlanContentID}
		}
	}
	for _, adj := range adjustments {
		if err := checkAdjustment(adj); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("%s: %s: %v", reasonInvalidChange, adj.PlanContentID, err)}
		}
	}
	return nil
}

func checkAdjustment(adj domain.AdjustmentInput) error {
	switch adj.ChangeType {
	case domain.AdjustRange:
		if adj.NewStartRange == nil || adj.NewEndRange == nil {
			return fmt.Errorf("range change needs a start and an end")
		}
	case domain.AdjustReplace:
		if !adj.NewContentType.Valid() || adj.NewContentID == "" {
			return fmt.Errorf("replacement needs a content type and id")
		}
		if (adj.NewStartRange == nil) != (adj.NewEndRange == nil) {
			return fmt.Errorf("replacement range needs both ends")
		}
	case domain.AdjustFull:
	default:
		return fmt.Errorf("unknown change type %q", adj.ChangeType)
	}
	if adj.NewStartRange != nil && adj.NewEndRange != nil {
		if *adj.NewStartRange < 1 || *adj.NewStartRange > *adj.NewEndRange {
			return fmt.Errorf("range %d-%d is invalid", *adj.NewStartRange, *adj.NewEndRange)
		}
	}
	return nil
}
