package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/google/uuid"
)

// GroupBundle is a converted import ready for persistence.
type GroupBundle struct {
	Group      *domain.PlanGroup
	Contents   []*domain.PlanContent
	Durations  []domain.ContentDurationInfo
	Blocks     []domain.BlockDefinition
	Exclusions []domain.Exclusion
	Academies  []domain.AcademySchedule
}

// Convert transforms a validated ImportSchema into domain objects ready for persistence.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema) (*GroupBundle, error) {
	now := time.Now().UTC().Truncate(time.Second)

	start, err := domain.ParseDate(schema.Group.PeriodStart)
	if err != nil {
		return nil, fmt.Errorf("parsing period_start: %w", err)
	}
	end, err := domain.ParseDate(schema.Group.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("parsing period_end: %w", err)
	}

	groupID := schema.Group.ID
	if groupID == "" {
		groupID = uuid.New().String()
	}
	b := &GroupBundle{
		Group: &domain.PlanGroup{
			ID:              groupID,
			StudentID:       strings.TrimSpace(schema.Group.StudentID),
			Name:            strings.TrimSpace(schema.Group.Name),
			Mode:            domain.GroupMode(domain.CoalesceStr(schema.Group.Mode, string(domain.GroupModeNormal))),
			PeriodStart:     start,
			PeriodEnd:       end,
			StudyDays:       schema.Group.StudyDays,
			ReviewDays:      schema.Group.ReviewDays,
			DailyCapMinutes: schema.Group.DailyCapMin,
			Status:          domain.GroupActive,
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	if lt := schema.Group.LunchTime; lt != nil {
		lunch, err := parseRange(lt.Start, lt.End)
		if err != nil {
			return nil, fmt.Errorf("group.lunch_time: %w", err)
		}
		b.Group.Lunch = &lunch
	}

	for i, c := range schema.Contents {
		order := c.Order
		if order == 0 {
			order = i + 1
		}
		b.Contents = append(b.Contents, &domain.PlanContent{
			ID:          contentID(groupID, c.Ref),
			GroupID:     groupID,
			ContentType: domain.ContentType(c.ContentType),
			ContentID:   c.ContentID,
			StartRange:  c.StartRange,
			EndRange:    c.EndRange,
			Subject:     c.Subject,
			Order:       order,
		})
	}

	for _, d := range schema.Durations {
		info := domain.ContentDurationInfo{
			ContentType:  domain.ContentType(d.ContentType),
			ContentID:    d.ContentID,
			Difficulty:   d.Difficulty,
			TotalMinutes: d.TotalMinutes,
			TotalUnits:   d.TotalUnits,
		}
		for _, e := range d.Episodes {
			info.Episodes = append(info.Episodes, domain.Episode{Number: e.Number, DurationMin: e.DurationMin})
		}
		b.Durations = append(b.Durations, info)
	}

	for i, blk := range schema.Blocks {
		startT, err := domain.ParseClock(blk.StartTime)
		if err != nil {
			return nil, fmt.Errorf("blocks[%d].start_time: %w", i, err)
		}
		endT, err := domain.ParseClock(blk.EndTime)
		if err != nil {
			return nil, fmt.Errorf("blocks[%d].end_time: %w", i, err)
		}
		b.Blocks = append(b.Blocks, domain.BlockDefinition{
			ID:        uuid.New().String(),
			GroupID:   groupID,
			DayOfWeek: time.Weekday(blk.DayOfWeek),
			StartTime: startT,
			EndTime:   endT,
		})
	}

	for i, e := range schema.Exclusions {
		day, err := domain.ParseDate(e.Date)
		if err != nil {
			return nil, fmt.Errorf("exclusions[%d].date: %w", i, err)
		}
		b.Exclusions = append(b.Exclusions, domain.Exclusion{
			ID:      uuid.New().String(),
			GroupID: groupID,
			Date:    day,
			Type:    domain.ExclusionType(domain.CoalesceStr(e.Type, string(domain.ExclusionOther))),
			Reason:  e.Reason,
		})
	}

	for i, a := range schema.Academies {
		slot, err := parseRange(a.StartTime, a.EndTime)
		if err != nil {
			return nil, fmt.Errorf("academies[%d]: %w", i, err)
		}
		travel := domain.DefaultTravelMinutes
		if a.TravelTime != nil {
			travel = *a.TravelTime
		}
		b.Academies = append(b.Academies, domain.AcademySchedule{
			ID:            uuid.New().String(),
			GroupID:       groupID,
			DayOfWeek:     time.Weekday(a.DayOfWeek),
			StartTime:     slot.Start,
			EndTime:       slot.End,
			Name:          strings.TrimSpace(a.AcademyName),
			Subject:       strings.TrimSpace(a.Subject),
			TravelMinutes: travel,
		})
	}

	return b, nil
}

func parseRange(start, end string) (domain.StudyTimeSlot, error) {
	s, err := domain.ParseClock(start)
	if err != nil {
		return domain.StudyTimeSlot{}, err
	}
	e, err := domain.ParseClock(end)
	if err != nil {
		return domain.StudyTimeSlot{}, err
	}
	return domain.StudyTimeSlot{Start: s, End: e}, nil
}

// contentID scopes the file-local ref to the group so refs can repeat
// across groups.
func contentID(groupID, ref string) string {
	return groupID + "/" + ref
}
