package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/google/uuid"
)

// Date parses a YYYY-MM-DD literal and panics on malformed input.
func Date(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Group options
type GroupOption func(*domain.PlanGroup)

func WithPeriod(start, end string) GroupOption {
	return func(g *domain.PlanGroup) {
		g.PeriodStart = Date(start)
		g.PeriodEnd = Date(end)
	}
}

func WithStudent(id string) GroupOption {
	return func(g *domain.PlanGroup) {
		g.StudentID = id
	}
}

func WithCycle(studyDays, reviewDays int) GroupOption {
	return func(g *domain.PlanGroup) {
		g.StudyDays = studyDays
		g.ReviewDays = reviewDays
	}
}

func WithDailyCap(minutes int) GroupOption {
	return func(g *domain.PlanGroup) {
		g.DailyCapMinutes = minutes
	}
}

// NewTestGroup returns an active group for 2025-03-03..2025-03-16.
func NewTestGroup(name string, opts ...GroupOption) *domain.PlanGroup {
	now := time.Now().UTC().Truncate(time.Second)
	g := &domain.PlanGroup{
		ID:          uuid.New().String(),
		StudentID:   "student-1",
		Name:        name,
		Mode:        domain.GroupModeNormal,
		PeriodStart: Date("2025-03-03"),
		PeriodEnd:   Date("2025-03-16"),
		Status:      domain.GroupActive,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Content options
type ContentOption func(*domain.PlanContent)

func WithSubject(s string) ContentOption {
	return func(c *domain.PlanContent) {
		c.Subject = s
	}
}

func WithOrder(i int) ContentOption {
	return func(c *domain.PlanContent) {
		c.Order = i
	}
}

func WithContentType(t domain.ContentType) ContentOption {
	return func(c *domain.PlanContent) {
		c.ContentType = t
	}
}

// NewTestContent returns a book content covering [start, end].
func NewTestContent(groupID, contentID string, start, end int, opts ...ContentOption) *domain.PlanContent {
	c := &domain.PlanContent{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		ContentType: domain.ContentBook,
		ContentID:   contentID,
		StartRange:  start,
		EndRange:    end,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DailyBlocks returns one block per weekday between start and end.
func DailyBlocks(groupID, start, end string) []domain.BlockDefinition {
	blocks := make([]domain.BlockDefinition, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		blocks = append(blocks, domain.BlockDefinition{
			ID:        fmt.Sprintf("%s-blk-%d", groupID, wd),
			GroupID:   groupID,
			DayOfWeek: wd,
			StartTime: domain.MustClock(start),
			EndTime:   domain.MustClock(end),
		})
	}
	return blocks
}

// Plan options
type PlanOption func(*domain.Plan)

func WithPlanStatus(s domain.PlanStatus) PlanOption {
	return func(p *domain.Plan) {
		p.Status = s
	}
}

func WithPlanTime(start, end string) PlanOption {
	return func(p *domain.Plan) {
		p.StartTime = domain.MustClock(start)
		p.EndTime = domain.MustClock(end)
	}
}

func WithReviewDay() PlanOption {
	return func(p *domain.Plan) {
		p.DayType = domain.DayReview
	}
}

func WithSequence(n int) PlanOption {
	return func(p *domain.Plan) {
		p.Sequence = n
	}
}

// NewTestPlan returns a pending 09:00-10:00 study plan of content c.
func NewTestPlan(c *domain.PlanContent, date string, lo, hi int, opts ...PlanOption) domain.Plan {
	p := domain.Plan{
		ID:      uuid.New().String(),
		GroupID: c.GroupID,
		ScheduledPlan: domain.ScheduledPlan{
			PlanDate:      Date(date),
			StartTime:     domain.MustClock("09:00"),
			EndTime:       domain.MustClock("10:00"),
			PlanContentID: c.ID,
			ContentType:   c.ContentType,
			ContentID:     c.ContentID,
			Subject:       c.Subject,
			RangeStart:    lo,
			RangeEnd:      hi,
			DayType:       domain.DayStudy,
		},
		Status: domain.PlanPending,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
