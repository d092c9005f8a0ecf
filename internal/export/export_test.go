package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/testutil"
	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportFixture() (*domain.PlanGroup, []domain.Plan) {
	g := testutil.NewTestGroup("Spring")
	c := testutil.NewTestContent(g.ID, "algebra", 1, 30, testutil.WithSubject("math"))
	plans := []domain.Plan{
		testutil.NewTestPlan(c, "2025-03-03", 1, 10),
		testutil.NewTestPlan(c, "2025-03-03", 11, 15, testutil.WithPlanTime("14:00", "14:30")),
		testutil.NewTestPlan(c, "2025-03-04", 1, 15, testutil.WithReviewDay(), testutil.WithPlanStatus(domain.PlanCompleted)),
	}
	return g, plans
}

func TestWriteICS(t *testing.T) {
	g, plans := exportFixture()
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, g, plans, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 3)

	first := events[0]
	assert.Equal(t, "20250303T090000", first.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20250303T100000", first.GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "math algebra 1-10", first.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, plans[0].ID+"@studyplan", first.Id())

	assert.Equal(t, "20250303T143000", events[1].GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "Review: math algebra 1-15", events[2].GetProperty(ics.ComponentPropertySummary).Value)
}

func TestWriteWorkbook(t *testing.T) {
	g, plans := exportFixture()
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, g, plans))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Plans", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Plans")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, []string{"2025-03-03", "09:00", "10:00", "math", "algebra", "book", "1-10", "study", "60", "pending"}, rows[1])
	assert.Equal(t, "completed", rows[3][9])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Minutes"},
		{"2025-03-03", "90"},
		{"2025-03-04", "60"},
		{"Total", "150"},
	}, summary)
}
