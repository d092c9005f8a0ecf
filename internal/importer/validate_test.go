package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchema() *ImportSchema {
	return &ImportSchema{
		Group: GroupImport{
			StudentID:   "student-1",
			Name:        "Spring term",
			PeriodStart: "2025-03-03",
			PeriodEnd:   "2025-03-16",
		},
		Contents: []ContentImport{
			{Ref: "algebra", ContentType: "book", ContentID: "book-1", StartRange: 1, EndRange: 40, Subject: "math"},
			{Ref: "lectures", ContentType: "lecture", ContentID: "lec-1", StartRange: 1, EndRange: 4},
		},
		Durations: []DurationImport{
			{ContentType: "lecture", ContentID: "lec-1", Episodes: []EpisodeImport{{Number: 1}, {Number: 2}}},
		},
		Blocks: []BlockImport{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"},
		},
		Exclusions: []ExclusionImport{
			{Date: "2025-03-10", Type: "holiday"},
		},
	}
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func containsErr(t *testing.T, errs []error, substr string) {
	t.Helper()
	for _, e := range errs {
		if strings.Contains(e.Error(), substr) {
			return
		}
	}
	t.Errorf("no error containing %q in %v", substr, errorStrings(errs))
}

func TestValidateImportSchema_Valid(t *testing.T) {
	assert.Empty(t, ValidateImportSchema(validSchema()))
}

func TestValidateImportSchema_CollectsAllErrors(t *testing.T) {
	s := validSchema()
	s.Group.StudentID = "  "
	s.Group.PeriodStart = "03/03/2025"
	s.Contents[0].EndRange = 0
	s.Blocks[0].EndTime = "25:00"

	errs := ValidateImportSchema(s)
	require.Len(t, errs, 4, errorStrings(errs))
	containsErr(t, errs, "group.student_id is required")
	containsErr(t, errs, "group.period_start: invalid date format")
	containsErr(t, errs, "contents[0].end_range must be at least start_range")
	containsErr(t, errs, "blocks[0].end_time: invalid time")
}

func TestValidateImportSchema_PeriodOrder(t *testing.T) {
	s := validSchema()
	s.Group.PeriodEnd = "2025-03-01"

	errs := ValidateImportSchema(s)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "group.period_end must not be before the start")
}

func TestValidateImportSchema_BlockWindow(t *testing.T) {
	s := validSchema()
	s.Blocks[0].EndTime = "09:00"

	errs := ValidateImportSchema(s)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "blocks[0].end_time")
}

func TestValidateImportSchema_EnumsAndBounds(t *testing.T) {
	s := validSchema()
	s.Group.Mode = "intense"
	s.Contents[1].ContentType = "video"
	s.Blocks[0].DayOfWeek = 7
	s.Exclusions[0].Type = "sick"

	errs := ValidateImportSchema(s)
	containsErr(t, errs, `group.mode: invalid value "intense"`)
	containsErr(t, errs, `contents[1].content_type: invalid value "video"`)
	containsErr(t, errs, "blocks[0].day_of_week")
	containsErr(t, errs, `exclusions[0].type: invalid value "sick"`)
}

func TestValidateImportSchema_MissingSections(t *testing.T) {
	s := validSchema()
	s.Contents = nil
	s.Blocks = nil
	s.Durations = nil

	errs := ValidateImportSchema(s)
	containsErr(t, errs, "contents is required")
	containsErr(t, errs, "blocks is required")
}

func TestValidateImportSchema_References(t *testing.T) {
	s := validSchema()
	s.Contents[1].Ref = "algebra"
	s.Durations = append(s.Durations,
		DurationImport{ContentType: "book", ContentID: "missing"},
		DurationImport{ContentType: "lecture", ContentID: "lec-1"},
	)
	s.Exclusions = append(s.Exclusions, ExclusionImport{Date: "2025-03-10"})

	errs := ValidateImportSchema(s)
	require.Len(t, errs, 4, errorStrings(errs))
	containsErr(t, errs, `contents[1].ref: duplicate ref "algebra"`)
	containsErr(t, errs, "durations[1]: no content book/missing")
	containsErr(t, errs, "durations[2]: duplicate entry for lecture/lec-1")
	containsErr(t, errs, "exclusions[1].date: duplicate date 2025-03-10")
}

func TestParseImportSchema(t *testing.T) {
	s, err := ParseImportSchema([]byte(`{
		"group": {"student_id": "s1", "name": "n", "period_start": "2025-03-03", "period_end": "2025-03-09", "study_days": 6, "review_days": 1},
		"contents": [{"ref": "r", "content_type": "custom", "content_id": "c", "start_range": 1, "end_range": 3}],
		"durations": [{"content_type": "custom", "content_id": "c", "total_minutes": 90, "total_units": 3}],
		"blocks": [{"day_of_week": 0, "start_time": "18:00", "end_time": "19:30"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 6, s.Group.StudyDays)
	require.Len(t, s.Durations, 1)
	require.NotNil(t, s.Durations[0].TotalMinutes)
	assert.Equal(t, 90, *s.Durations[0].TotalMinutes)
	assert.Empty(t, ValidateImportSchema(s))

	_, err = ParseImportSchema([]byte(`{`))
	assert.Error(t, err)
}

func TestValidateImportSchema_AcademiesAndLunch(t *testing.T) {
	s := validSchema()
	s.Group.LunchTime = &TimeRangeImport{Start: "13:00", End: "12:00"}
	s.Academies = []AcademyImport{
		{DayOfWeek: 2, StartTime: "18:00", EndTime: "17:00"},
		{DayOfWeek: 9, StartTime: "18:00", EndTime: "19:00", TravelTime: intPtr(-5)},
	}

	errs := ValidateImportSchema(s)
	require.Len(t, errs, 4, errorStrings(errs))
	containsErr(t, errs, "group.lunch_time.end")
	containsErr(t, errs, "academies[0].end_time")
	containsErr(t, errs, "academies[1].day_of_week")
	containsErr(t, errs, "academies[1].travel_time")
}
