package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure of a plan group import.
type ImportSchema struct {
	Group      GroupImport       `json:"group"`
	Contents   []ContentImport   `json:"contents" validate:"required,min=1,dive"`
	Durations  []DurationImport  `json:"durations,omitempty" validate:"dive"`
	Blocks     []BlockImport     `json:"blocks" validate:"required,min=1,dive"`
	Exclusions []ExclusionImport `json:"exclusions,omitempty" validate:"dive"`
	Academies  []AcademyImport   `json:"academies,omitempty" validate:"dive"`
}

type GroupImport struct {
	ID          string `json:"id,omitempty" validate:"omitempty,max=64"`
	StudentID   string `json:"student_id" validate:"notblank"`
	Name        string `json:"name" validate:"notblank"`
	Mode        string `json:"mode,omitempty" validate:"omitempty,oneof=normal camp"`
	PeriodStart string `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end" validate:"required,datetime=2006-01-02"`
	// Zero study or review days fall back to the configured cycle.
	StudyDays   int `json:"study_days,omitempty" validate:"min=0"`
	ReviewDays  int `json:"review_days,omitempty" validate:"min=0"`
	DailyCapMin int `json:"daily_cap_min,omitempty" validate:"min=0"`
	// LunchTime is kept free on every scheduled day when present.
	LunchTime *TimeRangeImport `json:"lunch_time,omitempty"`
}

type TimeRangeImport struct {
	Start string `json:"start" validate:"required,clock"`
	End   string `json:"end" validate:"required,clock"`
}

// ContentImport is one content of the group. Ref names it inside the file
// and becomes the content id when unique ids are not supplied elsewhere.
type ContentImport struct {
	Ref         string `json:"ref" validate:"notblank"`
	ContentType string `json:"content_type" validate:"required,oneof=book lecture custom"`
	ContentID   string `json:"content_id" validate:"notblank"`
	StartRange  int    `json:"start_range" validate:"min=1"`
	EndRange    int    `json:"end_range" validate:"gtefield=StartRange"`
	Subject     string `json:"subject,omitempty"`
	Order       int    `json:"order,omitempty"`
}

type DurationImport struct {
	ContentType  string          `json:"content_type" validate:"required,oneof=book lecture custom"`
	ContentID    string          `json:"content_id" validate:"notblank"`
	Difficulty   string          `json:"difficulty,omitempty"`
	Episodes     []EpisodeImport `json:"episodes,omitempty" validate:"dive"`
	TotalMinutes *int            `json:"total_minutes,omitempty" validate:"omitempty,min=1"`
	TotalUnits   int             `json:"total_units,omitempty" validate:"min=0"`
}

type EpisodeImport struct {
	Number      int  `json:"number" validate:"min=1"`
	DurationMin *int `json:"duration_min,omitempty" validate:"omitempty,min=1"`
}

// BlockImport is a weekly window; day_of_week is 0 (Sunday) to 6.
type BlockImport struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

// AcademyImport is a weekly class outside the plan. travel_time is one-way
// minutes and defaults to 60.
type AcademyImport struct {
	DayOfWeek   int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	EndTime     string `json:"end_time" validate:"required,clock"`
	AcademyName string `json:"academy_name,omitempty"`
	Subject     string `json:"subject,omitempty"`
	TravelTime  *int   `json:"travel_time,omitempty" validate:"omitempty,min=0"`
}

type ExclusionImport struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Type   string `json:"type,omitempty" validate:"omitempty,oneof=vacation personal holiday other"`
	Reason string `json:"reason,omitempty"`
}

// LoadImportSchema reads and parses a plan group import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}

func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
