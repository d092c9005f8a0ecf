package config

import (
	"fmt"
	"strings"
)

// SchedulerConfig is the value object handed to the scheduling engine.
// The engine never reads ambient configuration; everything it needs is here.
type SchedulerConfig struct {
	// DifficultyRates maps a difficulty label to minutes per page.
	DifficultyRates       map[string]int `mapstructure:"difficulty_rates" validate:"required,min=1,dive,gt=0"`
	DefaultMinutesPerPage int            `mapstructure:"default_minutes_per_page" validate:"gt=0"`
	DefaultEpisodeMinutes int            `mapstructure:"default_episode_minutes" validate:"gt=0"`
	ReviewRatio           float64        `mapstructure:"review_ratio" validate:"gt=0,lte=1"`
	StudyDays             int            `mapstructure:"study_days" validate:"gt=0"`
	ReviewDays            int            `mapstructure:"review_days" validate:"gte=0"`
	PreviewCacheSize      int            `mapstructure:"preview_cache_size" validate:"gt=0"`
}

// DefaultScheduler returns the documented engine defaults.
func DefaultScheduler() SchedulerConfig {
	return SchedulerConfig{
		DifficultyRates: map[string]int{
			"쉬움":     4,
			"easy":   4,
			"기본":     6,
			"normal": 6,
			"어려움":    8,
			"hard":   8,
			"최상":     10,
			"expert": 10,
		},
		DefaultMinutesPerPage: 6,
		DefaultEpisodeMinutes: 30,
		ReviewRatio:           0.5,
		StudyDays:             6,
		ReviewDays:            1,
		PreviewCacheSize:      256,
	}
}

// MinutesPerPage resolves a difficulty label, falling back to the default
// rate for unknown or missing labels.
func (c SchedulerConfig) MinutesPerPage(difficulty string) int {
	key := strings.ToLower(strings.TrimSpace(difficulty))
	if key == "" {
		return c.DefaultMinutesPerPage
	}
	if rate, ok := c.DifficultyRates[key]; ok && rate > 0 {
		return rate
	}
	return c.DefaultMinutesPerPage
}

// CycleLength is the number of eligible days in one study/review cycle.
func (c SchedulerConfig) CycleLength() int {
	return c.StudyDays + c.ReviewDays
}

// Validate runs tag validation over the scheduler settings.
func (c SchedulerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("scheduler config: %w", err)
	}
	return nil
}
