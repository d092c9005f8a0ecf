package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// resolveGroupID accepts a full group ID or an unambiguous ID prefix.
func resolveGroupID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("group ID is required")
	}

	groups, err := app.Groups.ListGroups(ctx, "", false)
	if err != nil {
		return "", err
	}

	for _, g := range groups {
		if g.ID == input {
			return g.ID, nil
		}
	}

	var matches []string
	for _, g := range groups {
		if strings.HasPrefix(g.ID, input) {
			matches = append(matches, g.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("group not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("group ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &t, nil
}

// todayFlag resolves --today, falling back to the app clock.
func todayFlag(app *App, value string) (time.Time, error) {
	t, err := parseDateFlag("today", value)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return domain.Day(app.today()), nil
	}
	return *t, nil
}
