package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// parseAdjustment parses one --adjust value:
//
//	<content>:range:<start>-<end>
//	<content>:replace:<type>/<content_id>[:<start>-<end>]
//	<content>:full
//
// <content> is a plan content ID, or a content ID that is unique in the
// group.
func parseAdjustment(s string) (domain.AdjustmentInput, error) {
	var a domain.AdjustmentInput
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || parts[0] == "" {
		return a, fmt.Errorf("invalid adjustment %q: want <content>:<range|replace|full>[:...]", s)
	}
	a.PlanContentID = parts[0]
	a.ChangeType = domain.AdjustmentKind(parts[1])

	switch a.ChangeType {
	case domain.AdjustFull:
		if len(parts) != 2 {
			return a, fmt.Errorf("invalid adjustment %q: full takes no arguments", s)
		}
	case domain.AdjustRange:
		if len(parts) != 3 {
			return a, fmt.Errorf("invalid adjustment %q: want <content>:range:<start>-<end>", s)
		}
		lo, hi, err := parseUnitRange(parts[2])
		if err != nil {
			return a, fmt.Errorf("invalid adjustment %q: %w", s, err)
		}
		a.NewStartRange, a.NewEndRange = &lo, &hi
	case domain.AdjustReplace:
		if len(parts) != 3 && len(parts) != 4 {
			return a, fmt.Errorf("invalid adjustment %q: want <content>:replace:<type>/<id>[:<start>-<end>]", s)
		}
		typ, id, ok := strings.Cut(parts[2], "/")
		if !ok || id == "" {
			return a, fmt.Errorf("invalid adjustment %q: replacement must be <type>/<id>", s)
		}
		a.NewContentType = domain.ContentType(typ)
		if !a.NewContentType.Valid() {
			return a, fmt.Errorf("invalid adjustment %q: unknown content type %q", s, typ)
		}
		a.NewContentID = id
		if len(parts) == 4 {
			lo, hi, err := parseUnitRange(parts[3])
			if err != nil {
				return a, fmt.Errorf("invalid adjustment %q: %w", s, err)
			}
			a.NewStartRange, a.NewEndRange = &lo, &hi
		}
	default:
		return a, fmt.Errorf("invalid adjustment %q: unknown change type %q", s, parts[1])
	}
	return a, nil
}

func parseAdjustments(values []string) ([]domain.AdjustmentInput, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one --adjust is required")
	}
	out := make([]domain.AdjustmentInput, 0, len(values))
	for _, v := range values {
		a, err := parseAdjustment(v)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func parseUnitRange(s string) (int, int, error) {
	los, his, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("range %q must be <start>-<end>", s)
	}
	lo, err := strconv.Atoi(los)
	if err != nil {
		return 0, 0, fmt.Errorf("range start %q: %w", los, err)
	}
	hi, err := strconv.Atoi(his)
	if err != nil {
		return 0, 0, fmt.Errorf("range end %q: %w", his, err)
	}
	return lo, hi, nil
}
