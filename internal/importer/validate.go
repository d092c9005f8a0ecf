package importer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names, not Go ones.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseClock(fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		g := sl.Current().Interface().(GroupImport)
		start, err1 := domain.ParseDate(g.PeriodStart)
		end, err2 := domain.ParseDate(g.PeriodEnd)
		if err1 == nil && err2 == nil && end.Before(start) {
			sl.ReportError(g.PeriodEnd, "period_end", "PeriodEnd", "after_start", "")
		}
	}, GroupImport{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		b := sl.Current().Interface().(BlockImport)
		start, err1 := domain.ParseClock(b.StartTime)
		end, err2 := domain.ParseClock(b.EndTime)
		if err1 == nil && err2 == nil && end <= start {
			sl.ReportError(b.EndTime, "end_time", "EndTime", "after_start", "")
		}
	}, BlockImport{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		a := sl.Current().Interface().(AcademyImport)
		start, err1 := domain.ParseClock(a.StartTime)
		end, err2 := domain.ParseClock(a.EndTime)
		if err1 == nil && err2 == nil && end <= start {
			sl.ReportError(a.EndTime, "end_time", "EndTime", "after_start", "")
		}
	}, AcademyImport{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(TimeRangeImport)
		start, err1 := domain.ParseClock(r.Start)
		end, err2 := domain.ParseClock(r.End)
		if err1 == nil && err2 == nil && end <= start {
			sl.ReportError(r.End, "end", "End", "after_start", "")
		}
	}, TimeRangeImport{})

	return v
}

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	if err := validate.Struct(schema); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []error{err}
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}

	errs = append(errs, validateRefs(schema)...)
	return errs
}

func fieldError(fe validator.FieldError) error {
	// Drop the root struct name from the namespace.
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Errorf("%s is required", field)
	case "datetime":
		return fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, fe.Value())
	case "clock":
		return fmt.Errorf("%s: invalid time %q (expected HH:MM)", field, fe.Value())
	case "oneof":
		return fmt.Errorf("%s: invalid value %q (expected one of %s)", field, fe.Value(), fe.Param())
	case "after_start":
		return fmt.Errorf("%s must not be before the start", field)
	case "gtefield":
		return fmt.Errorf("%s must be at least start_range", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Errorf("%s needs at least %s entries", field, fe.Param())
		}
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Errorf("%s failed %s validation", field, fe.Tag())
	}
}

// validateRefs checks what tags cannot: unique content refs, and duration
// entries that point at a declared content.
func validateRefs(schema *ImportSchema) []error {
	var errs []error

	refs := make(map[string]bool)
	declared := make(map[domain.ContentRef]bool)
	for i, c := range schema.Contents {
		if c.Ref != "" && refs[c.Ref] {
			errs = append(errs, fmt.Errorf("contents[%d].ref: duplicate ref %q", i, c.Ref))
		}
		refs[c.Ref] = true
		declared[domain.ContentRef{Type: domain.ContentType(c.ContentType), ID: c.ContentID}] = true
	}

	seen := make(map[domain.ContentRef]bool)
	for i, d := range schema.Durations {
		ref := domain.ContentRef{Type: domain.ContentType(d.ContentType), ID: d.ContentID}
		if !declared[ref] {
			errs = append(errs, fmt.Errorf("durations[%d]: no content %s/%s in contents", i, d.ContentType, d.ContentID))
		}
		if seen[ref] {
			errs = append(errs, fmt.Errorf("durations[%d]: duplicate entry for %s/%s", i, d.ContentType, d.ContentID))
		}
		seen[ref] = true
	}

	dates := make(map[string]bool)
	for i, e := range schema.Exclusions {
		if dates[e.Date] {
			errs = append(errs, fmt.Errorf("exclusions[%d].date: duplicate date %s", i, e.Date))
		}
		dates[e.Date] = true
	}
	return errs
}
