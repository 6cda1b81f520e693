package task

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
)

// Field limits, counted in characters.
const (
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
)

// Validation rules shared by struct tags and single-field checks.
const (
	TitleRule       = "required,min=3,max=200"
	DescriptionRule = "max=500"
)

var validate = newValidator()

// newValidator reports fields by their json names so messages match the wire format.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct checks v against its validate tags and returns an
// INVALID_INPUT error listing every failed field.
func ValidateStruct(v any) error {
	return toInputError(validate.Struct(v))
}

// ValidateField checks a single value against a rule, reporting it under name.
func ValidateField(name string, value any, rule string) error {
	err := validate.Var(value, rule)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, describe(name, fe.Tag(), fe.Param()))
		}
		return clierr.New(clierr.InvalidInput, strings.Join(parts, "; ")).
			WithDetails(map[string]any{"fields": map[string]string{name: verrs[0].Tag()}})
	}
	return err
}

func toInputError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = fe.Tag()
		parts = append(parts, describe(name, fe.Tag(), fe.Param()))
	}
	return clierr.New(clierr.InvalidInput, strings.Join(parts, "; ")).
		WithDetails(map[string]any{"fields": fields})
}

func describe(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	default:
		return fmt.Sprintf("%s failed %q", field, tag)
	}
}

// ValidateDate returns an error for invalid deadline input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ValidateTaskID returns an error for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// NotFound returns the error reported for a missing task.
func NotFound(id int) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: #%d", id).
		WithDetails(map[string]any{"id": id})
}
