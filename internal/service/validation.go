package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
)

// validationError converts validator output into ErrValidation with one
// detail entry per failing field.
func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details[lowerFirst(fe.Field())] = rule
	}
	detailed := appErrors.WithDetails(appErrors.ErrValidation, details)
	detailed.Message = message
	detailed.Err = err
	return detailed
}

// fieldError builds a single field validation failure.
func fieldError(field, rule, message string) error {
	detailed := appErrors.WithDetails(appErrors.ErrValidation, map[string]string{field: rule})
	detailed.Message = message
	return detailed
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}
