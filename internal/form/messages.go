package form

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// message turns a validator error into text shown under the field.
func message(field Field, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid value"
	}
	fe := verrs[0]
	label := field.Label
	if label == "" {
		label = field.ID
	}

	multi := field.Kind == KindCheckbox || field.Kind == KindDateRange
	switch fe.Tag() {
	case "required":
		if multi {
			return fmt.Sprintf("%s requires at least one value", label)
		}
		return fmt.Sprintf("%s is required", label)
	case "min", "gte":
		switch {
		case multi:
			return fmt.Sprintf("Select at least %s", fe.Param())
		case field.Type == TypeNumber:
			return fmt.Sprintf("%s must be at least %s", label, fe.Param())
		default:
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
	case "max", "lte":
		switch {
		case multi:
			return fmt.Sprintf("Select at most %s", fe.Param())
		case field.Type == TypeNumber:
			return fmt.Sprintf("%s must be at most %s", label, fe.Param())
		default:
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "alpha", "alphaunicode":
		return fmt.Sprintf("%s may only contain letters", label)
	case "numeric", "number":
		return fmt.Sprintf("%s must be a number", label)
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, fe.Tag())
	}
}
