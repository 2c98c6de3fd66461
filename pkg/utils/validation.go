package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Messages maps "Field.tag" (struct field name and failing validator tag) to
// the text shown to the visitor. "Field" alone is the fallback for any tag.
type Messages map[string]string

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateForm runs the struct's `validate` tags and returns one
// ValidationError per failing field, in field order, using msgs for the text.
func ValidateForm(form any, msgs Messages) []*ValidationError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []*ValidationError{{Message: err.Error()}}
	}

	out := make([]*ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := msgs[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg, ok = msgs[fe.Field()]
		}
		if !ok {
			msg = fe.Field() + " is invalid."
		}
		out = append(out, &ValidationError{Field: strings.ToLower(fe.Field()), Message: msg})
	}
	return out
}

// CleanInput trims surrounding whitespace. Escaping happens at render time.
func CleanInput(s string) string {
	return strings.TrimSpace(s)
}
