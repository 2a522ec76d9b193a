package transport

import (
	"regexp"

	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// Content types outside the scored set are accepted as long as they look like one.
var contentTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// RegisterValidations installs the lead specific tags used by the request DTOs:
//
//	action_type           one of the tracked action kinds
//	content_type          a lower-case content classifier
//	lead_status_terminal  converted or lost
func RegisterValidations(val *validator.Validator) error {
	rules := map[string]playground.Func{
		"action_type": func(fl playground.FieldLevel) bool {
			return domain.ActionType(fl.Field().String()).Valid()
		},
		"content_type": func(fl playground.FieldLevel) bool {
			return contentTypePattern.MatchString(fl.Field().String())
		},
		"lead_status_terminal": func(fl playground.FieldLevel) bool {
			return domain.Status(fl.Field().String()).Terminal()
		},
	}
	for tag, fn := range rules {
		if err := val.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
