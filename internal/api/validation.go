package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Validate returns a message for the caller, empty when the request is fine.
func (r ResearchRequest) Validate() string {
	err := validate.Struct(r)
	if err == nil {
		return ""
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Bad Request"
	}
	switch fieldErrs[0].Field() {
	case "Query":
		return "query is required"
	default:
		return "at least one file is required in the files field"
	}
}
