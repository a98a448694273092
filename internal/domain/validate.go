package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// domainValidate is shared by every entity with validate tags.
var domainValidate *validator.Validate

func init() {
	domainValidate = validator.New()

	// "required" accepts whitespace-only strings; names must carry text.
	_ = domainValidate.RegisterValidation("notblank", validateNotBlank)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateStruct runs tag validation and reports the first failure as a
// *ValidationError.
func validateStruct(v any) error {
	err := domainValidate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Reason: validationReason(fe)}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
