package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MysticyDev/OproepBot/internal/models"
	"github.com/go-playground/validator/v10"
)

// Field length limits for the call-up form.
const (
	MaxPurposeLength  = 500
	MaxLocationLength = 200
)

// Validate is a shared validator instance.
var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// FieldError reports a single invalid form field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// submissionInput mirrors the form fields so the shared validator can apply
// the required/max rules after trimming.
type submissionInput struct {
	Purpose  string `validate:"required,max=500"`
	Location string `validate:"required,max=200"`
}

// ValidateSubmission trims and validates raw form field values and produces a
// Submission. It performs no network or store access.
func ValidateSubmission(userID, optionKey string, fields map[string]string) (*models.Submission, error) {
	input := submissionInput{
		Purpose:  strings.TrimSpace(fields[models.FieldPurpose]),
		Location: strings.TrimSpace(fields[models.FieldLocation]),
	}

	if err := Validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, toFieldError(verrs[0])
		}
		return nil, &FieldError{Field: models.FieldPurpose, Reason: "invalid value"}
	}

	return &models.Submission{
		UserID:    userID,
		OptionKey: optionKey,
		Purpose:   input.Purpose,
		Location:  input.Location,
	}, nil
}

func toFieldError(fe validator.FieldError) *FieldError {
	field := models.FieldPurpose
	limit := MaxPurposeLength
	if fe.StructField() == "Location" {
		field = models.FieldLocation
		limit = MaxLocationLength
	}

	switch fe.Tag() {
	case "required":
		return &FieldError{Field: field, Reason: "is required"}
	case "max":
		return &FieldError{Field: field, Reason: fmt.Sprintf("exceeds maximum length of %d", limit)}
	default:
		return &FieldError{Field: field, Reason: "invalid value"}
	}
}
