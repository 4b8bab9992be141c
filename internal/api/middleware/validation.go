package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"koenote-pipeline/internal/api/errors"
)

// Validator lets request DTOs add domain rules on top of binding tags.
type Validator interface {
	Validate() error
}

// ValidateRequest binds and validates a JSON request body.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		fields := make(map[string]string)
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrs {
				field := strings.ToLower(fieldError.Field())
				switch fieldError.Tag() {
				case "required":
					fields[field] = "is required"
				case "min":
					fields[field] = "is too short"
				case "max":
					fields[field] = "is too long"
				default:
					fields[field] = "is invalid"
				}
			}
		} else {
			fields["request"] = "invalid JSON format"
		}
		return errors.NewValidationError("Validation failed", fields)
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
