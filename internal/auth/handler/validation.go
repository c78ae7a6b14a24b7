package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondValidation turns a binding failure into a 422 with per-field
// detail. Malformed JSON gets a single body-level entry.
func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": "Validation failed.",
		"errors":  validationDetails(err),
	})
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "invalid request body"}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[jsonFieldName(fe.Field())] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

// jsonFieldName lowercases the leading character of a struct field
// name to match the request payload's camelCase keys.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return string(field[0]|0x20) + field[1:]
}
