package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// HandleValidationErrors converts a ReadJSON failure into a per-field error
// response. Struct-tag validation failures map to field -> message; anything
// else (malformed JSON) becomes a generic 400.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		CreateFieldErrors(ctx, iris.StatusBadRequest, wrapValidationErrors(errs))
		return
	}
	CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
}

func wrapValidationErrors(errs validator.ValidationErrors) map[string]string {
	fieldErrors := make(map[string]string, len(errs))
	for _, validationErr := range errs {
		field := strings.ToLower(validationErr.Field())
		switch validationErr.ActualTag() {
		case "required":
			fieldErrors[field] = "this field is required"
		case "email":
			fieldErrors[field] = "must be a valid email address"
		case "min", "gte":
			fieldErrors[field] = fmt.Sprintf("must be at least %s", validationErr.Param())
		case "max", "lte":
			fieldErrors[field] = fmt.Sprintf("must be at most %s", validationErr.Param())
		case "oneof":
			fieldErrors[field] = fmt.Sprintf("must be one of: %s", validationErr.Param())
		default:
			fieldErrors[field] = fmt.Sprintf("failed %s validation", validationErr.ActualTag())
		}
	}
	return fieldErrors
}
