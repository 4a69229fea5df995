package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindAndValidate binds the JSON body into req. On failure it writes the
// 422 envelope with per-field messages and returns false.
func bindAndValidate(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		ValidationFailed(c, translateValidationErrors(req, verrs))
		return false
	}

	ValidationFailed(c, map[string][]string{
		"request": {"The request body could not be parsed."},
	})
	return false
}

// translateValidationErrors keys messages by the field's json tag so the
// error map matches the request body, not the Go struct.
func translateValidationErrors(req any, errs validator.ValidationErrors) map[string][]string {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make(map[string][]string, len(errs))
	for _, fe := range errs {
		name := fe.StructField()
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
				name = tag
			}
		}
		out[name] = append(out[name], validationMessage(name, fe))
	}
	return out
}

func validationMessage(field string, fe validator.FieldError) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", strings.ReplaceAll(strings.ToLower(fe.Param()), "_", " "))
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
