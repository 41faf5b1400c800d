package dto

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON shape of every failed request.
type ErrorResponse struct {
	Error  string                 `json:"error"`
	Fields []apperrors.FieldError `json:"fields,omitempty"`
}

// NewValidationError converts a binding error into a typed validation error listing each failing field.
func NewValidationError(err error) *apperrors.ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &apperrors.ValidationError{}
		for _, fe := range verrs {
			out.Add(fe.Field(), reasonFor(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.NewValidationError(typeErr.Field, "must be a "+typeErr.Type.String())
	}
	return apperrors.NewValidationError("body", "malformed JSON")
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// UseJSONFieldNames makes v report a field by its json tag, so FieldError.Field()
// returns the key the client sent.
func UseJSONFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		UseJSONFieldNames(v)
	}
}
