package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is implemented by request DTOs with rules struct tags cannot express.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields),
// runs the `validate` struct tags and, if dest implements Validator, Validate(). On
// failure it writes a 400 JSON error and returns false; otherwise returns true.
// Callers should return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if errs := ValidateStruct(dest); len(errs) > 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
		return false
	}
	return true
}

// ValidateStruct runs tag validation followed by the Validator hook.
func ValidateStruct(dest any) []string {
	var errs []string
	if err := validate.Struct(dest); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			errs = append(errs, fieldMessage(fe))
		}
	}
	if v, ok := dest.(Validator); ok {
		errs = append(errs, v.Validate()...)
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, minParam(fe))
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "unique":
		return field + " must not contain duplicates"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func minParam(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return "more than " + fe.Param()
	}
	return fe.Param()
}
