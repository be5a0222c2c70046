package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern  = regexp.MustCompile(`^[\w.@+-]+$`)
	registerOnce     sync.Once
	nonFieldErrorKey = "non_field_errors"
)

func init() {
	RegisterValidators()
}

// RegisterValidators installs the custom binding rules and makes
// validation errors report json field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

// normalizer is implemented by request shapes that clean their fields
// before validation.
type normalizer interface {
	Normalize()
}

// bindJSON decodes the request body into obj, normalizes it and validates it.
// An empty body is validated as an empty object. On failure the 400 response
// is already written.
func bindJSON(c *gin.Context, obj any) bool {
	err := decodeJSON(c.Request.Body, obj)
	if err == nil {
		if n, ok := obj.(normalizer); ok {
			n.Normalize()
		}
		err = binding.Validator.ValidateStruct(obj)
	}
	if err != nil {
		respondValidation(c, bindingErrorFields(err))
		return false
	}
	return true
}

// decodeJSON mirrors gin's JSON binding decoder settings.
func decodeJSON(body io.Reader, obj any) error {
	if body == nil {
		return nil
	}
	decoder := json.NewDecoder(body)
	if binding.EnableDecoderUseNumber {
		decoder.UseNumber()
	}
	if binding.EnableDecoderDisallowUnknownFields {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// bindingErrorFields turns a decode or validation failure into the per-field
// error map used by validation responses.
func bindingErrorFields(err error) map[string][]string {
	fields := make(map[string][]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields[typeErr.Field] = []string{fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type.String())}
		return fields
	}

	fields[nonFieldErrorKey] = []string{"JSON parse error - " + err.Error()}
	return fields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		if fe.Param() == "1" {
			return "This field may not be blank."
		}
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	default:
		return "Invalid value."
	}
}
