package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"seungpyo.lee/SurveyBuilder/internal/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator used for schemas checked outside
// request binding (struct tag "validate").
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := configure(validate); err != nil {
			panic(err)
		}
	})
	return validate
}

// Setup applies the same tag naming and custom rules to gin's binding
// engine. Call once before building the router.
func Setup() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return configure(v)
}

func configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("question_type", questionType); err != nil {
		return fmt.Errorf("failed to register question_type: %w", err)
	}
	if err := v.RegisterValidation("present", present); err != nil {
		return fmt.Errorf("failed to register present: %w", err)
	}
	return nil
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func questionType(fl validator.FieldLevel) bool {
	return domain.QuestionType(fl.Field().String()).Valid()
}

// present passes when the key was in the payload, even with a null or
// empty value. Only nil slices (missing keys) fail.
func present(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return !f.IsNil()
	default:
		return true
	}
}

// Struct validates s and translates failures, prefixing every field key.
func Struct(s any, prefix string) *domain.ValidationError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	return Translate(err, prefix)
}

// Translate turns binding or validation errors into a ValidationError.
// It returns nil for errors it does not understand.
func Translate(err error, prefix string) *domain.ValidationError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := &domain.ValidationError{}
		for _, fe := range fieldErrs {
			field := prefix + fieldPath(fe)
			out.Add(field, message(field, fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeError(prefix+typeErr.Field, typeErr)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) {
		return domain.NewValidationError("body", "The request body must be valid JSON.")
	}
	return nil
}

// fieldPath drops the root struct name and turns "a[0].b" into "a.0.b".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.NewReplacer("[", ".", "]", "").Replace(ns)
	return ns
}

// attribute renders a field key the way messages name it: the last path
// segment with underscores as spaces.
func attribute(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return strings.ReplaceAll(field, "_", " ")
}

func message(field string, fe validator.FieldError) string {
	name := attribute(field)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "present":
		return fmt.Sprintf("The %s field must be present.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", name, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", attribute(strings.ToLower(fe.Param())))
	case "question_type":
		return fmt.Sprintf("The selected %s is invalid.", name)
	default:
		return fmt.Sprintf("The %s is invalid.", name)
	}
}

func typeError(field string, e *json.UnmarshalTypeError) *domain.ValidationError {
	return domain.NewValidationError(field, fmt.Sprintf("The %s field must be a %s.", attribute(field), typeName(e.Type)))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "valid value"
	}
}
