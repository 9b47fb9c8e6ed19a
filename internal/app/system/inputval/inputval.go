// internal/app/system/inputval/inputval.go
package inputval

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/waffle/pantry/validate"
	"github.com/go-playground/validator/v10"
)

// FieldError is a single failed rule, keyed by the form field name.
type FieldError struct {
	Field   string
	Message string
}

// Result collects every field error found by Validate, in struct field order.
// At most one error is reported per field: the first rule that fails.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or "" when valid.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// For returns the message for one field, or "".
func (r *Result) For(field string) string {
	for _, e := range r.Errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Map returns field -> message. The map is never nil.
func (r *Result) Map() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("form"); name != "" && name != "-" {
				return name
			}
			return f.Name
		})
		_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
	})
	return v
}

// Validate runs the `validate` rules declared on a struct's fields.
//
// Rule tables are declared with struct tags:
//
//	Username string `form:"username" validate:"required,min=3" msg:"min=Minimum 3 letters"`
//
// The optional `msg` tag overrides the default message per rule, as a
// ";"-separated list of rule=message pairs. A bare message (no "=") applies
// to every rule of that field.
func Validate(input any) Result {
	err := instance().Struct(input)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Message: err.Error()}}}
	}

	rt := reflect.TypeOf(input)
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	var res Result
	seen := map[string]bool{}
	for _, fe := range verrs {
		field := fe.Field()
		if seen[field] {
			continue
		}
		seen[field] = true

		var overrides string
		if sf, ok := rt.FieldByName(fe.StructField()); ok {
			overrides = sf.Tag.Get("msg")
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   field,
			Message: message(fe, overrides),
		})
	}
	return res
}

func message(fe validator.FieldError, overrides string) string {
	if overrides != "" {
		for _, part := range strings.Split(overrides, ";") {
			tag, msg, found := strings.Cut(part, "=")
			if !found {
				return strings.TrimSpace(part)
			}
			if strings.TrimSpace(tag) == fe.Tag() {
				return strings.TrimSpace(msg)
			}
		}
	}

	switch fe.Tag() {
	case "required":
		return "Required"
	case "email", "emailaddr":
		return "Invalid email"
	case "httpurl":
		return "Invalid URL"
	case "min":
		return "Minimum " + fe.Param() + " characters"
	case "max":
		return "Maximum " + fe.Param() + " characters"
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return "Invalid value"
	}
}

// IsValidEmail reports whether s is a plausible email address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return validate.SimpleEmailValid(s)
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
