// Package validation checks inbound visitor data with go-playground
// validator tags and reports failures as common.ErrValidation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/go-playground/validator/v10"
)

// phonePattern accepts mainland China mobile numbers.
var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// An empty phone means "no phone".
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || phonePattern.MatchString(s)
	})

	return &Validator{v: v}
}

// Struct validates s by its `validate` tags.
func (v *Validator) Struct(s any) error {
	return v.wrap(v.v.Struct(s), "")
}

// Var validates a single value against tag, naming it field in the error.
func (v *Validator) Var(field string, value any, tag string) error {
	return v.wrap(v.v.Var(value, tag), field)
}

func (v *Validator) wrap(err error, field string) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		msgs = append(msgs, name+": "+describe(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid mobile number"
	case "url", "http_url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
