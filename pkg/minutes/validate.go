package minutes

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("minutes_status", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().String()).Valid()
		})
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// Validate checks the record's caps, required fields and status values.
// The returned error wraps ErrValidation and lists every failing field.
func Validate(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", mnerrors.ErrValidation)
	}
	err := recordValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", mnerrors.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", mnerrors.ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Record.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s has more than %s entries", field, fe.Param())
	case "minutes_status":
		return fmt.Sprintf("%s %q is not one of %s", field, fe.Value(), statusList())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func statusList() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
