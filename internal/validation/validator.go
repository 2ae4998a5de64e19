package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "travelapp/internal/errors"
	"travelapp/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// NonFieldErrors is the key used for messages that do not belong to one field.
const NonFieldErrors = "non_field_errors"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages line up with the payload the client sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	// decimals are validated as their exact string form
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		switch d := f.Interface().(type) {
		case utils.Money:
			return d.String()
		case decimal.Decimal:
			return d.String()
		}
		return nil
	}, utils.Money{}, decimal.Decimal{})
	v.RegisterValidation("dgt", decimalRule(func(d, p decimal.Decimal) bool { return d.GreaterThan(p) }))
	v.RegisterValidation("dmax", decimalRule(func(d, p decimal.Decimal) bool { return d.LessThanOrEqual(p) }))
	v.RegisterValidation("dplaces", decimalRule(func(d, p decimal.Decimal) bool {
		return d.Equal(d.Truncate(int32(p.IntPart())))
	}))
	return v
}

func decimalRule(ok func(d, param decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		param, err := decimal.NewFromString(fl.Param())
		if err != nil {
			panic(fmt.Sprintf("validation: bad decimal param %q", fl.Param()))
		}
		return ok(d, param)
	}
}

// Struct runs the `validate` tags of s. The returned error is never nil; use
// Empty or OrNil to check the outcome.
func Struct(s interface{}) *apperrors.ValidationError {
	verr := apperrors.NewValidationError()
	err := validate.Struct(s)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add(NonFieldErrors, err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if isString {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "dgt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "dmax":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "dplaces":
		return fmt.Sprintf("Ensure that there are no more than %s decimal places.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "e164":
		return "Enter a valid phone number in E.164 format."
	case "uuid":
		return "Must be a valid UUID."
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	}
	return "Invalid value."
}
