package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	apperrors "travelapp/internal/errors"

	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// DecodeJSON reads one JSON document from r into v. Type mismatches become
// field errors; anything else is a 400 parse error.
func DecodeJSON(r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return FromDecodeError(err)
	}
	return nil
}

// FromDecodeError converts an encoding/json error to a client error.
func FromDecodeError(err error) error {
	if errors.Is(err, io.EOF) {
		return apperrors.ErrBadRequest("JSON parse error - empty body")
	}
	if tooLarge(err) {
		return apperrors.ErrRequestTooLarge
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		verr := apperrors.NewValidationError()
		verr.Add(typeErr.Field, typeMessage(typeErr.Type))
		return verr
	}
	return apperrors.ErrBadRequest("JSON parse error - " + err.Error())
}

// FromReadError converts a failed body read to a client error.
func FromReadError(err error) error {
	if tooLarge(err) {
		return apperrors.ErrRequestTooLarge
	}
	return apperrors.ErrBadRequest("JSON parse error - " + err.Error())
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == decimalType {
		return "A valid number is required."
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Float32, reflect.Float64:
		return "A valid number is required."
	case reflect.String:
		return "Not a valid string."
	case reflect.Bool:
		return "Must be a valid boolean."
	}
	return "Invalid value."
}
