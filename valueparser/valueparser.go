// Package valueparser converts strings from the environment into typed values.
package valueparser

import (
	"encoding"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
)

// DefaultEntrySeparator separates slice items.
const DefaultEntrySeparator = ","

// ParsableType is the set of types ParseValue accepts.
type ParsableType interface {
	~string | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~bool | ~[]byte
}

// Unmarshalable is implemented by types with a custom string form, such as
// yalogger.Level.
type Unmarshalable interface {
	Unmarshal(data string) error
}

var durationType = reflect.TypeFor[time.Duration]()

// ParseValue parses value as T.
//
// Example:
//
//	port, err := valueparser.ParseValue[uint16]("6379")
func ParseValue[T ParsableType](value string) (T, yaerrors.Error) {
	var result T

	if err := ParseInto(value, reflect.ValueOf(&result).Elem()); err != nil {
		return result, err
	}

	return result, nil
}

// ParseArray splits str by separator (DefaultEntrySeparator when nil) and
// parses every trimmed part as T. An empty string gives an empty slice.
func ParseArray[T ParsableType](str string, separator *string) ([]T, yaerrors.Error) {
	if str == "" {
		return []T{}, nil
	}

	sep := DefaultEntrySeparator
	if separator != nil {
		sep = *separator
	}

	parts := strings.Split(str, sep)
	result := make([]T, 0, len(parts))

	for _, part := range parts {
		parsed, err := ParseValue[T](strings.TrimSpace(part))
		if err != nil {
			return nil, err.Wrap(fmt.Sprintf("parse array: failed to parse part '%s'", part))
		}

		result = append(result, parsed)
	}

	return result, nil
}

// ParseInto parses value into target, which must be settable. Types
// implementing encoding.TextUnmarshaler or Unmarshalable take precedence over
// their underlying kind. Slices other than []byte are comma separated.
func ParseInto(value string, target reflect.Value) yaerrors.Error {
	if !target.CanSet() {
		return yaerrors.FromError(http.StatusInternalServerError, ErrInvalidType, "parse value: target is not settable")
	}

	if ok, err := tryUnmarshal(value, target); ok {
		return err
	}

	switch target.Kind() {
	case reflect.String:
		target.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if target.Type() == durationType {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return yaerrors.FromError(http.StatusBadRequest, err, "parse value: invalid duration")
			}

			target.SetInt(int64(duration))

			return nil
		}

		parsed, err := strconv.ParseInt(value, 10, target.Type().Bits())
		if err != nil {
			return yaerrors.FromError(http.StatusBadRequest, err, "parse value: invalid integer")
		}

		target.SetInt(parsed)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(value, 10, target.Type().Bits())
		if err != nil {
			return yaerrors.FromError(http.StatusBadRequest, err, "parse value: invalid unsigned integer")
		}

		target.SetUint(parsed)
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(value, target.Type().Bits())
		if err != nil {
			return yaerrors.FromError(http.StatusBadRequest, err, "parse value: invalid float")
		}

		target.SetFloat(parsed)
	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return yaerrors.FromError(http.StatusBadRequest, err, "parse value: invalid bool")
		}

		target.SetBool(parsed)
	case reflect.Slice:
		return parseSlice(value, target)
	default:
		return yaerrors.FromError(
			http.StatusInternalServerError,
			ErrUnknownType,
			"parse value: unsupported type "+target.Type().String(),
		)
	}

	return nil
}

func parseSlice(value string, target reflect.Value) yaerrors.Error {
	if target.Type().Elem().Kind() == reflect.Uint8 {
		target.SetBytes([]byte(value))

		return nil
	}

	if value == "" {
		target.Set(reflect.MakeSlice(target.Type(), 0, 0))

		return nil
	}

	parts := strings.Split(value, DefaultEntrySeparator)
	slice := reflect.MakeSlice(target.Type(), len(parts), len(parts))

	for i, part := range parts {
		if err := ParseInto(strings.TrimSpace(part), slice.Index(i)); err != nil {
			return err.Wrap(fmt.Sprintf("parse slice: item %d", i))
		}
	}

	target.Set(slice)

	return nil
}

func tryUnmarshal(value string, target reflect.Value) (bool, yaerrors.Error) {
	ptr := target.Addr().Interface()

	if unmarshaler, ok := ptr.(encoding.TextUnmarshaler); ok {
		if err := unmarshaler.UnmarshalText([]byte(value)); err != nil {
			return true, yaerrors.FromError(http.StatusBadRequest, err, "parse value: unmarshal text")
		}

		return true, nil
	}

	if unmarshaler, ok := ptr.(Unmarshalable); ok {
		if err := unmarshaler.Unmarshal(value); err != nil {
			return true, yaerrors.FromError(http.StatusBadRequest, err, "parse value: unmarshal")
		}

		return true, nil
	}

	return false, nil
}
