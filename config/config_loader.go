package config

import (
	"fmt"
	"net/http"
	"os"
	"reflect"

	"github.com/YaCodeDev/GoYaTgBotAPI/valueparser"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
)

// LoadConfigStructFromEnv loads environment variables into a struct.
// Field names are converted to SCREAMING_SNAKE_CASE and nested structs prefix
// their fields with their own name. A field that is zero and has no `default`
// tag is required.
//
// This is a wrapper around LoadConfigStructFromEnvHandlingError that exits on error.
//
// Example usage:
//
//	type Redis struct {
//		Host string `default:"localhost"`
//		Port uint16 `default:"6379"`
//	}
//
//	type Config struct {
//		BotToken string
//		Redis    Redis
//		LogLevel yalogger.Level `default:"info"`
//	}
//
//	var cfg Config
//
//	config.LoadConfigStructFromEnv(&cfg, nil) // reads BOT_TOKEN, REDIS_HOST, REDIS_PORT, LOG_LEVEL
func LoadConfigStructFromEnv[T any](instance *T, log yalogger.Logger) {
	safetyCheck(&log)

	if err := LoadConfigStructFromEnvHandlingError(instance, log); err != nil {
		log.Fatalf("Failed to load config struct from env: %v", err)
	}
}

// LoadConfigStructFromEnvHandlingError is LoadConfigStructFromEnv returning
// the error instead of exiting. A .env file in the working directory is read
// first; variables already present in the environment win over it.
func LoadConfigStructFromEnvHandlingError[T any](instance *T, log yalogger.Logger) yaerrors.Error {
	safetyCheck(&log)

	if err := loadDotEnv(DotEnvFile); err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}

	value := reflect.ValueOf(instance).Elem()
	if value.Kind() != reflect.Struct {
		return yaerrors.FromErrorWithLog(
			http.StatusInternalServerError,
			ErrConfigStructMustBeStruct,
			fmt.Sprintf("config loader, got %T", instance),
			log,
		)
	}

	return loadConfigStructFromEnv(value, "", log)
}

func loadConfigStructFromEnv(
	structValue reflect.Value,
	keyPath string,
	log yalogger.Logger,
) yaerrors.Error {
	structType := structValue.Type()

	for i := range structValue.NumField() {
		field := structType.Field(i)
		fieldVal := structValue.Field(i)
		defaultValStr, hasDefault := field.Tag.Lookup(DefaultTagName)

		if !fieldVal.CanSet() {
			log.Warnf("Field %s cannot be set", field.Name)

			continue
		}

		envKey := toScreamingSnakeCase(field.Name)
		if keyPath != "" {
			envKey = keyPath + "_" + envKey
		}

		if field.Type.Kind() == reflect.Struct && !isLeaf(fieldVal) {
			if err := loadConfigStructFromEnv(fieldVal, envKey, log); err != nil {
				return err.Wrap("failed to load struct field " + field.Name)
			}

			continue
		}

		raw, exists := os.LookupEnv(envKey)

		switch {
		case exists:
		case !fieldVal.IsZero():
			continue
		case hasDefault:
			raw = defaultValStr
		default:
			return yaerrors.FromErrorWithLog(
				http.StatusInternalServerError,
				ErrValueIsRequired,
				"config loader: "+envKey,
				log,
			)
		}

		if err := valueparser.ParseInto(raw, fieldVal); err != nil {
			return err.WrapWithLog(fmt.Sprintf("config loader: field %s", field.Name), log)
		}
	}

	return nil
}

// isLeaf reports whether a struct-kinded field parses itself from text.
func isLeaf(v reflect.Value) bool {
	ptr := v.Addr().Interface()

	_, isText := ptr.(interface{ UnmarshalText([]byte) error })
	_, isCustom := ptr.(valueparser.Unmarshalable)

	return isText || isCustom
}
