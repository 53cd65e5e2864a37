// Package config loads struct configuration from environment variables and an
// optional YAML file using the env, default and required struct tags.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Validator interface allows config structs to implement custom validation logic.
// If a config struct implements this interface, validation is called after
// loading configuration from files and environment variables.
type Validator interface {
	Validate() error
}

// setValue parses raw into field according to the field's kind.
func setValue(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to duration: %w", raw, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to convert %s to int: %w", raw, err)
		}
		field.SetInt(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to convert %s to float: %w", raw, err)
		}
		field.SetFloat(v)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to bool: %w", raw, err)
		}
		field.SetBool(v)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		values := strings.Split(raw, ",")
		slice := reflect.MakeSlice(field.Type(), len(values), len(values))
		for i, v := range values {
			slice.Index(i).SetString(strings.TrimSpace(v))
		}
		field.Set(slice)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// applyEnv overlays environment variables onto tagged fields and records which
// fields were set so defaults do not clobber explicit values.
func applyEnv(val reflect.Value, typ reflect.Type, set map[string]bool) error {
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyEnv(field, fieldType.Type, set); err != nil {
				return err
			}
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			continue
		}
		raw, ok := os.LookupEnv(tag)
		if !ok || raw == "" {
			continue
		}

		set[typ.Name()+"."+fieldType.Name] = true
		if err := setValue(field, raw); err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
	}
	return nil
}

// applyDefaults fills zero fields from their default tag and reports missing
// required fields. All problems are collected.
func applyDefaults(val reflect.Value, typ reflect.Type, set map[string]bool) error {
	var result error
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyDefaults(field, fieldType.Type, set); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		defaultTag, hasDefault := fieldType.Tag.Lookup("default")
		required := strings.EqualFold(fieldType.Tag.Get("required"), "true") || fieldType.Tag.Get("required") == "1"

		if field.IsZero() && required && !hasDefault {
			result = multierror.Append(result, fmt.Errorf("required field env:%s / yaml:%s is missing",
				fieldType.Tag.Get("env"), fieldType.Tag.Get("yaml")))
			continue
		}

		if field.IsZero() && hasDefault && defaultTag != "" && !set[typ.Name()+"."+fieldType.Name] {
			if err := setValue(field, defaultTag); err != nil {
				result = multierror.Append(result, fmt.Errorf("default for %s: %w", fieldType.Name, err))
			}
		}
	}
	return result
}

func validate[T any](dest *T) error {
	if validator, ok := any(*dest).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// GetConfigFromEnvVars loads configuration from environment variables only.
// It processes struct tags: env, default, required.
//
//	var cfg MyConfig
//	err := GetConfigFromEnvVars(&cfg)
func GetConfigFromEnvVars[T any](dest *T) error {
	val := reflect.ValueOf(dest).Elem()
	set := make(map[string]bool)

	if err := applyEnv(val, val.Type(), set); err != nil {
		return err
	}
	if err := applyDefaults(val, val.Type(), set); err != nil {
		var zero T
		*dest = zero
		return err
	}
	return validate(dest)
}

// GetConfig loads configuration from a YAML file first, then overlays environment
// variables. If filepath is empty only environment variables are used. When
// allowFileErrors is true, an unreadable or malformed file falls back to env only.
func GetConfig[T any](dest *T, filepath string, allowFileErrors bool) error {
	if filepath == "" {
		return GetConfigFromEnvVars(dest)
	}

	data, err := os.ReadFile(filepath) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		if allowFileErrors {
			var zero T
			*dest = zero
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return GetConfigFromEnvVars(dest)
}
