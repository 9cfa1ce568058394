package configparser

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrNotStructPointer = errors.New("config must be a pointer to struct")

var durationType = reflect.TypeOf(time.Duration(0))

// LoadAndParseYaml loads the YAML file (when present) into the environment,
// fills cfg from `env` / `default` struct tags and validates `validate` tags.
func LoadAndParseYaml(filepath string, cfg any) error {
	if err := LoadYamlFile(filepath); err != nil {
		if !errors.Is(err, ErrNoFilePath) && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// ParseEnv fills exported fields of the struct pointed to by cfg.
// Lookup order: environment variable named by the `env` tag, then the `default` tag.
// Nested structs are walked recursively.
func ParseEnv(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	return parseStruct(v.Elem())
}

func parseStruct(v reflect.Value) error {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := v.Field(i)

		if field.Type.Kind() == reflect.Struct && field.Type != durationType {
			if err := parseStruct(fv); err != nil {
				return err
			}
			continue
		}

		raw, ok := lookup(field)
		if !ok {
			continue
		}
		if err := setField(fv, raw); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func lookup(field reflect.StructField) (string, bool) {
	if name := field.Tag.Get("env"); name != "" {
		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val, true
		}
	}
	if def, ok := field.Tag.Lookup("default"); ok {
		return def, true
	}
	return "", false
}

func setField(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}
