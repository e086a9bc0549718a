// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagsFromParams creates a [pflag.FlagSet] with flags bound to the tagged
// fields of params. params must be a pointer to a struct. Panics on
// invalid input (programming error, not runtime data).
//
// This is the convenience wrapper for the common pattern:
//
//	var params myParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        return cli.FlagsFromParams("mycommand", &params)
//	    },
//	    Run: func(args []string) error {
//	        // params fields are populated after flag parsing
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers pflag entries for each tagged field in params.
// params must be a pointer to a struct.
//
// # Struct tags
//
// Three tags control flag binding:
//
//   - flag:"name" or flag:"name,n": the long flag name and optional single-
//     character shorthand. Fields without a flag tag are skipped.
//   - desc:"help text": the flag's help description.
//   - default:"value": the default value, parsed according to the field's
//     Go type. If omitted, the type's zero value is used.
//
// # Supported field types
//
// string, bool, int, int64, float64, [time.Duration], []string.
//
// Embedded struct fields are bound recursively.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStructFields(value.Elem(), flagSet)
}

func bindStructFields(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()

	for i := range structType.NumField() {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStructFields(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		tag, ok := field.Tag.Lookup("flag")
		if !ok || tag == "" {
			continue
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}

		name, shorthand, _ := strings.Cut(tag, ",")
		binding := flagField{
			name:        name,
			shorthand:   shorthand,
			description: field.Tag.Get("desc"),
			defaultText: field.Tag.Get("default"),
		}
		if err := binding.bind(flagSet, fieldValue.Addr().Interface()); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	return nil
}

// flagField is one flag as described by a struct field's tags.
type flagField struct {
	name        string
	shorthand   string
	description string
	defaultText string
}

// bind defines the flag on flagSet with target as its variable.
func (f flagField) bind(flagSet *pflag.FlagSet, target any) error {
	switch target := target.(type) {
	case *string:
		flagSet.StringVarP(target, f.name, f.shorthand, f.defaultText, f.description)
		return nil
	case *[]string:
		var values []string
		if f.defaultText != "" {
			values = strings.Split(f.defaultText, ",")
		}
		flagSet.StringSliceVarP(target, f.name, f.shorthand, values, f.description)
		return nil
	case *bool:
		return defineParsed(f, strconv.ParseBool, func(value bool) {
			flagSet.BoolVarP(target, f.name, f.shorthand, value, f.description)
		})
	case *int:
		return defineParsed(f, strconv.Atoi, func(value int) {
			flagSet.IntVarP(target, f.name, f.shorthand, value, f.description)
		})
	case *int64:
		return defineParsed(f, func(text string) (int64, error) { return strconv.ParseInt(text, 10, 64) }, func(value int64) {
			flagSet.Int64VarP(target, f.name, f.shorthand, value, f.description)
		})
	case *float64:
		return defineParsed(f, func(text string) (float64, error) { return strconv.ParseFloat(text, 64) }, func(value float64) {
			flagSet.Float64VarP(target, f.name, f.shorthand, value, f.description)
		})
	case *time.Duration:
		return defineParsed(f, time.ParseDuration, func(value time.Duration) {
			flagSet.DurationVarP(target, f.name, f.shorthand, value, f.description)
		})
	default:
		return fmt.Errorf("unsupported type %T for flag --%s", target, f.name)
	}
}

// defineParsed parses the tag default (empty means the zero value) and
// hands it to define.
func defineParsed[T any](f flagField, parse func(string) (T, error), define func(T)) error {
	var value T
	if f.defaultText != "" {
		parsed, err := parse(f.defaultText)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", f.name, err)
		}
		value = parsed
	}
	define(value)
	return nil
}

// SetDefault replaces the default of an already defined flag, for
// defaults that come from a configuration file rather than a struct
// tag. The bound variable takes the new value and --help shows it, but
// the flag is not marked as changed. For slice flags a later
// command-line value replaces the default instead of appending to it.
func SetDefault(flagSet *pflag.FlagSet, name string, value any) error {
	flag := flagSet.Lookup(name)
	if flag == nil {
		return fmt.Errorf("no flag --%s", name)
	}

	switch typed := value.(type) {
	case []string:
		slice, ok := flag.Value.(pflag.SliceValue)
		if !ok {
			return fmt.Errorf("flag --%s does not take a list", name)
		}
		if err := slice.Replace(typed); err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
	case string, bool, int, int64, float64, time.Duration:
		if err := flag.Value.Set(fmt.Sprint(typed)); err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
	default:
		return fmt.Errorf("unsupported default type %T for --%s", value, name)
	}

	flag.DefValue = flag.Value.String()
	return nil
}
