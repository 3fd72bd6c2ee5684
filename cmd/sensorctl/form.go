package main

import (
	"errors"
	"strings"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var errEmptyValue = errors.New("value is required")

// fieldFlags holds one flag per Sensor attribute.
type fieldFlags struct {
	values      map[string]*string
	interactive bool
}

func addFieldFlags(cmd *cobra.Command, skip ...string) *fieldFlags {
	flags := &fieldFlags{values: map[string]*string{}}
	for _, name := range domain.SensorFields {
		if contains(skip, name) {
			continue
		}
		flags.values[name] = cmd.Flags().String(name, "", "Sensor "+name)
	}
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "Fill the fields in an interactive form")
	return flags
}

// changed returns the values of the flags set on the command line.
func (f *fieldFlags) changed(cmd *cobra.Command) map[string]any {
	values := map[string]any{}
	for name, v := range f.values {
		if cmd.Flags().Changed(name) {
			values[name] = *v
		}
	}
	return values
}

// runFieldForm asks for every field, starting from the current values.
func runFieldForm(current map[string]any, skip ...string) (map[string]any, error) {
	inputs := map[string]*string{}
	var fields []huh.Field
	for _, name := range domain.SensorFields {
		if contains(skip, name) {
			continue
		}
		value := ""
		if s, ok := current[name].(string); ok {
			value = s
		}
		inputs[name] = &value
		fields = append(fields, huh.NewInput().
			Title(name).
			Key(name).
			Validate(requiredInput).
			Value(inputs[name]))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return nil, err
	}

	values := make(map[string]any, len(inputs))
	for name, v := range inputs {
		values[name] = strings.TrimSpace(*v)
	}
	return values, nil
}

func requiredInput(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmptyValue
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
