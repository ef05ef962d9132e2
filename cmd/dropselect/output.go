package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jask/dropselect/internal/selector"
)

type outputOption struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

type result struct {
	Multi  []outputOption `json:"multi" yaml:"multi"`
	Single *outputOption  `json:"single" yaml:"single"`
}

func newResult(multi []*selector.Option, single *selector.Option) result {
	r := result{Multi: make([]outputOption, 0, len(multi))}
	for _, o := range multi {
		r.Multi = append(r.Multi, newOutputOption(o))
	}
	if single != nil {
		o := newOutputOption(single)
		r.Single = &o
	}
	return r
}

// Numeric option values stay numbers in json and yaml output.
func newOutputOption(o *selector.Option) outputOption {
	if o.Value.IsNumber() {
		return outputOption{Label: o.Label, Value: o.Value.Number()}
	}
	return outputOption{Label: o.Label, Value: o.Value.String()}
}

func formatOutput(r result, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "yaml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\n"), nil

	case "text":
		fallthrough
	default:
		var sb strings.Builder
		labels := make([]string, 0, len(r.Multi))
		for _, o := range r.Multi {
			labels = append(labels, o.Label)
		}
		sb.WriteString(fmt.Sprintf("multi:  %s\n", strings.Join(labels, ", ")))
		single := ""
		if r.Single != nil {
			single = r.Single.Label
		}
		sb.WriteString(fmt.Sprintf("single: %s", single))
		return sb.String(), nil
	}
}
