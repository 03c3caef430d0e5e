package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
)

func validateOutput(format string) error {
	switch format {
	case OutputTable, OutputYAML, OutputJSON:
		return nil
	}
	return fmt.Errorf("%w: %q (want table, yaml or json)", ErrUnknownFormat, format)
}

// render writes v as YAML or JSON, or calls table for the table format.
func render(w io.Writer, format string, v any, table func() [][]string) error {
	switch format {
	case OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("render yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("render json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case OutputTable:
		renderTable(w, table(), false)
		return nil
	}
	return validateOutput(format)
}
