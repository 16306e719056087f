package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/lightsd/pkg/client"
)

// Output formats accepted by --output
const (
	OutputTable     = "table"
	OutputJSON      = "json"
	OutputYAML      = "yaml"
	OutputParseable = "parseable"
)

var outputFormats = []string{OutputTable, OutputJSON, OutputYAML, OutputParseable}

func validateOutput(format string) error {
	for _, f := range outputFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q; must be one of: %s", format, strings.Join(outputFormats, ", "))
}

func outputFormat(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("output"); f != nil {
		return f.Value.String()
	}
	return OutputTable
}

// render writes v as JSON or YAML, or calls human for the table and parseable formats.
func render(cmd *cobra.Command, v any, human func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return human(w)
	}
}

func renderTable(w io.Writer, data pterm.TableData) error {
	table := pterm.DefaultTable.WithHasHeader().WithData(data)
	table.Writer = w
	return table.Render()
}

func flashing(l client.Light) string {
	if l.Mode == "none" {
		return "-"
	}
	return fmt.Sprintf("%d/%d ms", l.OnMS, l.OffMS)
}

// LightTableData returns the property table for a single light
func LightTableData(l client.Light) pterm.TableData {
	return pterm.TableData{
		{"Property", "Value"},
		{"ID", pterm.Bold.Sprint(l.ID)},
		{"Index", strconv.Itoa(l.Index)},
		{"On", strconv.FormatBool(l.On)},
		{"Color", l.ColorHex},
		{"Mode", l.Mode},
		{"Flash", flashing(l)},
	}
}

// LightsTableData returns one row per light
func LightsTableData(lights []client.Light) pterm.TableData {
	data := pterm.TableData{{"Index", "ID", "On", "Color", "Mode", "Flash"}}
	for _, l := range lights {
		data = append(data, []string{
			strconv.Itoa(l.Index),
			l.ID,
			strconv.FormatBool(l.On),
			l.ColorHex,
			l.Mode,
			flashing(l),
		})
	}
	return data
}

// LightParseable returns the parseable key=value string for a light
func LightParseable(l client.Light) string {
	return fmt.Sprintf("id=%q index=%d on=%t color=%q mode=%q on_ms=%d off_ms=%d",
		l.ID, l.Index, l.On, l.ColorHex, l.Mode, l.OnMS, l.OffMS)
}

// lightProperty looks up a single field by its JSON name
func lightProperty(l client.Light, property string) (any, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	v, ok := fields[strings.ToLower(property)]
	if !ok {
		return nil, fmt.Errorf("invalid property: %s", property)
	}
	return v, nil
}

func printLight(cmd *cobra.Command, l client.Light, message string) error {
	return render(cmd, l, func(w io.Writer) error {
		if outputFormat(cmd) == OutputParseable {
			_, err := fmt.Fprintln(w, LightParseable(l))
			return err
		}
		if message != "" {
			fmt.Fprint(w, pterm.Success.Sprintln(message))
		}
		return renderTable(w, LightTableData(l))
	})
}
