package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/lightsd/pkg/client"
)

// NewLightCommand creates the light command
func NewLightCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "light",
		Short: "Manage individual lights",
	}

	cmd.AddCommand(
		newLightListCommand(),
		newLightGetCommand(),
		newLightBrightnessCommand(),
		newLightColorCommand(),
		newLightFlashCommand(),
		newLightPulseCommand(),
		newLightOffCommand(),
		newLightWatchCommand(),
	)

	return cmd
}

// newLightListCommand creates the light list command
func newLightListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lights and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lights, err := clientFromCmd(cmd).ListLights()
			if err != nil {
				return fmt.Errorf("failed to get lights: %w", err)
			}

			return render(cmd, lights, func(w io.Writer) error {
				if outputFormat(cmd) == OutputParseable {
					for _, l := range lights {
						fmt.Fprintln(w, LightParseable(l))
					}
					return nil
				}
				if len(lights) == 0 {
					fmt.Fprint(w, pterm.Info.Sprintln("No lights"))
					return nil
				}
				return renderTable(w, LightsTableData(lights))
			})
		},
	}
}

// newLightGetCommand creates the light get command
func newLightGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id] [property]",
		Short: "Get information about a light",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := clientFromCmd(cmd)

			var lightID string
			if len(args) > 0 {
				lightID = args[0]
			} else {
				selected, err := selectLight(c)
				if err != nil {
					return err
				}
				lightID = selected
			}

			light, err := c.GetLight(lightID)
			if err != nil {
				return fmt.Errorf("failed to get light: %w", err)
			}

			// If a specific property was requested, only show that
			if len(args) > 1 {
				value, err := lightProperty(light, args[1])
				if err != nil {
					return err
				}
				property := strings.ToLower(args[1])
				return render(cmd, map[string]any{property: value}, func(w io.Writer) error {
					if outputFormat(cmd) == OutputParseable {
						fmt.Fprintf(w, "%s=%v\n", property, value)
					} else {
						fmt.Fprintln(w, value)
					}
					return nil
				})
			}

			return printLight(cmd, light, "")
		},
	}
}

// selectLight prompts for a light when none was given
func selectLight(c client.ClientInterface) (string, error) {
	lights, err := c.ListLights()
	if err != nil {
		return "", fmt.Errorf("failed to get lights: %w", err)
	}

	options := make([]string, len(lights))
	for i, l := range lights {
		options[i] = fmt.Sprintf("%s (%d)", l.ID, l.Index)
	}

	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show("Select a light")
	if err != nil {
		return "", fmt.Errorf("failed to select light: %w", err)
	}

	// Extract ID from selected option
	return strings.Split(selected, " (")[0], nil
}

func newLightBrightnessCommand() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "brightness <id> <0-255>",
		Short: "Set an opaque gray level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid brightness value: %w", err)
			}
			if level < 0 || level > 255 {
				return fmt.Errorf("brightness %d out of range 0-255", level)
			}
			light, err := clientFromCmd(cmd).SetBrightness(args[0], level, mode)
			if err != nil {
				return fmt.Errorf("failed to set brightness: %w", err)
			}
			return printLight(cmd, light, fmt.Sprintf("Brightness of %s set to %d", light.ID, level))
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "user", "Who requested the change (user, sensor)")
	return cmd
}

func newLightColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "color <id> <color>",
		Short: "Set a steady color (#RRGGBB, #AARRGGBB or 0x...)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			light, err := clientFromCmd(cmd).SetColor(args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to set color: %w", err)
			}
			return printLight(cmd, light, fmt.Sprintf("Color of %s set to %s", light.ID, light.ColorHex))
		},
	}
}

func newLightFlashCommand() *cobra.Command {
	var mode string
	var onMS, offMS uint32
	cmd := &cobra.Command{
		Use:   "flash <id> <color>",
		Short: "Flash a light",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			light, err := clientFromCmd(cmd).SetFlashing(args[0], args[1], mode, onMS, offMS)
			if err != nil {
				return fmt.Errorf("failed to set flashing: %w", err)
			}
			return printLight(cmd, light, fmt.Sprintf("%s flashing %s", light.ID, light.ColorHex))
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "timed", "Flash mode (none, timed, hardware)")
	cmd.Flags().Uint32Var(&onMS, "on-ms", 500, "On period in milliseconds")
	cmd.Flags().Uint32Var(&offMS, "off-ms", 500, "Off period in milliseconds")
	return cmd
}

func newLightPulseCommand() *cobra.Command {
	var color string
	var onMS uint32
	cmd := &cobra.Command{
		Use:   "pulse <id>",
		Short: "Pulse a light that is currently off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := client.PulseOptions{Color: color}
			if cmd.Flags().Changed("on-ms") {
				opts.OnMS = &onMS
			}
			res, err := clientFromCmd(cmd).Pulse(args[0], opts)
			if err != nil {
				return fmt.Errorf("failed to pulse light: %w", err)
			}
			return render(cmd, res, func(w io.Writer) error {
				if outputFormat(cmd) == OutputParseable {
					fmt.Fprintf(w, "pulsed=%t %s\n", res.Pulsed, LightParseable(res.Light))
					return nil
				}
				if res.Pulsed {
					fmt.Fprint(w, pterm.Success.Sprintfln("Pulsed %s", res.Light.ID))
				} else {
					fmt.Fprint(w, pterm.Info.Sprintfln("%s is lit; pulse skipped", res.Light.ID))
				}
				return renderTable(w, LightTableData(res.Light))
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Pulse color (daemon default when empty)")
	cmd.Flags().Uint32Var(&onMS, "on-ms", 0, "On period in milliseconds (daemon default when unset)")
	return cmd
}

func newLightOffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "off <id>",
		Short: "Switch a light off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			light, err := clientFromCmd(cmd).TurnOff(args[0])
			if err != nil {
				return fmt.Errorf("failed to turn off light: %w", err)
			}
			return printLight(cmd, light, fmt.Sprintf("%s switched off", light.ID))
		},
	}
}

func newLightWatchCommand() *cobra.Command {
	var types []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream light events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			emit := eventPrinter(cmd)
			err := clientFromCmd(cmd).Watch(cmd.Context(), types, emit)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&types, "types", nil, "Event types to watch (default all)")
	return cmd
}

// eventPrinter writes one event per line, or one document per event for YAML.
func eventPrinter(cmd *cobra.Command) func(client.Event) error {
	w := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case OutputJSON:
		enc := json.NewEncoder(w)
		return func(e client.Event) error { return enc.Encode(e) }
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		return func(e client.Event) error {
			doc := map[string]any{"type": e.Type, "timestamp": e.Timestamp}
			if len(e.Data) > 0 {
				var data any
				if err := json.Unmarshal(e.Data, &data); err != nil {
					return err
				}
				doc["data"] = data
			}
			return enc.Encode(doc)
		}
	case OutputParseable:
		return func(e client.Event) error {
			_, err := fmt.Fprintf(w, "type=%q timestamp=%d data=%s\n", e.Type, e.Timestamp.Unix(), rawOrNull(e.Data))
			return err
		}
	default:
		return func(e client.Event) error {
			_, err := fmt.Fprintf(w, "%s  %-20s %s\n", e.Timestamp.Format(time.RFC3339), e.Type, rawOrNull(e.Data))
			return err
		}
	}
}

func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
