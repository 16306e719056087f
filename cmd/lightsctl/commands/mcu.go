package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

// NewMCUCommand creates the mcu command
func NewMCUCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcu",
		Short: "Inspect the MCU brightness link",
	}
	cmd.AddCommand(newMCUFrameCommand())
	return cmd
}

func newMCUFrameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "frame <brightness>",
		Short: "Show the frame sent to the MCU for a brightness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brightness, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid brightness value: %w", err)
			}
			frame, err := clientFromCmd(cmd).MCUFrame(brightness)
			if err != nil {
				return fmt.Errorf("failed to encode frame: %w", err)
			}

			return render(cmd, frame, func(w io.Writer) error {
				if outputFormat(cmd) == OutputParseable {
					_, err := fmt.Fprintf(w, "brightness=%d level=%d checksum=%d frame=%q\n",
						frame.Brightness, frame.Level, frame.Checksum, frame.Frame)
					return err
				}
				return renderTable(w, [][]string{
					{"Brightness", "Level", "Checksum", "Frame"},
					{
						strconv.Itoa(frame.Brightness),
						fmt.Sprintf("%d (0x%02X)", frame.Level, frame.Level),
						fmt.Sprintf("0x%02X", frame.Checksum),
						frame.Frame,
					},
				})
			})
		},
	}
}
