package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewLogCommand creates the log command
func NewLogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Manage daemon logging",
	}
	cmd.AddCommand(newLogLevelCommand())
	return cmd
}

func newLogLevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "level [debug|info|warn|error]",
		Short: "Show or change the daemon log level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := clientFromCmd(cmd)

			var level string
			var err error
			if len(args) == 0 {
				level, err = c.GetLogLevel()
			} else {
				level, err = c.SetLogLevel(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to access log level: %w", err)
			}

			return render(cmd, map[string]string{"level": level}, func(w io.Writer) error {
				switch {
				case outputFormat(cmd) == OutputParseable:
					fmt.Fprintf(w, "level=%s\n", level)
				case len(args) > 0:
					fmt.Fprint(w, pterm.Success.Sprintfln("Daemon log level set to %s", level))
				default:
					fmt.Fprintln(w, level)
				}
				return nil
			})
		},
	}
}
