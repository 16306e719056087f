package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lightsd/internal/utils"
	"github.com/jmylchreest/lightsd/pkg/client"
)

// NewRootCommand creates the root command. socket is the default daemon socket.
func NewRootCommand(logger *slog.Logger, version, commit, buildDate, socket string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lightsctl",
		Short:        "Control lights managed by lightsd",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(outputFormat(cmd)); err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				level, _ := cmd.Flags().GetString("log-level")
				utils.SetLevel(level)
			}
			if _, ok := cmd.Context().Value(ClientContextKey).(client.ClientInterface); ok {
				return nil
			}
			cmd.SetContext(context.WithValue(cmd.Context(), ClientContextKey, newClient(cmd)))
			return nil
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("socket", socket, "Path to lightsd socket")
	cmd.PersistentFlags().String("url", "", "Base URL of the lightsd HTTP API; overrides --socket")
	cmd.PersistentFlags().StringP("output", "o", OutputTable, "Output format (table, json, yaml, parseable)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	// Add commands
	cmd.AddCommand(newVersionCommand(version, commit, buildDate))
	cmd.AddCommand(NewLightCommand())
	cmd.AddCommand(NewMCUCommand())
	cmd.AddCommand(NewLogCommand())

	if logger != nil {
		cmd.SetContext(context.WithValue(context.Background(), loggerContextKey{}, logger))
	}

	return cmd
}

func newClient(cmd *cobra.Command) client.ClientInterface {
	logger := getLoggerFromCmd(cmd)
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		return client.NewHTTP(logger, url)
	}
	socket, _ := cmd.Flags().GetString("socket")
	return client.New(logger, socket)
}

func clientFromCmd(cmd *cobra.Command) client.ClientInterface {
	return cmd.Context().Value(ClientContextKey).(client.ClientInterface)
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]any{
				"client": map[string]string{
					"version":    version,
					"commit":     commit,
					"build_date": buildDate,
				},
			}
			daemon, err := clientFromCmd(cmd).Version()
			if err == nil {
				info["daemon"] = map[string]string{"version": daemon}
			} else {
				getLoggerFromCmd(cmd).Debug("daemon version unavailable", "error", err)
			}

			return render(cmd, info, func(w io.Writer) error {
				fmt.Fprintf(w, "Client:\n")
				fmt.Fprintf(w, "  Version:    %s\n", version)
				fmt.Fprintf(w, "  Commit:     %s\n", commit)
				fmt.Fprintf(w, "  Build Date: %s\n", buildDate)
				if err != nil {
					fmt.Fprintf(w, "\nDaemon: not reachable\n")
					return nil
				}
				fmt.Fprintf(w, "\nDaemon:\n")
				fmt.Fprintf(w, "  Version:    %s\n", daemon)
				return nil
			})
		},
	}
}
