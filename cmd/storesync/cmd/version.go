package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// VersionInfo is the JSON payload of the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Success(VersionInfo{Version: Version, BuildTime: BuildTime}, func(w io.Writer) {
				fmt.Fprintf(w, "storesync version %s (built %s)\n", Version, BuildTime)
			})
		},
	}
}
