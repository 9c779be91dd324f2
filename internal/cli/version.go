package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/forge/internal/tui"
)

// versionInfo is the JSON form of the version command.
type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func addVersionCommand(parent *cobra.Command, info BuildInfo) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if cmd.Flag("output").Value.String() != OutputJSON {
				_, err := fmt.Fprintf(w, "forge %s\n", formatVersion(info))
				return err
			}
			v := versionInfo{
				Version:   info.Version,
				Commit:    info.Commit,
				Date:      info.Date,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			if v.Version == "" {
				v.Version = "dev"
			}
			return tui.NewJSONOutput(w).JSON(v)
		},
	}
	parent.AddCommand(cmd)
}
