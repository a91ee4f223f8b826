package main

import (
	"github.com/spf13/cobra"

	"github.com/caltrack/caltrack/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
			if daemonVersion, err := apiClient.GetVersion(cmd.Context()); err == nil {
				if daemonVersion != version.Version {
					cmd.Printf("daemon: %s (version mismatch)\n", daemonVersion)
				}
			}
		},
	}
}
