package main

import (
	"github.com/spf13/cobra"

	"github.com/sam0x17/containerflare/platform"
)

func newPlatformCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Show the container platform detected from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := platform.Detect()

			rows := [][]string{{"platform", p.String()}}
			if cf := p.Cloudflare(); cf != nil {
				rows = append(rows, []string{"worker", cf.WorkerName})
			}
			if run := p.CloudRun(); run != nil {
				rows = append(rows,
					[]string{"service", run.Service},
					[]string{"revision", run.Revision},
					[]string{"configuration", run.Configuration},
					[]string{"project", run.ProjectID},
					[]string{"region", run.Region},
				)
			}

			printKV(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}
