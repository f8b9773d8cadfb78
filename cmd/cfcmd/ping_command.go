package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sam0x17/containerflare/command"
)

func newPingCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Send a health_check command and report the round trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			start := time.Now()
			resp, err := client.Send(cmd.Context(), command.Empty("health_check"))
			if err != nil {
				return err
			}
			elapsed := time.Since(start).Round(time.Microsecond)

			fmt.Fprintf(cmd.OutOrStdout(), "ok in %s\n", elapsed)
			if len(resp.Payload) > 0 && string(resp.Payload) != "null" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", resp.Payload)
			}
			return nil
		},
	}
}
