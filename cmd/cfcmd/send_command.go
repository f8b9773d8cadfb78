package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sam0x17/containerflare/command"
)

func newSendCommand(opts *clientOptions) *cobra.Command {
	var payloadFlag string

	cmd := &cobra.Command{
		Use:   "send <command>",
		Short: "Send one command over the host channel and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload json.RawMessage
			if payloadFlag != "" {
				if !json.Valid([]byte(payloadFlag)) {
					return fmt.Errorf("payload is not valid JSON: %s", payloadFlag)
				}
				payload = json.RawMessage(payloadFlag)
			}

			client, err := opts.dial()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Send(cmd.Context(), command.NewRequest(args[0], payload))
			var failure *command.CommandFailure
			if errors.As(err, &failure) {
				// Show the failure payload the same way as a success.
				printResponse(cmd.OutOrStdout(), command.Response{
					OK:         false,
					Payload:    failure.Payload,
					Diagnostic: failure.Diagnostic,
				})
				return err
			}
			if err != nil {
				return err
			}

			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadFlag, "payload", "", "JSON payload to attach (defaults to null)")
	return cmd
}
