package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sam0x17/containerflare/command"
	"github.com/sam0x17/containerflare/config"
)

func newRootCommand() *cobra.Command {
	var endpointFlag string
	var timeoutFlag time.Duration
	var configFlag string

	opts := &clientOptions{
		endpoint:   &endpointFlag,
		timeout:    &timeoutFlag,
		configPath: &configFlag,
	}

	rootCmd := &cobra.Command{
		Use:           "cfcmd",
		Short:         "Developer tool for the containerflare host command channel",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Command endpoint (stdio, tcp://host:port, unix://path, disabled)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "Per-command response timeout")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newSendCommand(opts))
	rootCmd.AddCommand(newPingCommand(opts))
	rootCmd.AddCommand(newPlatformCommand())
	rootCmd.AddCommand(newHostCommand())

	return rootCmd
}

// clientOptions resolves the endpoint and timeout from flags over config.
type clientOptions struct {
	endpoint   *string
	timeout    *time.Duration
	configPath *string
}

func (o *clientOptions) dial() (*command.Client, error) {
	cfg, err := config.Resolve(*o.configPath)
	if err != nil {
		return nil, err
	}

	endpoint, err := cfg.CommandEndpoint()
	if err != nil {
		return nil, err
	}
	if *o.endpoint != "" {
		endpoint, err = command.ParseEndpoint(*o.endpoint)
		if err != nil {
			return nil, err
		}
	}

	timeout := cfg.CommandTimeout()
	if *o.timeout > 0 {
		timeout = *o.timeout
	}

	return command.ConnectTimeout(endpoint, timeout)
}
