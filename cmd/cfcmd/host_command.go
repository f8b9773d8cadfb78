package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"github.com/sam0x17/containerflare/command"
	"github.com/sam0x17/containerflare/logging"
)

func newHostCommand() *cobra.Command {
	var listenFlag string

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Run a stub host peer that acknowledges every command",
		Long: `Run a stub host-side peer for local development. It listens on a TCP or
Unix socket endpoint and answers every request line with ok:true, echoing the
command and payload back, so a container can exercise its command channel
without a real platform shim.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, err := command.ParseEndpoint(listenFlag)
			if err != nil {
				return err
			}

			var network string
			switch endpoint.Kind {
			case command.EndpointTCP:
				network = "tcp"
			case command.EndpointUnix:
				network = "unix"
			default:
				return fmt.Errorf("host requires a tcp:// or unix:// endpoint, got %s", endpoint)
			}

			ln, err := net.Listen(network, endpoint.Address)
			if err != nil {
				return err
			}
			defer ln.Close()

			logger, err := logging.New(logging.Options{Level: "info"})
			if err != nil {
				return err
			}
			logger.Info("stub host listening", slog.String("endpoint", endpoint.String()))

			go func() {
				<-cmd.Context().Done()
				_ = ln.Close()
			}()

			hostServe(ln, logger)
			return nil
		},
	}

	cmd.Flags().StringVar(&listenFlag, "listen", "tcp://127.0.0.1:4100", "Endpoint to listen on")
	return cmd
}

func hostServe(ln net.Listener, logger *slog.Logger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go hostHandleConn(conn, logger)
	}
}

func hostHandleConn(conn net.Conn, logger *slog.Logger) {
	defer conn.Close()
	logger.Info("container connected", slog.String("remote", conn.RemoteAddr().String()))

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()

		var req command.Request
		var resp command.Response
		if err := json.Unmarshal(line, &req); err != nil {
			resp = command.Response{Diagnostic: fmt.Sprintf("malformed request: %v", err)}
			logger.Warn("malformed request line", slog.String("error", err.Error()))
		} else {
			echo, err := json.Marshal(map[string]json.RawMessage{
				"command": json.RawMessage(fmt.Sprintf("%q", req.Command)),
				"echo":    req.Payload,
			})
			if err != nil {
				resp = command.Response{Diagnostic: "echo encoding failed"}
			} else {
				resp = command.Response{OK: true, Payload: echo}
			}
			logger.Info("command", slog.String("command", req.Command))
		}

		out, err := json.Marshal(resp)
		if err != nil {
			return
		}
		if _, err := conn.Write(append(out, '\n')); err != nil {
			return
		}
	}
}
