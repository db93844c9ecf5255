package main

import (
	"strings"

	"github.com/spf13/cobra"

	"dealflow/internal/mcpserver"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation tools over the Model Context Protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			recorder, err := ctx.recorder(true)
			if err != nil {
				return err
			}
			defer ctx.close()

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			srv := mcpserver.New(runner, recorder, st, cfg.Preferences(), ctx.loggerValue())
			return srv.Serve(cmd.Context(), strings.ToLower(strings.TrimSpace(transport)), addr)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", mcpserver.TransportStdio, "Transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8081", "Listen address for the http transport")
	return cmd
}
