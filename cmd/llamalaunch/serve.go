package main

import (
	"github.com/spf13/cobra"

	"llamalaunch/internal/config"
	"llamalaunch/internal/httpapi"
	"llamalaunch/internal/launcher"
	"llamalaunch/internal/llamaserver"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var preflight bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Validate the environment and serve the model (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			factory := &llamaserver.Factory{
				Bin:          cfg.LlamaBin,
				UpstreamHost: cfg.UpstreamHost,
				ReadyTimeout: cfg.ReadyTimeout(),
				ExtraArgs:    cfg.ExtraArgs,
				Preflight:    preflight,
				Log:          log,
				HTTP: httpapi.Options{
					Logger:       log,
					LogLevel:     httpapi.ParseLogLevel(cfg.LogLevel),
					MaxBodyBytes: cfg.MaxBodyBytes,
					CORSOrigins:  cfg.CORSOrigins,
					BaseContext:  ctx,
				},
			}
			l := launcher.New(
				launcher.WithBuilder(probingBuilder(ctx, cfg.LlamaBin, log)),
				launcher.WithFactory(factory),
				launcher.WithLogger(log),
				launcher.WithOutput(cmd.OutOrStdout()),
				launcher.WithVerbose(cfg.Verbose),
			)
			app, err := l.Launch(ctx, config.Environ())
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&preflight, "preflight", false, "load the model in-process before spawning (requires -tags=llama)")
	return cmd
}
