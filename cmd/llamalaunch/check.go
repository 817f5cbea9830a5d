package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"llamalaunch/internal/common/fsutil"
	"llamalaunch/internal/config"
	"llamalaunch/internal/launcher"
	"llamalaunch/internal/llamaserver"
	"llamalaunch/internal/settings"
)

func newCheckCmd(g *globalFlags) *cobra.Command {
	var (
		asJSON    bool
		preflight bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the environment and build settings without serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			status := out
			if asJSON {
				status = io.Discard
			}
			l := launcher.New(
				launcher.WithBuilder(probingBuilder(cmd.Context(), cfg.LlamaBin, log)),
				launcher.WithLogger(log),
				launcher.WithOutput(status),
				launcher.WithVerbose(cfg.Verbose),
			)
			plan, err := l.Prepare(config.Environ())
			if err != nil {
				return err
			}
			if preflight {
				if err := llamaserver.Preflight(plan.Model); err != nil {
					return config.Construction(err)
				}
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			printPlan(out, plan)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the settings as JSON")
	cmd.Flags().BoolVar(&preflight, "preflight", false, "also load the model in-process (requires -tags=llama)")
	return cmd
}

func printPlan(w io.Writer, p launcher.Plan) {
	fmt.Fprintf(w, "%s=%s (%s)\n", config.EnvModelPath, p.Config.ModelPath, humanize.Bytes(fsutil.FileSize(p.Config.ModelPath)))
	fmt.Fprintf(w, "%s=%d\n", config.EnvContextSize, p.Config.ContextSize)
	fmt.Fprintf(w, "%s=%d\n", config.EnvThreadCount, p.Config.ThreadCount)
	chat := p.Model.ChatFormat
	if chat == "" {
		chat = "(none)"
	}
	fmt.Fprintf(w, "model: alias=%s n_ctx=%d n_threads=%d n_batch=%d chat_format=%s\n",
		p.Model.Alias, p.Model.NCtx, p.Model.NThreads, p.Model.NBatch, chat)
	fmt.Fprintf(w, "server: addr=%s interrupt_requests=%t ping_events=%t\n",
		p.Server.Addr(), p.Server.InterruptRequests, p.Server.PingEvents)
	fmt.Fprintf(w, "known chat formats: %s\n", strings.Join(settings.ChatFormats(), ", "))
}
