package main

import (
	"fmt"
	"time"

	"github.com/pedregon/pasta/internal/config"
	"github.com/pedregon/pasta/internal/segment"
	"github.com/pedregon/pasta/internal/spool"
	"github.com/spf13/cobra"
)

type wrapFlags struct {
	echo    bool
	chdir   string
	timeout time.Duration
}

func newWrapCmd(g *globalFlags) *cobra.Command {
	f := &wrapFlags{}

	cmd := &cobra.Command{
		Use:                   "wrap -- COMMAND [ARG...]",
		Short:                 "Run COMMAND under a captured pseudo-terminal session",
		Args:                  cobra.MinimumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrap(g, f, args)
		},
	}

	cmd.Flags().BoolVar(&f.echo, "echo", true, "enable the pty slave's ECHO mode")
	cmd.Flags().StringVar(&f.chdir, "chdir", "", "working directory for the child (default: inherit)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", time.Second, "grace period before escalating SIGTERM to SIGKILL")

	return cmd
}

func runWrap(g *globalFlags, f *wrapFlags, argv []string) error {
	cfg, err := resolveConfig(g)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if rule, merr := config.MatchPromptRule(cfg.Prompt, argv[0]); merr != nil {
		logger.Debug("prompt rule lookup failed", "error", merr)
	} else if rule != nil {
		logger.Debug("prompt rule matched", "command", rule.Command, "pattern", rule.Pattern)
	}

	opts := spool.DefaultOptions()
	opts.Echo = f.echo
	opts.Cwd = f.chdir
	opts.Timeout = f.timeout

	registerHandlers := func(reg *segment.Registry) {
		reg.Register(segment.STDIN, bareLFToCRLF)
		reg.Register(segment.STDOUT, bareLFToCRLF)
		reg.Register(segment.STDERR, bareLFToCRLF)
	}

	err = spool.Run(argv, opts, logger, registerHandlers, nil)
	if err != nil {
		return fmt.Errorf("wrap: %w", err)
	}
	return nil
}
