package main

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time via:
//
//	go build -ldflags "-X main.version=1.2.3"
var version = "dev"

// globalFlags holds the root command's persistent flags, read by every
// subcommand that needs configuration or logging.
type globalFlags struct {
	configPath string
	logDir     string
	logLevel   string
	logMaxSize int
	logBackups int
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "pasta",
		Short:         "Capture an interactive shell session as discrete, timed commands",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to pasta.toml (default: discovered)")
	root.PersistentFlags().StringVar(&g.logDir, "log-dir", "", "directory for rotated log files (default: from config)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: info or debug (default: from config)")
	root.PersistentFlags().IntVar(&g.logMaxSize, "log-max-size", 0, "max log file size in MB before rotation (default: from config)")
	root.PersistentFlags().IntVar(&g.logBackups, "log-backups", 0, "number of rotated log files to retain (default: from config)")

	root.AddCommand(newWrapCmd(g))
	root.AddCommand(newConfigCmd(g))

	return root
}
